package capture_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(1, 1, color.NRGBA{R: 244, B: 25, A: 255})
	return img
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var written []string
	w := capture.NewWriter(2, nil)
	w.OnWritten = func(path string) {
		mu.Lock()
		written = append(written, path)
		mu.Unlock()
	}

	for i := uint64(0); i < 5; i++ {
		require.NoError(t, w.Submit(scene.ScreenshotPath(dir, i), testImage()))
	}
	require.NoError(t, w.Wait())
	assert.Equal(t, 5, w.Written())
	assert.Len(t, written, 5)

	f, err := os.Open(filepath.Join(dir, "screenshot-3.png"))
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())
	r, g, b, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, []uint32{244, 0, 25}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestWriterMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	w := capture.NewWriter(1, nil)

	require.NoError(t, w.Submit(scene.ScreenshotPath(missing, 0), testImage()))
	err := w.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, err, w.Err())
	assert.Zero(t, w.Written())

	assert.ErrorIs(t, w.Submit(scene.ScreenshotPath(missing, 1), testImage()), os.ErrNotExist,
		"later submits are refused")
	_, statErr := os.Stat(missing)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "the directory is not created")
}

func TestFromPremultiplied(t *testing.T) {
	pixels := []byte{
		100, 50, 0, 200,
		10, 20, 30, 255,
		0, 0, 0, 0,
	}
	img := capture.FromPremultiplied(pixels, 3, 1)
	assert.Equal(t, color.NRGBA{R: 127, G: 63, B: 0, A: 200}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 0))
}

func TestSystem(t *testing.T) {
	dir := t.TempDir()
	storage := scene.NewStorage(scene.Window{Width: 4, Height: 3}, nil)
	queue := ecs.NewSingleton[scene.ScreenshotQueue](storage)

	snapshots := 0
	writer := capture.NewWriter(2, nil)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&capture.System{
		Snapshot: func() image.Image {
			snapshots++
			return testImage()
		},
		Writer: writer,
	})

	scheduler.Once(1.0 / 60)
	assert.Zero(t, snapshots, "nothing requested")

	queue.Get().Requests = append(queue.Get().Requests,
		scene.ScreenshotRequest{Index: 0, Path: scene.ScreenshotPath(dir, 0)},
		scene.ScreenshotRequest{Index: 1, Path: scene.ScreenshotPath(dir, 1)},
	)
	scheduler.Once(1.0 / 60)
	require.NoError(t, writer.Wait())

	assert.Equal(t, 1, snapshots)
	assert.Empty(t, queue.Get().Requests)
	assert.FileExists(t, filepath.Join(dir, "screenshot-0.png"))
	assert.FileExists(t, filepath.Join(dir, "screenshot-1.png"))
}
