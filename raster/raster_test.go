package raster_test

import (
	"image"
	"image/color"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/raster"
	"github.com/plus3/tilebloom/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts scene.Options) (*ecs.Storage, *ecs.Scheduler, *raster.DrawSystem) {
	t.Helper()
	storage := scene.NewStorage(scene.Window{Width: 200, Height: 400}, io.Discard)
	systems := ecs.NewScheduler(storage)
	scene.Install(systems, opts)
	require.NoError(t, systems.Startup())

	draw := &raster.DrawSystem{}
	systems.Register(draw)
	return storage, systems, draw
}

func plainOptions() scene.Options {
	opts := scene.DefaultOptions(rand.New(rand.NewPCG(5, 6)))
	opts.Camera.HDR = false
	return opts
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func nearPalette(c color.RGBA) bool {
	for _, p := range scene.DefaultPalette() {
		d := func(a, b uint8) int { return max(int(a)-int(b), int(b)-int(a)) }
		if d(c.R, p.R) <= 2 && d(c.G, p.G) <= 2 && d(c.B, p.B) <= 2 {
			return true
		}
	}
	return false
}

func canvasOf(t *testing.T, storage *ecs.Storage) *raster.Canvas {
	t.Helper()
	var canvas *raster.Canvas
	require.True(t, storage.ReadSingleton(&canvas))
	require.NotNil(t, canvas.Image)
	return canvas
}

func TestDrawSystemRendersTiles(t *testing.T) {
	storage, systems, draw := setup(t, plainOptions())
	systems.Once(1.0 / 60)
	require.NoError(t, draw.Err())
	require.Equal(t, 1, draw.Rendered())

	canvas := canvasOf(t, storage)
	assert.Equal(t, image.Rect(0, 0, 200, 400), canvas.Image.Bounds())
	assert.Equal(t, uint64(0), canvas.Frame)

	// first cell is 20x40 centred at (10, 20); the margin leaves a 5px frame
	assert.True(t, nearPalette(rgbaAt(canvas.Image, 10, 20)))
	assert.Equal(t, color.RGBA{A: 255}, rgbaAt(canvas.Image, 0, 0))
}

func TestDrawSystemOnlyWhenRequested(t *testing.T) {
	opts := plainOptions()
	opts.ScreenshotLimit = 2
	storage, systems, draw := setup(t, opts)
	queue := ecs.NewSingleton[scene.ScreenshotQueue](storage)

	for i := 0; i < 5; i++ {
		systems.Once(1.0 / 60)
		queue.Get().Drain()
	}
	assert.Equal(t, 2, draw.Rendered())
	assert.Equal(t, uint64(1), canvasOf(t, storage).Frame)
}

func TestDrawSystemBloom(t *testing.T) {
	plainStorage, plain, _ := setup(t, plainOptions())

	opts := plainOptions()
	opts.Camera = scene.Camera{HDR: true, Tonemapping: bloom.TonemappingNone}
	opts.Palette = []color.RGBA{scene.DeepRed}
	bloomStorage, bloomed, _ := setup(t, opts)

	plain.Once(1.0 / 60)
	bloomed.Once(1.0 / 60)

	// the glow spills into the margin between tiles
	gapPlain := rgbaAt(canvasOf(t, plainStorage).Image, 20, 20)
	gapBloom := rgbaAt(canvasOf(t, bloomStorage).Image, 20, 20)
	assert.Equal(t, uint8(0), gapPlain.R)
	assert.Greater(t, gapBloom.R, uint8(0))
}
