package render_test

import (
	"image"
	"io"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/render"
	"github.com/plus3/tilebloom/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, writer *capture.Writer) (*render.Game, *ecs.Storage) {
	t.Helper()
	storage := scene.NewStorage(scene.Window{}, io.Discard)
	systems := ecs.NewScheduler(storage)
	scene.Install(systems, scene.DefaultOptions(rand.New(rand.NewPCG(7, 7))))
	return render.NewGame(storage, systems, writer, nil), storage
}

func TestGameLayoutStartsScene(t *testing.T) {
	game, storage := newGame(t, capture.NewWriter(1, nil))

	w, h := game.Layout(720, 1280)
	assert.Equal(t, 720, w)
	assert.Equal(t, 1280, h)

	var window *scene.Window
	require.True(t, storage.ReadSingleton(&window))
	assert.Equal(t, float32(720), window.Width)
	assert.Equal(t, float32(1280), window.Height)

	require.NoError(t, game.Update())
	assert.True(t, game.Systems.Started())
	assert.Equal(t, uint64(1), game.Systems.Frames())
	assert.Equal(t, 100, ecs.NewView[struct{ *scene.Tile }](storage).Count())

	var queue *scene.ScreenshotQueue
	require.True(t, storage.ReadSingleton(&queue))
	assert.Len(t, queue.Requests, 1, "first frame requests a capture")
}

func TestGameHoldsTickUntilCaptured(t *testing.T) {
	game, storage := newGame(t, capture.NewWriter(1, nil))
	game.Layout(720, 1280)

	var queue *scene.ScreenshotQueue
	require.True(t, storage.ReadSingleton(&queue))

	require.NoError(t, game.Update())
	require.NoError(t, game.Update())
	assert.Equal(t, uint64(1), game.Systems.Frames(), "second tick waits for the pending capture")
	require.Len(t, queue.Requests, 1)
	assert.Equal(t, uint64(0), queue.Requests[0].Index)

	queue.Drain()
	require.NoError(t, game.Update())
	assert.Equal(t, uint64(2), game.Systems.Frames())
	require.Len(t, queue.Requests, 1)
	assert.Equal(t, uint64(1), queue.Requests[0].Index)
}

func TestGameUpdateWithoutLayout(t *testing.T) {
	game, _ := newGame(t, capture.NewWriter(1, nil))
	assert.ErrorIs(t, game.Update(), scene.ErrWindowNotMeasured)
}

func TestGameStopsOnWriteFailure(t *testing.T) {
	writer := capture.NewWriter(1, nil)
	game, _ := newGame(t, writer)
	game.Layout(720, 1280)
	require.NoError(t, game.Update())

	missing := filepath.Join(t.TempDir(), "missing", "screenshot-0.png")
	require.NoError(t, writer.Submit(missing, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	require.Error(t, writer.Wait())

	assert.ErrorIs(t, game.Update(), writer.Err())
}
