// Package scene holds the tile grid and its per-frame animation: the
// components and singletons stored in the ecs, the grid layout, and the
// startup and update systems that mutate them.
package scene

import (
	"image/color"
	"io"

	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
)

type Vec2 struct {
	X, Y float32
}

type Vec3 struct {
	X, Y, Z float32
}

// Tile marks an entity as one cell of the grid.
type Tile struct{}

// Quad is an axis-aligned rectangle centred on its transform.
type Quad struct {
	Size Vec2
}

// Fill is the flat colour a quad is drawn with.
type Fill struct {
	Color color.RGBA
}

// Transform places a quad in world space: origin at the window centre, +Y up.
type Transform struct {
	Translation Vec3
	Scale       Vec2
}

// Camera is attached to the entity that also carries bloom.Settings.
type Camera struct {
	HDR         bool
	Tonemapping bloom.Tonemapping
}

// Window is the measured size of the primary window.
type Window struct {
	Width, Height float32
	Title         string
}

// Measured reports whether both dimensions are known.
func (w *Window) Measured() bool {
	return w != nil && w.Width > 0 && w.Height > 0
}

// ScreenshotRequest asks the capture stage to save the current frame.
type ScreenshotRequest struct {
	Index uint64
	Path  string
}

// ScreenshotQueue collects the requests issued during a frame.
type ScreenshotQueue struct {
	Requests []ScreenshotRequest
}

// Drain returns the pending requests and empties the queue.
func (q *ScreenshotQueue) Drain() []ScreenshotRequest {
	requests := q.Requests
	q.Requests = nil
	return requests
}

// Console is where the per-frame diagnostic lines go.
type Console struct {
	Out io.Writer
}

func (c *Console) writer() io.Writer {
	if c == nil || c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// RegisterComponents registers every component type the scene spawns.
func RegisterComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Tile](r)
	ecs.RegisterComponent[Quad](r)
	ecs.RegisterComponent[Fill](r)
	ecs.RegisterComponent[Transform](r)
	ecs.RegisterComponent[Camera](r)
	ecs.RegisterComponent[bloom.Settings](r)
}

// NewStorage returns a storage with the scene components registered and the
// Window, ScreenshotQueue and Console singletons present.
func NewStorage(window Window, console io.Writer) *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)

	storage := ecs.NewStorage(registry)
	storage.AddSingleton(window)
	storage.AddSingleton(ScreenshotQueue{})
	storage.AddSingleton(Console{Out: console})
	return storage
}
