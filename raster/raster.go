// Package raster renders the scene on the CPU with gogpu/gg for headless
// capture runs, applying the same bloom as the GPU path.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

// Canvas holds the last frame rendered by DrawSystem.
type Canvas struct {
	Image image.Image
	Frame uint64
}

// DrawSystem rasterises the tiles only on frames that have screenshot
// requests pending; other frames are never looked at.
type DrawSystem struct {
	Tiles ecs.Query[struct {
		*scene.Quad
		*scene.Fill
		*scene.Transform
	}]
	Cameras ecs.Query[struct {
		*scene.Camera
		*bloom.Settings
	}]
	Window ecs.Singleton[scene.Window]
	Queue  ecs.Singleton[scene.ScreenshotQueue]
	Canvas ecs.Singleton[Canvas]

	Background color.Color

	dc       *gg.Context
	rendered int
	err      error
}

func (s *DrawSystem) Execute(frame *ecs.UpdateFrame) {
	if s.err != nil {
		return
	}
	queue := s.Queue.Get()
	if queue == nil || len(queue.Requests) == 0 {
		return
	}
	window := s.Window.Get()
	if !window.Measured() {
		s.err = scene.ErrWindowNotMeasured
		return
	}

	img, err := s.render(int(window.Width), int(window.Height))
	if err != nil {
		s.err = err
		return
	}

	if camera, ok := s.Cameras.Single(); ok && camera.Camera.HDR {
		buf := bloom.BufferFromImage(img)
		bloom.Apply(buf, *camera.Settings, camera.Camera.Tonemapping)
		img = buf.Image()
	}

	canvas := s.Canvas.Get()
	if canvas == nil {
		frame.Storage.AddSingleton(Canvas{})
		canvas = s.Canvas.Get()
	}
	canvas.Image = img
	canvas.Frame = frame.Frame
	s.rendered++
}

func (s *DrawSystem) render(width, height int) (image.Image, error) {
	if s.dc == nil || s.dc.Width() != width || s.dc.Height() != height {
		if s.dc != nil {
			s.dc.Close()
		}
		s.dc = gg.NewContext(width, height)
	}

	bg := s.Background
	if bg == nil {
		bg = color.Black
	}
	s.dc.ClearWithColor(gg.FromColor(bg))

	w, h := float32(width), float32(height)
	for tile := range s.Tiles.Values() {
		x, y, tw, th := scene.ScreenRect(*tile.Quad, *tile.Transform, w, h)
		s.dc.SetColor(tile.Fill.Color)
		s.dc.DrawRectangle(float64(x), float64(y), float64(tw), float64(th))
		if err := s.dc.Fill(); err != nil {
			return nil, fmt.Errorf("fill tile: %w", err)
		}
	}
	return s.dc.Image(), nil
}

// Rendered returns how many frames have been rasterised.
func (s *DrawSystem) Rendered() int {
	return s.rendered
}

// Err returns the error that stopped rendering, if any.
func (s *DrawSystem) Err() error {
	return s.err
}
