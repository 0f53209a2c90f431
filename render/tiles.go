package render

import (
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

// TileSystem clears the frame and draws every quad into it.
type TileSystem struct {
	Tiles ecs.Query[struct {
		*scene.Quad
		*scene.Fill
		*scene.Transform
	}]
	Screen ecs.Singleton[Screen]
	Frame  ecs.Singleton[Frame]
}

func (s *TileSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil || screen.Image == nil {
		return
	}
	bounds := screen.Image.Bounds()
	target := s.Frame.Get()
	target.Image = ensureImage(target.Image, bounds.Dx(), bounds.Dy())
	target.Image.Fill(Background)

	width, height := float32(bounds.Dx()), float32(bounds.Dy())
	for tile := range s.Tiles.Values() {
		x, y, w, h := scene.ScreenRect(*tile.Quad, *tile.Transform, width, height)
		vector.DrawFilledRect(target.Image, x, y, w, h, tile.Fill.Color, true)
	}
}
