// Package render draws the scene with Ebitengine: tiles into an offscreen
// frame, then the GPU bloom into the screen.
package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/ecs"
)

// Screen holds the image Ebitengine handed to Draw this frame.
type Screen struct {
	Image *ebiten.Image
}

// Frame is the offscreen target tiles are drawn into before post-processing.
type Frame struct {
	Image *ebiten.Image
}

// Background is the clear colour behind the tiles.
var Background = color.RGBA{A: 255}

// ensureImage returns img if it already has the given size, or a new image.
func ensureImage(img *ebiten.Image, width, height int) *ebiten.Image {
	if img != nil {
		if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(width, height)
}

// ReadScreen copies the current screen into a straight-alpha image. It must
// be called from Draw.
func ReadScreen(storage *ecs.Storage) image.Image {
	var screen *Screen
	if !storage.ReadSingleton(&screen) || screen.Image == nil {
		return nil
	}
	bounds := screen.Image.Bounds()
	pixels := make([]byte, 4*bounds.Dx()*bounds.Dy())
	screen.Image.ReadPixels(pixels)
	return capture.FromPremultiplied(pixels, bounds.Dx(), bounds.Dy())
}
