package scene_test

import (
	"testing"

	"github.com/plus3/tilebloom/scene"
	"github.com/stretchr/testify/assert"
)

func TestScreenRect(t *testing.T) {
	quad := scene.Quad{Size: scene.Vec2{X: 62, Y: 118}}

	x, y, w, h := scene.ScreenRect(quad, scene.Transform{
		Translation: scene.Vec3{X: -324, Y: 576},
		Scale:       scene.Vec2{X: 1, Y: 1},
	}, 720, 1280)
	assert.Equal(t, []float32{5, 5, 62, 118}, []float32{x, y, w, h})

	_, _, w, h = scene.ScreenRect(quad, scene.Transform{Scale: scene.Vec2{X: -0.5, Y: 2}}, 720, 1280)
	assert.Equal(t, float32(31), w)
	assert.Equal(t, float32(236), h)
}
