package scene_test

import (
	"fmt"
	"testing"

	"github.com/plus3/tilebloom/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutGrid(t *testing.T) {
	cells, err := scene.LayoutGrid(720, 1280, scene.DefaultGridSpec())
	require.NoError(t, err)
	require.Len(t, cells, 100)

	first := cells[0]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, 0, first.Col)
	assert.Equal(t, scene.Vec2{X: -324, Y: 576}, first.Center)

	last := cells[len(cells)-1]
	assert.Equal(t, 9, last.Row)
	assert.Equal(t, 9, last.Col)
	assert.Equal(t, scene.Vec2{X: 324, Y: -576}, last.Center)

	for _, cell := range cells {
		assert.Equal(t, scene.Vec2{X: 62, Y: 118}, cell.Size)
	}

	t.Run("RowMajor", func(t *testing.T) {
		assert.Equal(t, 1, cells[1].Col)
		assert.Equal(t, 0, cells[1].Row)
		assert.Equal(t, cells[0].Center.Y, cells[9].Center.Y)
		assert.Equal(t, 1, cells[10].Row)
		assert.Less(t, cells[10].Center.Y, cells[0].Center.Y)
	})
}

func TestLayoutGridOddDimensions(t *testing.T) {
	sizes := [][2]float32{{733, 1001}, {101, 257}, {1920, 1080}, {999.5, 640.25}, {123, 4567}}
	for _, size := range sizes {
		t.Run(fmt.Sprintf("%vx%v", size[0], size[1]), func(t *testing.T) {
			cells, err := scene.LayoutGrid(size[0], size[1], scene.DefaultGridSpec())
			require.NoError(t, err)
			assert.Len(t, cells, 100)

			cw, ch := size[0]/10, size[1]/10
			for _, cell := range cells {
				assert.InDelta(t, cw-10, cell.Size.X, 1e-3)
				assert.InDelta(t, ch-10, cell.Size.Y, 1e-3)
				assert.Greater(t, cell.Size.X, float32(0))
				assert.Greater(t, cell.Size.Y, float32(0))
			}
		})
	}
}

func TestLayoutGridCustomSpec(t *testing.T) {
	cells, err := scene.LayoutGrid(300, 200, scene.GridSpec{Columns: 3, Rows: 2, Margin: 4})
	require.NoError(t, err)
	require.Len(t, cells, 6)
	assert.Equal(t, scene.Vec2{X: -100, Y: 50}, cells[0].Center)
	assert.Equal(t, scene.Vec2{X: 100, Y: -50}, cells[5].Center)
	assert.Equal(t, scene.Vec2{X: 96, Y: 96}, cells[0].Size)
}

func TestLayoutGridErrors(t *testing.T) {
	_, err := scene.LayoutGrid(0, 1280, scene.DefaultGridSpec())
	assert.ErrorIs(t, err, scene.ErrWindowNotMeasured)

	_, err = scene.LayoutGrid(720, -1, scene.DefaultGridSpec())
	assert.ErrorIs(t, err, scene.ErrWindowNotMeasured)

	_, err = scene.LayoutGrid(100, 1280, scene.DefaultGridSpec())
	assert.ErrorIs(t, err, scene.ErrCellTooSmall, "10px cells leave nothing after the margin")

	_, err = scene.LayoutGrid(720, 1280, scene.GridSpec{Columns: 0, Rows: 10, Margin: 10})
	assert.ErrorIs(t, err, scene.ErrCellTooSmall)
}

func ExampleLayoutGrid() {
	cells, err := scene.LayoutGrid(720, 1280, scene.DefaultGridSpec())
	if err != nil {
		panic(err)
	}
	first := cells[0]
	fmt.Printf("%d tiles of %vx%v, first at (%v, %v)\n",
		len(cells), first.Size.X, first.Size.Y, first.Center.X, first.Center.Y)
	// Output: 100 tiles of 62x118, first at (-324, 576)
}
