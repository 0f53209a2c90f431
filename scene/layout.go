package scene

import (
	"fmt"
	"image/color"
	"math"
)

// The two tile colours, as 8-bit sRGB.
var (
	DeepRed    = color.RGBA{R: 244, G: 0, B: 25, A: 255}
	DarkPurple = color.RGBA{R: 45, G: 4, B: 37, A: 255}
)

// DefaultPalette returns the two tile colours.
func DefaultPalette() []color.RGBA {
	return []color.RGBA{DeepRed, DarkPurple}
}

// GridSpec divides the window into Columns x Rows cells and shrinks each
// rendered quad by Margin on both axes.
type GridSpec struct {
	Columns int
	Rows    int
	Margin  float32
}

// DefaultGridSpec is a 10x10 grid with a 10px margin.
func DefaultGridSpec() GridSpec {
	return GridSpec{Columns: 10, Rows: 10, Margin: 10}
}

// Cell is one computed grid position.
type Cell struct {
	Row, Col int
	Center   Vec2
	Size     Vec2
}

// cellEpsilon absorbs the rounding in width/(width/columns).
const cellEpsilon = 1e-6

// LayoutGrid partitions a width x height window into cells, row-major from
// the top-left. Cells that do not fit entirely are dropped.
func LayoutGrid(width, height float32, spec GridSpec) ([]Cell, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("layout %vx%v: %w", width, height, ErrWindowNotMeasured)
	}
	if spec.Columns <= 0 || spec.Rows <= 0 {
		return nil, fmt.Errorf("layout %dx%d cells: %w", spec.Columns, spec.Rows, ErrCellTooSmall)
	}

	w, h := float64(width), float64(height)
	cw := w / float64(spec.Columns)
	ch := h / float64(spec.Rows)
	m := float64(spec.Margin)
	if cw <= m || ch <= m {
		return nil, fmt.Errorf("cell %.2fx%.2f with margin %v: %w", cw, ch, spec.Margin, ErrCellTooSmall)
	}

	cols := int(math.Floor(w/cw + cellEpsilon))
	rows := int(math.Floor(h/ch + cellEpsilon))
	size := Vec2{X: float32(cw - m), Y: float32(ch - m)}

	cells := make([]Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, Cell{
				Row: r,
				Col: c,
				Center: Vec2{
					X: float32(-w/2 + cw/2 + float64(c)*cw),
					Y: float32(h/2 - ch/2 - float64(r)*ch),
				},
				Size: size,
			})
		}
	}
	return cells, nil
}
