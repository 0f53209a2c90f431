// Package ebiten adapts cimgui-go's Ebitengine backend to render.Overlay.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilebloom/debugui"
)

// ImguiBackend wraps the Ebitengine Dear ImGui backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend

	plot *debugui.PlotContext
}

// New creates the backend and its window, along with the ImPlot context the
// panel charts need. ImGui's ini file is disabled.
func New(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	return &ImguiBackend{EbitenBackend: backend, plot: debugui.NewPlotContext()}
}

// Close destroys the ImPlot context. The backend is unusable afterwards.
func (b *ImguiBackend) Close() {
	b.plot.Close()
}

func (b *ImguiBackend) Begin() {
	b.EbitenBackend.BeginFrame()
}

func (b *ImguiBackend) End() {
	b.EbitenBackend.EndFrame()
}

func (b *ImguiBackend) Render(screen *ebiten.Image) {
	b.EbitenBackend.Draw(screen)
}

func (b *ImguiBackend) Resize(width, height int) {
	b.EbitenBackend.Layout(width, height)
}
