package debugui

import "github.com/AllenDang/cimgui-go/implot"

// PlotContext owns the ImPlot context that BloomPanel charts draw into. Create
// it after the ImGui context.
type PlotContext struct {
	ctx *implot.Context
}

// NewPlotContext creates an ImPlot context and makes it current.
func NewPlotContext() *PlotContext {
	ctx := implot.CreateContext()
	implot.SetCurrentContext(ctx)
	return &PlotContext{ctx: ctx}
}

func (p *PlotContext) Context() *implot.Context {
	return p.ctx
}

// Close destroys the context. Calling it twice is a no-op.
func (p *PlotContext) Close() {
	if p.ctx == nil {
		return
	}
	implot.DestroyContextV(p.ctx)
	p.ctx = nil
}
