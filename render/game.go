package render

import (
	"image"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

// Overlay is a debug UI drawn over the bloomed frame.
type Overlay interface {
	Begin()
	End()
	Render(screen *ebiten.Image)
	Resize(width, height int)
}

// Game implements ebiten.Game over two schedulers: Systems runs the startup
// and update stages from Update, Draws runs the draw stage from Draw.
type Game struct {
	Storage *ecs.Storage
	Systems *ecs.Scheduler
	Draws   *ecs.Scheduler
	Writer  *capture.Writer
	Overlay Overlay
	Logger  *slog.Logger

	// Stop, if set, ends the run cleanly once it returns true.
	Stop func() bool

	window *ecs.Singleton[scene.Window]
	screen *ecs.Singleton[Screen]
	queue  *ecs.Singleton[scene.ScreenshotQueue]
}

// NewGame wires the draw stage (tiles, bloom, capture) onto a fresh
// scheduler. systems must already have the scene installed.
func NewGame(storage *ecs.Storage, systems *ecs.Scheduler, writer *capture.Writer, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Game{
		Storage: storage,
		Systems: systems,
		Draws:   ecs.NewScheduler(storage),
		Writer:  writer,
		Logger:  logger,
		window:  ecs.NewSingleton[scene.Window](storage),
		screen:  ecs.NewSingleton[Screen](storage),
		queue:   ecs.NewSingleton[scene.ScreenshotQueue](storage),
	}
	ecs.NewSingleton[Frame](storage)

	g.Draws.Register(&TileSystem{})
	g.Draws.Register(&PostProcessSystem{})
	g.Draws.Register(&capture.System{
		Snapshot: func() image.Image { return ReadScreen(storage) },
		Writer:   writer,
	})
	return g
}

// Update runs startup on the first call, then one update stage per tick. A
// tick is held while a screenshot request still waits for Draw, so every
// capture is taken from the frame that requested it. A failed screenshot
// write ends the run with that error.
func (g *Game) Update() error {
	if !g.Systems.Started() {
		if err := g.Systems.Startup(); err != nil {
			return err
		}
		g.Logger.Info("scene started", "entities", g.Storage.CollectStats().TotalEntityCount)
	}
	if err := g.Writer.Err(); err != nil {
		return err
	}
	if g.Stop != nil && g.Stop() {
		return ebiten.Termination
	}
	if queue := g.queue.Get(); queue != nil && len(queue.Requests) > 0 {
		return nil
	}

	if g.Overlay != nil {
		g.Overlay.Begin()
	}
	g.Systems.Once(1.0 / float64(ebiten.TPS()))
	if g.Overlay != nil {
		g.Overlay.End()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Get().Image = screen
	g.Draws.Once(0)
	if g.Overlay != nil {
		g.Overlay.Render(screen)
	}
}

// Layout keeps the logical screen equal to the window and records its size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	window := g.window.Get()
	window.Width = float32(outsideWidth)
	window.Height = float32(outsideHeight)
	if g.Overlay != nil {
		g.Overlay.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
