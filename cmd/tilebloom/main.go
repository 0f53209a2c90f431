// Command tilebloom tiles a window with jittering quads under a pulsing
// bloom and saves the first frames as PNG screenshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/config"
	"github.com/plus3/tilebloom/debugui"
	debugui_ebiten "github.com/plus3/tilebloom/debugui/ebiten"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/raster"
	"github.com/plus3/tilebloom/render"
	"github.com/plus3/tilebloom/scene"
	"github.com/schollz/progressbar/v3"
)

type options struct {
	configPath string
	headless   bool
	frames     uint64
	seed       uint64
	debug      bool
	progress   bool
	report     bool
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file; defaults are used when empty.")
	flag.BoolVar(&opts.headless, "headless", false, "Render on the CPU without opening a window.")
	flag.Uint64Var(&opts.frames, "frames", 0, "Stop after this many frames (headless: 0 runs until every screenshot is written).")
	flag.Uint64Var(&opts.seed, "seed", 0, "Seed for tile colours and jitter; 0 picks a random seed.")
	flag.BoolVar(&opts.debug, "debug", false, "Show the Dear ImGui debug panel (windowed only).")
	flag.BoolVar(&opts.progress, "progress", false, "Show a screenshot progress bar on stderr.")
	flag.BoolVar(&opts.report, "report", false, "Print a run report to stdout on exit.")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("tilebloom failed", "err", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	window := scene.Window{Title: cfg.Window.Title}
	if opts.headless {
		window.Width = float32(cfg.Window.Width)
		window.Height = float32(cfg.Window.Height)
	}
	storage := scene.NewStorage(window, os.Stdout)
	systems := ecs.NewScheduler(storage)
	installed := scene.Install(systems, cfg.Options(rng))

	writer := capture.NewWriter(cfg.Screenshots.Workers, logger)
	if opts.progress {
		bar := progressbar.NewOptions64(int64(cfg.Screenshots.Limit),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("screenshots"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		writer.OnWritten = func(string) { _ = bar.Add(1) }
		defer bar.Finish()
	}

	logger.Info("starting",
		"mode", mode(opts.headless),
		"window", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height),
		"seed", seed,
		"screenshots", cfg.Screenshots.Dir,
		"limit", cfg.Screenshots.Limit)

	start := time.Now()
	var draws *ecs.Scheduler
	var runErr error
	if opts.headless {
		draws, runErr = runHeadless(storage, systems, installed, writer, opts.frames, logger)
	} else {
		draws, runErr = runWindowed(cfg, storage, systems, installed, writer, opts, logger)
	}

	waitErr := writer.Wait()
	logger.Info("stopped",
		"frames", systems.Frames(),
		"screenshots", writer.Written(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if opts.report {
		report := newReport(mode(opts.headless), time.Since(start), systems, draws, storage, writer)
		if err := report.Generate(os.Stdout); err != nil {
			logger.Warn("report failed", "err", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	return waitErr
}

func mode(headless bool) string {
	if headless {
		return "headless"
	}
	return "window"
}

// runHeadless steps the scene at 60 Hz of simulated time. With frames == 0
// it stops once every screenshot has been requested.
func runHeadless(storage *ecs.Storage, systems *ecs.Scheduler, installed *scene.Systems, writer *capture.Writer, frames uint64, logger *slog.Logger) (*ecs.Scheduler, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	canvas := ecs.NewSingleton[raster.Canvas](storage)
	draw := &raster.DrawSystem{Background: render.Background}
	draws := ecs.NewScheduler(storage)
	draws.Register(draw)
	draws.Register(&capture.System{
		Snapshot: func() image.Image { return canvas.Get().Image },
		Writer:   writer,
	})

	if err := systems.Startup(); err != nil {
		return draws, err
	}
	logger.Info("scene started", "entities", storage.CollectStats().TotalEntityCount)

	const dt = 1.0 / 60
	for frames == 0 || systems.Frames() < frames {
		if err := ctx.Err(); err != nil {
			logger.Info("interrupted")
			return draws, nil
		}
		if err := writer.Err(); err != nil {
			return draws, err
		}

		systems.Once(dt)
		draws.Once(0)
		if err := draw.Err(); err != nil {
			return draws, err
		}

		if frames == 0 && installed.Screenshot.Done() {
			break
		}
	}
	return draws, nil
}

func runWindowed(cfg *config.Config, storage *ecs.Storage, systems *ecs.Scheduler, installed *scene.Systems, writer *capture.Writer, opts options, logger *slog.Logger) (*ecs.Scheduler, error) {
	game := render.NewGame(storage, systems, writer, logger)
	if opts.frames > 0 {
		game.Stop = func() bool { return systems.Frames() >= opts.frames }
	}

	if opts.debug {
		overlay := debugui_ebiten.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		defer overlay.Close()
		game.Overlay = overlay
		debugui.Install(storage, systems)
		debugui.NewBloomPanel(storage, systems, installed, 120).Spawn()
	} else {
		ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
		ebiten.SetWindowTitle(cfg.Window.Title)
	}

	return game.Draws, ebiten.RunGame(game)
}
