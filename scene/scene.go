package scene

import (
	"image/color"

	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
)

const (
	DefaultJitterDivisor   = 15
	DefaultBloomDivisor    = 500
	DefaultScreenshotDir   = "./screenshots"
	DefaultScreenshotLimit = 1000
)

// Options parameterise Install.
type Options struct {
	Grid            GridSpec
	Palette         []color.RGBA
	Camera          Camera
	Bloom           bloom.Settings
	JitterDivisor   float32
	BloomDivisor    float32
	ScreenshotDir   string
	ScreenshotLimit uint64
	Rand            Source
}

// DefaultOptions returns the stock scene driven by rand.
func DefaultOptions(rand Source) Options {
	return Options{
		Grid:            DefaultGridSpec(),
		Palette:         DefaultPalette(),
		Camera:          Camera{HDR: true, Tonemapping: bloom.TonemappingAcesFitted},
		Bloom:           bloom.DefaultSettings(),
		JitterDivisor:   DefaultJitterDivisor,
		BloomDivisor:    DefaultBloomDivisor,
		ScreenshotDir:   DefaultScreenshotDir,
		ScreenshotLimit: DefaultScreenshotLimit,
		Rand:            rand,
	}
}

// Systems are the installed scene systems, kept for inspection.
type Systems struct {
	Grid        *GridSystem
	Camera      *CameraSystem
	CameraCheck *CameraCheckSystem
	Jitter      *JitterSystem
	Bloom       *BloomSystem
	Screenshot  *ScreenshotSystem
}

// Install registers the startup systems (grid, camera, camera check) and the
// update systems (jitter, bloom, screenshot) on s, in that order.
func Install(s *ecs.Scheduler, o Options) *Systems {
	systems := &Systems{
		Grid:        &GridSystem{Spec: o.Grid, Palette: o.Palette, Rand: o.Rand},
		Camera:      &CameraSystem{Camera: o.Camera, Bloom: o.Bloom},
		CameraCheck: &CameraCheckSystem{},
		Jitter:      &JitterSystem{Divisor: o.JitterDivisor, Rand: o.Rand},
		Bloom:       &BloomSystem{Divisor: o.BloomDivisor},
		Screenshot:  &ScreenshotSystem{Dir: o.ScreenshotDir, Limit: o.ScreenshotLimit},
	}

	s.RegisterStartup(systems.Grid)
	s.RegisterStartup(systems.Camera)
	s.RegisterStartup(systems.CameraCheck)

	s.Register(systems.Jitter)
	s.Register(systems.Bloom)
	s.Register(systems.Screenshot)
	return systems
}
