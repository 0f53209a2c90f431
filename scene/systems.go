package scene

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
)

// Source is the randomness the scene draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// GridSystem spawns one tile per grid cell at startup.
type GridSystem struct {
	Window ecs.Singleton[Window]

	Spec    GridSpec
	Palette []color.RGBA
	Rand    Source
}

func (s *GridSystem) Setup(frame *ecs.UpdateFrame) error {
	window := s.Window.Get()
	if !window.Measured() {
		return ErrWindowNotMeasured
	}
	if len(s.Palette) == 0 {
		return fmt.Errorf("empty palette")
	}

	cells, err := LayoutGrid(window.Width, window.Height, s.Spec)
	if err != nil {
		return err
	}

	for _, cell := range cells {
		frame.Commands.Spawn(
			Tile{},
			Quad{Size: cell.Size},
			Fill{Color: s.Palette[s.Rand.IntN(len(s.Palette))]},
			Transform{
				Translation: Vec3{X: cell.Center.X, Y: cell.Center.Y},
				Scale:       Vec2{X: 1, Y: 1},
			},
		)
	}
	return nil
}

// CameraSystem spawns the camera entity with its starting bloom parameters.
type CameraSystem struct {
	Camera Camera
	Bloom  bloom.Settings
}

func (s *CameraSystem) Setup(frame *ecs.UpdateFrame) error {
	frame.Commands.Spawn(s.Camera, s.Bloom)
	return nil
}

// CameraCheckSystem fails startup unless exactly one camera with bloom
// settings exists. Register it after every system that spawns cameras.
type CameraCheckSystem struct {
	Cameras ecs.Query[struct {
		*Camera
		*bloom.Settings
	}]
}

func (s *CameraCheckSystem) Setup(frame *ecs.UpdateFrame) error {
	if n := s.Cameras.Len(); n != 1 {
		return fmt.Errorf("%w: found %d cameras with bloom settings", ErrNoCamera, n)
	}
	return nil
}

// JitterSystem shrinks and shifts every quad by a fresh random amount each
// frame. Drift is unbounded.
type JitterSystem struct {
	Tiles ecs.Query[struct {
		*Quad
		*Transform
	}]

	Divisor float32
	Rand    Source
}

func (s *JitterSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Tiles.Values() {
		j := float32(s.Rand.Float64()-0.5) / s.Divisor
		item.Transform.Scale.X -= j
		item.Transform.Scale.Y -= j
		item.Transform.Translation.X -= j
		item.Transform.Translation.Y -= j
	}
}

// BloomSystem pulses the camera's bloom: both intensity and low-frequency
// boost grow by |sin(t)|/Divisor every frame and are never reset. It relies on
// CameraCheckSystem having verified the camera at startup and does nothing
// when none is present.
type BloomSystem struct {
	Cameras ecs.Query[struct {
		*Camera
		*bloom.Settings
	}]
	Console ecs.Singleton[Console]

	Divisor float32
	Last    float32
}

// Pulse is the oscillating scalar for the given frame times, in [0,1].
func Pulse(elapsed, delta float64) float32 {
	return float32(math.Abs(math.Sin(elapsed + delta)))
}

func (s *BloomSystem) Execute(frame *ecs.UpdateFrame) {
	camera, ok := s.Cameras.Single()
	if !ok {
		return
	}

	pulse := Pulse(frame.Elapsed, frame.DeltaTime)
	camera.Settings.Intensity += pulse / s.Divisor
	camera.Settings.LowFrequencyBoost += pulse / s.Divisor
	s.Last = pulse

	fmt.Fprintln(s.Console.Get().writer(), pulse/10)
}

// ScreenshotCounter counts frames seen by the screenshot system.
type ScreenshotCounter struct {
	value uint64
}

func (c *ScreenshotCounter) Value() uint64 {
	return c.value
}

// Next returns the current value and advances the counter.
func (c *ScreenshotCounter) Next() uint64 {
	v := c.value
	c.value++
	return v
}

// ScreenshotPath is the file the n-th capture is written to. dir is kept as
// given, so the default yields "./screenshots/screenshot-<n>.png".
func ScreenshotPath(dir string, n uint64) string {
	return fmt.Sprintf("%s/screenshot-%d.png", strings.TrimSuffix(dir, "/"), n)
}

// ScreenshotSystem queues a capture of each of the first Limit frames and
// prints the advancing counter every frame.
type ScreenshotSystem struct {
	Queue   ecs.Singleton[ScreenshotQueue]
	Console ecs.Singleton[Console]

	Dir     string
	Limit   uint64
	Counter ScreenshotCounter
}

func (s *ScreenshotSystem) Execute(frame *ecs.UpdateFrame) {
	n := s.Counter.Next()
	path := ScreenshotPath(s.Dir, n)
	if n < s.Limit {
		queue := s.Queue.Get()
		queue.Requests = append(queue.Requests, ScreenshotRequest{Index: n, Path: path})
	}
	fmt.Fprintln(s.Console.Get().writer(), s.Counter.Value())
}

// Done reports whether every capture has been requested.
func (s *ScreenshotSystem) Done() bool {
	return s.Counter.Value() >= s.Limit
}
