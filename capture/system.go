package capture

import (
	"image"

	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

// System drains the screenshot queue after the frame has been drawn. The
// frame is snapshotted once however many requests are pending.
type System struct {
	Queue ecs.Singleton[scene.ScreenshotQueue]

	Snapshot func() image.Image
	Writer   *Writer
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	queue := s.Queue.Get()
	if queue == nil || len(queue.Requests) == 0 {
		return
	}
	requests := queue.Drain()

	img := s.Snapshot()
	if img == nil {
		return
	}
	for _, req := range requests {
		if err := s.Writer.Submit(req.Path, img); err != nil {
			return
		}
	}
}
