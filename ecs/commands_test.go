package ecs_test

import (
	"testing"

	"github.com/plus3/tilebloom/ecs"
	"github.com/stretchr/testify/assert"
)

func TestCommands(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var order []string
	recorder := &recordingSystem{
		run: func(frame *ecs.UpdateFrame) {
			frame.Commands.Defer(func() {
				order = append(order, "defer")
				assert.Equal(t, 1, ecs.NewView[struct{ *Marker }](storage).Count(),
					"defers run after spawns")
			})
			frame.Commands.Spawn(Marker{})
			assert.Equal(t, 2, frame.Commands.Pending())
			order = append(order, "execute")
		},
	}
	scheduler.Register(recorder)

	scheduler.Once(0)

	assert.Equal(t, []string{"execute", "defer"}, order)
}

type recordingSystem struct {
	run func(frame *ecs.UpdateFrame)
}

func (s *recordingSystem) Execute(frame *ecs.UpdateFrame) {
	s.run(frame)
}
