package ecs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plus3/tilebloom/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
	LastElapsed  float64
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.LastElapsed = frame.Elapsed
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type HealthSystem struct {
	Entities     ecs.Query[struct{ *Health }]
	ExecuteCount int
	TotalHealth  float64
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for item := range s.Entities.Values() {
		s.TotalHealth += float64(item.Health.Current)
	}
}

type spawnOnceSystem struct {
	done bool
}

func (s *spawnOnceSystem) Execute(frame *ecs.UpdateFrame) {
	if s.done {
		return
	}
	s.done = true
	frame.Commands.Spawn(Position{}, Velocity{DX: 1})
}

type populateSystem struct {
	Count ecs.Singleton[Score]
	n     int
}

func (s *populateSystem) Setup(frame *ecs.UpdateFrame) error {
	for i := 0; i < s.n; i++ {
		frame.Commands.Spawn(Health{Current: 10})
	}
	*s.Count.Get() = Score(s.n)
	return nil
}

type countingStartup struct {
	Healthy ecs.Query[struct{ *Health }]
	seen    int
	err     error
}

func (s *countingStartup) Setup(frame *ecs.UpdateFrame) error {
	s.seen = s.Healthy.Len()
	return s.err
}

func TestScheduler(t *testing.T) {
	registry := newTestRegistry()

	t.Run("system execution order and query initialization", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		movement := &MovementSystem{}
		health := &HealthSystem{}
		scheduler.Register(movement)
		scheduler.Register(health)

		storage.Spawn(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 2})
		storage.Spawn(Health{Current: 100, Max: 100})

		scheduler.Once(1.0)
		scheduler.Once(1.0)

		assert.Equal(t, 2, movement.ExecuteCount)
		assert.Equal(t, 2, health.ExecuteCount)
		assert.Equal(t, 100.0, health.TotalHealth)
		assert.Equal(t, uint64(2), scheduler.Frames())
	})

	t.Run("delta and elapsed time", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		id := storage.Spawn(Position{}, Velocity{DX: 10, DY: 20})
		movement := &MovementSystem{}
		scheduler.Register(movement)

		scheduler.Once(0.5)
		scheduler.Once(0.25)

		pos := ecs.ReadComponent[Position](storage, id)
		assert.InDelta(t, 7.5, pos.X, 1e-6)
		assert.InDelta(t, 15.0, pos.Y, 1e-6)
		assert.Equal(t, 0.75, movement.LastElapsed, "elapsed includes the current delta")
		assert.Equal(t, 0.75, scheduler.Elapsed())
	})

	t.Run("commands are flushed after the tick", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		scheduler.Register(&spawnOnceSystem{})
		movement := &MovementSystem{}
		scheduler.Register(movement)

		scheduler.Once(1.0)
		assert.Zero(t, movement.Entities.Len(), "spawn is deferred to the end of the tick")

		scheduler.Once(1.0)
		assert.Equal(t, 1, movement.Entities.Len())
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		movement := &MovementSystem{}
		scheduler.Register(movement)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			scheduler.Run(ctx, time.Millisecond)
			close(done)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop after context cancellation")
		}
		assert.Positive(t, movement.ExecuteCount)
	})
}

func TestSchedulerStartup(t *testing.T) {
	t.Run("runs in order with flushes between systems", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		scheduler := ecs.NewScheduler(storage)
		ecs.NewSingleton[Score](storage)

		populate := &populateSystem{n: 3}
		check := &countingStartup{}
		scheduler.RegisterStartup(populate)
		scheduler.RegisterStartup(check)

		require.NoError(t, scheduler.Startup())
		assert.True(t, scheduler.Started())
		assert.Equal(t, 3, check.seen)
		assert.Equal(t, Score(3), *ecs.NewSingleton[Score](storage).Get())

		require.NoError(t, scheduler.Startup(), "second call is a no-op")
		assert.Equal(t, 3, ecs.NewView[struct{ *Health }](storage).Count())
	})

	t.Run("failure is wrapped with the system name", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		scheduler := ecs.NewScheduler(storage)

		sentinel := errors.New("boom")
		scheduler.RegisterStartup(&countingStartup{err: sentinel})

		err := scheduler.Startup()
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "countingStartup")
	})
}

type sleepySystem struct {
	executeCount int
	sleepDur     time.Duration
}

func (s *sleepySystem) Execute(frame *ecs.UpdateFrame) {
	s.executeCount++
	time.Sleep(s.sleepDur)
}

func TestSchedulerStats(t *testing.T) {
	scheduler := ecs.NewScheduler(ecs.NewStorage(ecs.NewComponentRegistry()))

	stats := scheduler.GetStats()
	assert.Zero(t, stats.SystemCount)
	assert.Zero(t, stats.TotalExecutions)

	scheduler.Register(&sleepySystem{sleepDur: time.Millisecond})
	scheduler.Register(&sleepySystem{sleepDur: 2 * time.Millisecond})

	for range 3 {
		scheduler.Once(0.016)
	}

	stats = scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	assert.Equal(t, uint64(3), stats.Frames)
	assert.InDelta(t, 0.048, stats.Elapsed, 1e-9)

	require.Len(t, stats.Systems, 2)
	for _, sys := range stats.Systems {
		assert.Equal(t, "sleepySystem", sys.Name)
		assert.Equal(t, int64(3), sys.ExecutionCount)
		assert.Positive(t, sys.MinDuration)
		assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
		assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
		assert.GreaterOrEqual(t, sys.TotalDuration, sys.MaxDuration)
	}
}
