package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Elapsed         float64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// storageBinder is implemented by *Query[T] and *Singleton[T].
type storageBinder interface {
	Init(storage *Storage)
}

// queryExecutor is implemented by *Query[T].
type queryExecutor interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []queryExecutor
	stats   *systemStatsInternal
}

type registeredStartup struct {
	name    string
	system  StartupSystem
	queries []queryExecutor
}

// Scheduler runs startup systems once and the registered systems every tick,
// in registration order.
type Scheduler struct {
	storage  *Storage
	startup  []registeredStartup
	systems  []registeredSystem
	started  bool
	elapsed  float64
	frames   uint64
	commands *Commands
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage:  storage,
		commands: newCommands(),
	}
}

// Register adds a per-frame system and binds its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, registeredSystem{
		system:  system,
		queries: s.bindFields(system),
		stats: &systemStatsInternal{
			name:        systemName(system),
			minDuration: time.Duration(1<<63 - 1),
		},
	})
}

// RegisterStartup adds a system to run once from Startup.
func (s *Scheduler) RegisterStartup(system StartupSystem) {
	s.startup = append(s.startup, registeredStartup{
		name:    systemName(system),
		system:  system,
		queries: s.bindFields(system),
	})
}

// bindFields initialises every Query and Singleton field of a system struct
// and returns the queries that need executing before each run.
func (s *Scheduler) bindFields(system any) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr || systemValue.Elem().Kind() != reflect.Struct {
		return nil
	}
	systemValue = systemValue.Elem()

	var queries []queryExecutor
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		binder, ok := field.Addr().Interface().(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if q, ok := binder.(queryExecutor); ok {
			queries = append(queries, q)
		}
	}
	return queries
}

func systemName(system any) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

// Startup runs every startup system once, flushing commands after each so
// later systems observe earlier spawns. The first failure aborts startup and
// is returned wrapped with the system's name. Calling Startup again is a no-op.
func (s *Scheduler) Startup() error {
	if s.started {
		return nil
	}
	s.started = true

	for _, reg := range s.startup {
		frame := &UpdateFrame{Commands: s.commands, Storage: s.storage}
		for _, q := range reg.queries {
			q.Execute()
		}
		if err := reg.system.Setup(frame); err != nil {
			return fmt.Errorf("startup %s: %w", reg.name, err)
		}
		s.commands.Flush(s.storage)
	}
	return nil
}

// Started reports whether Startup has been called.
func (s *Scheduler) Started() bool {
	return s.started
}

// Once executes all registered systems once with the given delta time.
func (s *Scheduler) Once(dt float64) {
	s.elapsed += dt
	frame := &UpdateFrame{
		DeltaTime: dt,
		Elapsed:   s.elapsed,
		Frame:     s.frames,
		Commands:  s.commands,
		Storage:   s.storage,
	}

	for _, reg := range s.systems {
		start := time.Now()
		for _, q := range reg.queries {
			q.Execute()
		}
		reg.system.Execute(frame)
		duration := time.Since(start)

		stats := reg.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration
		stats.minDuration = min(stats.minDuration, duration)
		stats.maxDuration = max(stats.maxDuration, duration)
	}

	s.commands.Flush(s.storage)
	s.frames++
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// Elapsed returns the accumulated tick time in seconds.
func (s *Scheduler) Elapsed() float64 {
	return s.elapsed
}

// Frames returns the number of completed ticks.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frames,
		Elapsed:     s.elapsed,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, reg := range s.systems {
		internal := reg.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
	}

	return stats
}
