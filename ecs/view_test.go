package ecs_test

import (
	"testing"

	"github.com/plus3/tilebloom/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	moving := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	storage.Spawn(Position{X: 2}, Velocity{DX: 2}, Health{Current: 50})
	still := storage.Spawn(Position{X: 3})

	t.Run("required components", func(t *testing.T) {
		view := ecs.NewView[struct {
			*Position
			*Velocity
		}](storage)

		count := 0
		for item := range view.Values() {
			assert.NotNil(t, item.Position)
			assert.NotNil(t, item.Velocity)
			count++
		}
		assert.Equal(t, 2, count)
		assert.Equal(t, 2, view.Count())
	})

	t.Run("optional components", func(t *testing.T) {
		view := ecs.NewView[struct {
			*Position
			Health *Health `ecs:"optional"`
		}](storage)

		withHealth := 0
		for item := range view.Values() {
			if item.Health != nil {
				withHealth++
				assert.Equal(t, 50, item.Health.Current)
			}
		}
		assert.Equal(t, 1, withHealth)
		assert.Equal(t, 3, view.Count())
	})

	t.Run("entity id field", func(t *testing.T) {
		view := ecs.NewView[struct {
			ecs.EntityId
			*Position
		}](storage)

		ids := map[ecs.EntityId]float32{}
		for id, item := range view.Iter() {
			assert.Equal(t, id, item.EntityId)
			ids[item.EntityId] = item.Position.X
		}
		assert.Equal(t, float32(1), ids[moving])
		assert.Equal(t, float32(3), ids[still])
	})

	t.Run("get", func(t *testing.T) {
		view := ecs.NewView[struct {
			*Position
			*Velocity
		}](storage)

		item := view.Get(moving)
		require.NotNil(t, item)
		item.Position.X = 10
		assert.Equal(t, float32(10), ecs.ReadComponent[Position](storage, moving).X)

		assert.Nil(t, view.Get(still))
		assert.Nil(t, view.Get(ecs.NewEntityId(12345, 0)))
	})

	t.Run("iteration order follows spawn order", func(t *testing.T) {
		view := ecs.NewView[struct{ *Position }](storage)

		var xs []float32
		for item := range view.Values() {
			xs = append(xs, item.Position.X)
		}
		assert.Equal(t, []float32{10, 2, 3}, xs)
	})

	t.Run("invalid definitions", func(t *testing.T) {
		assert.Panics(t, func() { ecs.NewView[int](storage) })
		assert.Panics(t, func() { ecs.NewView[struct{ P Position }](storage) })
		assert.Panics(t, func() {
			ecs.NewView[struct {
				P *Position `ecs:"sometimes"`
			}](storage)
		})
	})
}
