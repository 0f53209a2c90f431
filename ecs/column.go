package ecs

import "reflect"

// ComponentRegistry holds the column factories for one ECS instance. Every
// component type must be registered before an entity carrying it is spawned.
type ComponentRegistry struct {
	factories map[reflect.Type]func() column
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() column),
	}
}

// RegisterComponent registers component type T with the registry.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() column {
		return &typedColumn[T]{}
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() column {
	return r.factories[t]
}

// column is the type-erased storage for one component type of one archetype.
type column interface {
	Append(item any) int
	Get(index int) any
	Len() int
}

const chunkSize = 64

// typedColumn stores values of T in fixed-size chunks so that pointers handed
// out by Get stay valid while the column grows.
type typedColumn[T any] struct {
	chunks []*[chunkSize]T
	length int
}

// Append copies item into the column and returns its row. Accepts T or *T;
// anything else is rejected with -1.
func (c *typedColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		return -1
	}

	row := c.length
	if row/chunkSize >= len(c.chunks) {
		c.chunks = append(c.chunks, new([chunkSize]T))
	}
	c.chunks[row/chunkSize][row%chunkSize] = value
	c.length++
	return row
}

// Get returns a *T for the row, or nil when out of range.
func (c *typedColumn[T]) Get(index int) any {
	if index < 0 || index >= c.length {
		return nil
	}
	return &c.chunks[index/chunkSize][index%chunkSize]
}

func (c *typedColumn[T]) Len() int {
	return c.length
}
