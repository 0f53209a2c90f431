package ecs

import (
	"reflect"
	"slices"
	"strings"
)

// Archetype holds every entity with one exact set of component types. Each
// type has its own column; row i across all columns is one entity.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []column
	length  int
}

// NewArchetype creates an archetype for the given sorted component types.
// Panics if any type is not registered.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]column, len(types)),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[idx] = factory()
	}

	return a
}

// Spawn appends one entity row and returns its index. components must hold
// exactly one value per archetype type, in any order.
func (a *Archetype) Spawn(components []any) uint32 {
	row := a.length
	for _, comp := range components {
		idx := a.columnIndex(componentType(comp))
		if idx < 0 {
			panic("component type " + componentType(comp).String() + " not part of archetype")
		}
		a.columns[idx].Append(comp)
	}
	a.length++
	return uint32(row)
}

// GetComponent returns a pointer to the component of compType at row, or nil.
func (a *Archetype) GetComponent(row uint32, compType reflect.Type) any {
	idx := a.columnIndex(compType)
	if idx < 0 {
		return nil
	}
	return a.columns[idx].Get(int(row))
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of entities in the archetype.
func (a *Archetype) Len() int {
	return a.length
}

// Iter yields the EntityId of every row.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		for row := 0; row < a.length; row++ {
			if !yield(NewEntityId(a.id, uint32(row))) {
				return
			}
		}
	}
}

func (a *Archetype) columnIndex(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

func (a *Archetype) String() string {
	names := make([]string, len(a.types))
	for i, t := range a.types {
		names[i] = t.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
