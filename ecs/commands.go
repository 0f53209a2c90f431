package ecs

// Commands buffers structural changes made while systems run. The buffer is
// flushed once the stage completes, so queries never observe a half-updated
// storage.
type Commands struct {
	spawns [][]any
	defers []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues an entity spawn with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Defer queues fn to run after all queued spawns have been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Pending returns the number of queued operations.
func (c *Commands) Pending() int {
	return len(c.spawns) + len(c.defers)
}

// Flush applies every queued operation to storage, then resets the buffer.
func (c *Commands) Flush(storage *Storage) {
	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.spawns)
	c.spawns = c.spawns[:0]
	c.defers = c.defers[:0]
}
