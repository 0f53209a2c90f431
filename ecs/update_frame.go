package ecs

// UpdateFrame is handed to every system executed within one scheduler tick.
type UpdateFrame struct {
	// DeltaTime is the time in seconds since the previous tick.
	DeltaTime float64

	// Elapsed is the total scheduler time in seconds, including DeltaTime.
	Elapsed float64

	// Frame counts ticks starting at zero.
	Frame uint64

	Commands *Commands
	Storage  *Storage
}
