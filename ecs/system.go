package ecs

// System is a per-frame behaviour. Query and Singleton fields on the
// implementing struct are initialised by the Scheduler on registration; any
// other fields keep their values between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// StartupSystem runs once, before the first frame. Unlike System it may fail,
// and a failure aborts startup.
type StartupSystem interface {
	Setup(frame *UpdateFrame) error
}
