package ecs

// System represents a behavior that operates on entities with specific components.
// Systems can declare Query and Singleton fields, which the Scheduler initializes on
// registration, as well as custom state that persists between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
