package ecs

import "errors"

var (
	// ErrInvalidHandle is returned when an EntityId is out of range, already destroyed,
	// or carries a generation that no longer matches its slot.
	ErrInvalidHandle = errors.New("ecs: invalid entity handle")

	// ErrTypeNotRegistered is returned by the type-erased paths when a value's type
	// has never been registered with the world's ComponentRegistry.
	ErrTypeNotRegistered = errors.New("ecs: component type not registered")
)
