package ecs

// UpdateFrame is passed to every system on each scheduler tick.
// Structural changes made while iterating queries should go through Commands.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}
