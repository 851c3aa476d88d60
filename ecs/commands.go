package ecs

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Commands buffers structural changes made while systems run, so that sets
// being iterated are not reshaped underneath them. The buffer is applied with Flush,
// which the Scheduler calls at the end of every frame.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()

	logger *zap.Logger
}

// NewCommands creates an empty command buffer
func NewCommands(logger *zap.Logger) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commands{logger: logger}
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function to run after the structural changes of the flush.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Destroy queues the destruction of an entity.
func (c *Commands) Destroy(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues adding (or replacing) a component.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues the removal of the component of compType.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Pending returns the number of queued operations
func (c *Commands) Pending() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued operation to world and resets the buffer.
// Order: destroys, removes, adds, spawns, deferred functions. Operations on entities
// destroyed in the same flush are dropped. Stale handles are logged and skipped;
// other failures are collected into the returned error.
func (c *Commands) Flush(world *World) error {
	var errs []error
	destroyed := make(map[EntityId]struct{}, len(c.deletes))

	for _, id := range c.deletes {
		if _, seen := destroyed[id]; seen {
			continue
		}
		destroyed[id] = struct{}{}
		if err := world.DestroyEntity(id); err != nil {
			c.logger.Debug("dropped destroy of stale entity", zap.Stringer("entity", id))
		}
	}

	for _, cmd := range c.removes {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		index, ok := world.registry.TypeIndexOf(cmd.compType)
		if !ok {
			errs = append(errs, fmt.Errorf("remove %s from %s: %w", cmd.compType, cmd.entity, ErrTypeNotRegistered))
			continue
		}
		world.removeComponent(index, cmd.entity)
	}

	for _, cmd := range c.adds {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		err := world.SetComponentAny(cmd.entity, cmd.component)
		switch {
		case errors.Is(err, ErrInvalidHandle):
			c.logger.Debug("dropped component add on stale entity",
				zap.Stringer("entity", cmd.entity),
				zap.String("type", fmt.Sprintf("%T", cmd.component)))
		case err != nil:
			errs = append(errs, fmt.Errorf("add %T to %s: %w", cmd.component, cmd.entity, err))
		}
	}

	for _, cmd := range c.spawns {
		if _, err := world.Spawn(cmd.components...); err != nil {
			errs = append(errs, fmt.Errorf("spawn: %w", err))
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.spawns)
	clear(c.adds)
	clear(c.defers)
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
