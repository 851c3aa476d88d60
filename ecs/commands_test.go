package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testSpawnSystem struct {
	executed bool
}

func (s *testSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	s.executed = true
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
}

type testDestroySystem struct {
	entityToDestroy ecs.EntityId
}

func (s *testDestroySystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Destroy(s.entityToDestroy)
}

type testMixedSystem struct {
	entity ecs.EntityId
}

func (s *testMixedSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 10, Y: 20})
	frame.Commands.AddComponent(s.entity, Velocity{DX: 1, DY: 1})
	frame.Commands.Destroy(s.entity)
	frame.Commands.Spawn(Health{Current: 100, Max: 100})
}

// Systems for cross-system entity mutation tests
type systemRemoveVelocity struct {
	entity ecs.EntityId
}

func (s *systemRemoveVelocity) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.RemoveComponent(s.entity, reflect.TypeFor[Velocity]())
}

type systemAddHealth struct {
	entity ecs.EntityId
}

func (s *systemAddHealth) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.AddComponent(s.entity, Health{Current: 50, Max: 100})
}

func TestCommands(t *testing.T) {
	t.Run("spawn entities", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w)

		system := &testSpawnSystem{}
		scheduler.Register(system)

		view := ecs.NewView[struct{ *Position }](w)
		if view.Count() != 0 {
			t.Error("entities spawned before frame execution")
		}

		scheduler.Once(1.0)

		if count := view.Count(); count != 2 {
			t.Errorf("expected 2 entities after frame, got %d", count)
		}
		if !system.executed {
			t.Error("system was not executed")
		}
	})

	t.Run("destroy entities", func(t *testing.T) {
		w := newTestWorld()
		e1 := spawn(w, Position{X: 1, Y: 2})
		e2 := spawn(w, Position{X: 3, Y: 4})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&testDestroySystem{entityToDestroy: e1})

		scheduler.Once(1.0)

		assert.False(t, w.IsAlive(e1))
		assert.True(t, w.IsAlive(e2))

		// the second frame destroys an already stale id, which is not an error
		scheduler.Once(1.0)
		assert.Equal(t, 1, w.EntityCount())
	})

	t.Run("add and remove across systems", func(t *testing.T) {
		w := newTestWorld()
		id := spawn(w, Position{}, Velocity{DX: 1})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&systemRemoveVelocity{entity: id})
		scheduler.Register(&systemAddHealth{entity: id})

		scheduler.Once(1.0)

		assert.False(t, ecs.HasComponent[Velocity](w, id))
		require.True(t, ecs.HasComponent[Health](w, id))
		assert.Equal(t, 50, ecs.ReadComponent[Health](w, id).Current)
	})

	t.Run("operations on destroyed entity are dropped", func(t *testing.T) {
		w := newTestWorld()
		id := spawn(w, Position{})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&testMixedSystem{entity: id})
		scheduler.Once(1.0)

		assert.False(t, w.IsAlive(id))
		assert.Empty(t, ecs.ComponentIds[Velocity](w))
		assert.Len(t, ecs.ComponentIds[Position](w), 1)
		assert.Len(t, ecs.ComponentIds[Health](w), 1)
	})
}

func TestCommandsFlushOrder(t *testing.T) {
	w := newTestWorld()
	victim := spawn(w, Position{})
	keeper := spawn(w, Position{}, Velocity{})

	cmds := ecs.NewCommands(nil)
	var order []string
	cmds.Defer(func() {
		order = append(order, "defer")
		assert.False(t, w.IsAlive(victim), "structural changes land before deferred functions")
		assert.Equal(t, 2, w.EntityCount())
	})
	cmds.Spawn(Name{Value: "spawned"})
	cmds.AddComponent(keeper, Health{Current: 1})
	cmds.RemoveComponent(keeper, reflect.TypeFor[Velocity]())
	cmds.Destroy(victim)
	cmds.Destroy(victim)
	assert.Equal(t, 6, cmds.Pending())

	require.NoError(t, cmds.Flush(w))
	assert.Equal(t, []string{"defer"}, order)
	assert.Equal(t, 0, cmds.Pending())

	assert.True(t, ecs.HasComponent[Health](w, keeper))
	assert.False(t, ecs.HasComponent[Velocity](w, keeper))
	assert.Len(t, ecs.ComponentIds[Name](w), 1)
}

func TestCommandsFlushCollectsErrors(t *testing.T) {
	type Unregistered struct{}
	w := newTestWorld()
	id := spawn(w, Position{})

	core, logs := observer.New(zap.DebugLevel)
	cmds := ecs.NewCommands(zap.New(core))

	stale := w.CreateEntity()
	require.NoError(t, w.DestroyEntity(stale))

	cmds.AddComponent(stale, Velocity{})
	cmds.AddComponent(id, Unregistered{})
	cmds.RemoveComponent(id, reflect.TypeFor[Unregistered]())
	cmds.Spawn(Position{}, Unregistered{})

	err := cmds.Flush(w)
	require.Error(t, err)
	assert.ErrorIs(t, err, ecs.ErrTypeNotRegistered)
	assert.NotErrorIs(t, err, ecs.ErrInvalidHandle, "stale handles are only logged")

	assert.Equal(t, 1, logs.FilterMessage("dropped component add on stale entity").Len())
	assert.Equal(t, 1, w.EntityCount(), "failed spawn is rolled back")
	assert.Equal(t, 0, cmds.Pending())
}
