package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntityHasNoComponents(t *testing.T) {
	w := newTestWorld()
	id := w.CreateEntity()

	assert.True(t, w.IsAlive(id))
	assert.Empty(t, w.ComponentTypes(id))
	assert.Equal(t, 1, w.EntityCount())
	assert.Equal(t, id, w.IdFromIndex(id.Index()))
}

func TestAddReadWriteComponent(t *testing.T) {
	w := newTestWorld()
	id := w.CreateEntity()

	ptr, err := ecs.AddComponent(w, id, Position{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, float32(1), ptr.X)

	read := ecs.ReadComponent[Position](w, id)
	require.NotNil(t, read)
	assert.Equal(t, Position{X: 1, Y: 2}, *read)
	assert.True(t, ecs.HasComponent[Position](w, id))
	assert.False(t, ecs.HasComponent[Velocity](w, id))
	assert.Nil(t, ecs.ReadComponent[Velocity](w, id))

	ecs.WriteComponent[Position](w, id).Z = 9
	assert.Equal(t, float32(9), ecs.ReadComponent[Position](w, id).Z)
}

func TestAddComponentRegistersOnFirstUse(t *testing.T) {
	type Unregistered struct{ N int }
	w := ecs.NewWorld(nil)
	id := w.CreateEntity()

	_, ok := w.Registry().TypeIndexOf(reflect.TypeFor[Unregistered]())
	assert.False(t, ok)

	_, err := ecs.AddComponent(w, id, Unregistered{N: 3})
	require.NoError(t, err)
	_, ok = w.Registry().TypeIndexOf(reflect.TypeFor[Unregistered]())
	assert.True(t, ok)
}

func TestCreateOrFindComponent(t *testing.T) {
	w := newTestWorld()
	id := w.CreateEntity()

	h, err := ecs.CreateOrFindComponent[Health](w, id)
	require.NoError(t, err)
	assert.Equal(t, Health{}, *h)
	h.Current = 50

	again, err := ecs.CreateOrFindComponent[Health](w, id)
	require.NoError(t, err)
	assert.Equal(t, 50, again.Current, "existing component is returned untouched")
	assert.Len(t, ecs.ComponentIds[Health](w), 1)
}

func TestStaleHandleIsRejected(t *testing.T) {
	w := newTestWorld()
	id := spawn(w, Position{X: 1})
	require.NoError(t, w.DestroyEntity(id))

	assert.False(t, w.IsAlive(id))
	assert.ErrorIs(t, w.DestroyEntity(id), ecs.ErrInvalidHandle)

	_, err := ecs.AddComponent(w, id, Position{})
	assert.ErrorIs(t, err, ecs.ErrInvalidHandle)
	_, err = ecs.CreateOrFindComponent[Position](w, id)
	assert.ErrorIs(t, err, ecs.ErrInvalidHandle)
	assert.Nil(t, ecs.ReadComponent[Position](w, id))
	assert.Nil(t, ecs.WriteComponent[Position](w, id))
	assert.ErrorIs(t, w.SetComponentAny(id, Position{}), ecs.ErrInvalidHandle)

	reused := w.CreateEntity()
	assert.Equal(t, id.Index(), reused.Index())
	assert.Nil(t, ecs.ReadComponent[Position](w, reused), "new occupant does not inherit components")
	assert.Nil(t, ecs.ReadComponent[Position](w, id))
}

func TestDestroyEntityErasesAllComponents(t *testing.T) {
	w := newTestWorld()
	a := spawn(w, Position{X: 1}, Velocity{DX: 1}, Name{Value: "a"})
	b := spawn(w, Position{X: 2}, Name{Value: "b"})

	require.NoError(t, w.DestroyEntity(a))

	assert.Equal(t, []ecs.EntityId{b}, ecs.ComponentIds[Position](w))
	assert.Equal(t, []ecs.EntityId{b}, ecs.ComponentIds[Name](w))
	assert.Empty(t, ecs.ComponentIds[Velocity](w))
	assert.Equal(t, "b", ecs.ReadComponent[Name](w, b).Value)
	assert.Equal(t, 1, w.EntityCount())
}

func TestRemoveComponent(t *testing.T) {
	w := newTestWorld()
	id := spawn(w, Position{X: 1}, Velocity{DX: 2})

	assert.True(t, ecs.RemoveComponent[Velocity](w, id))
	assert.False(t, ecs.RemoveComponent[Velocity](w, id))
	assert.False(t, ecs.RemoveComponent[Health](w, id))
	assert.True(t, w.IsAlive(id))

	position := ecs.TypeIndexFor[Position](w)
	assert.Equal(t, []ecs.TypeIndex{position}, w.ComponentTypes(id))
}

func TestComponentsAreParallelToIds(t *testing.T) {
	w := newTestWorld()
	for i := 0; i < 5; i++ {
		spawn(w, Score(i))
	}
	ids := ecs.ComponentIds[Score](w)
	values := ecs.Components[Score](w)
	require.Len(t, values, len(ids))
	for i, id := range ids {
		assert.Equal(t, values[i], *ecs.ReadComponent[Score](w, id))
	}
	assert.Nil(t, ecs.Components[Inventory](w))
}

func TestSeparateWorldsAreIndependent(t *testing.T) {
	a := ecs.NewWorld(nil)
	b := ecs.NewWorld(nil)

	idA := a.CreateEntity()
	idB := b.CreateEntity()
	_, err := ecs.AddComponent(a, idA, Position{X: 1})
	require.NoError(t, err)
	_, err = ecs.AddComponent(b, idB, Position{X: 2})
	require.NoError(t, err)

	assert.Equal(t, idA, idB, "both worlds hand out the same first id")
	assert.Equal(t, float32(1), ecs.ReadComponent[Position](a, idA).X)
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](b, idB).X)
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestRegistryRejectsReferenceKinds(t *testing.T) {
	r := ecs.NewComponentRegistry()
	assert.Panics(t, func() { ecs.RegisterComponent[*Position](r) })
	assert.Panics(t, func() { ecs.RegisterComponent[map[string]int](r) })
	assert.Panics(t, func() { ecs.RegisterComponent[func()](r) })
	assert.NotPanics(t, func() { ecs.RegisterComponent[RefComponent](r) }, "structs holding pointers are fine")
}

func TestRegistryIsIdempotent(t *testing.T) {
	r := ecs.NewComponentRegistry()
	first := ecs.RegisterComponent[Position](r)
	second := ecs.RegisterComponent[Velocity](r)
	assert.Equal(t, first, ecs.RegisterComponent[Position](r))
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, r.Len())

	index, ok := r.TypeIndexByName("github.com/plus3/sparsecs/ecs_test.Velocity")
	assert.True(t, ok)
	assert.Equal(t, second, index)
	assert.Equal(t, reflect.TypeFor[Velocity](), r.Type(second))
	assert.Equal(t, "", r.TypeName(ecs.TypeIndex(42)))
}

func TestErasedEnumeration(t *testing.T) {
	w := newTestWorld()
	id := spawn(w, Position{X: 1}, Name{Value: "n"})

	types := w.ComponentTypes(id)
	require.Len(t, types, 2)
	names := []string{w.TypeName(types[0]), w.TypeName(types[1])}
	assert.Contains(t, names, "github.com/plus3/sparsecs/ecs_test.Position")
	assert.Contains(t, names, "github.com/plus3/sparsecs/ecs_test.Name")

	for _, index := range types {
		component := w.ComponentAny(id, index)
		require.NotNil(t, component)
		assert.Equal(t, w.Registry().Type(index), reflect.TypeOf(component).Elem())
	}

	count := 0
	for index, set := range w.ComponentSets() {
		assert.Equal(t, index, set.TypeIndex())
		count++
	}
	assert.Equal(t, 2, count, "only types in use have storage")

	assert.Equal(t, "unknown", w.TypeName(ecs.TypeIndex(1000)))
	assert.Nil(t, w.ComponentSet(ecs.TypeIndex(1000)))
	assert.Nil(t, w.ComponentAny(id, ecs.TypeIndex(1000)))
}

func TestSetComponentAny(t *testing.T) {
	w := newTestWorld()
	id := w.CreateEntity()

	require.NoError(t, w.SetComponentAny(id, Position{X: 1}))
	require.NoError(t, w.SetComponentAny(id, &Velocity{DX: 2}))
	assert.Equal(t, float32(2), ecs.ReadComponent[Velocity](w, id).DX)

	type Unknown struct{}
	assert.ErrorIs(t, w.SetComponentAny(id, Unknown{}), ecs.ErrTypeNotRegistered)
	assert.Error(t, w.SetComponentAny(id, nil))
	assert.Error(t, w.SetComponentAny(id, (*Position)(nil)))

	assert.True(t, w.RemoveComponentByType(id, ecs.TypeIndexFor[Velocity](w)))
	assert.False(t, ecs.HasComponent[Velocity](w, id))
}

func TestSpawnRollsBackOnError(t *testing.T) {
	w := newTestWorld()
	type Unknown struct{}

	id, err := w.Spawn(Position{}, Unknown{})
	assert.ErrorIs(t, err, ecs.ErrTypeNotRegistered)
	assert.Equal(t, ecs.InvalidEntityId, id)
	assert.Equal(t, 0, w.EntityCount())
	assert.Empty(t, ecs.ComponentIds[Position](w))
}

func TestPrimitiveComponents(t *testing.T) {
	w := newTestWorld()
	id := spawn(w, Score(10), Label("hero"), Temperature(36.6))

	assert.Equal(t, Score(10), *ecs.ReadComponent[Score](w, id))
	assert.Equal(t, Label("hero"), *ecs.ReadComponent[Label](w, id))
	assert.InDelta(t, 36.6, float64(*ecs.ReadComponent[Temperature](w, id)), 0.0001)
}

func TestCollectStats(t *testing.T) {
	w := newTestWorld()
	spawn(w, Position{}, Velocity{})
	spawn(w, Position{})
	id := spawn(w, Name{Value: "x"})
	require.NoError(t, w.AddTag(id, "boss"))
	ecs.NewSingleton[AI](w)

	stats := w.CollectStats()
	assert.Equal(t, 3, stats.TotalEntityCount)
	assert.Equal(t, 3, stats.ComponentTypeCount)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, []string{"boss"}, stats.Tags)

	counts := make(map[string]int)
	for _, cs := range stats.ComponentBreakdown {
		counts[cs.TypeName] = cs.Count
		assert.Equal(t, cs.Count, cs.RecentlyAdded)
	}
	assert.Equal(t, 2, counts["github.com/plus3/sparsecs/ecs_test.Position"])
	assert.Equal(t, 1, counts["github.com/plus3/sparsecs/ecs_test.Velocity"])
}
