package snapshot_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/ecs/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y, Z float32
}

type Name struct {
	Value string
}

type Score int32

func TestSaveLoadRoundTrip(t *testing.T) {
	src := ecs.NewWorld(nil)
	a := src.CreateEntity()
	b := src.CreateEntity()
	_, err := ecs.AddComponent(src, a, Position{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	_, err = ecs.AddComponent(src, a, Name{Value: "alpha"})
	require.NoError(t, err)
	_, err = ecs.AddComponent(src, b, Score(42))
	require.NoError(t, err)
	require.NoError(t, src.AddTag(b, "enemy"))

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(src, &buf))
	assert.Contains(t, buf.String(), "version: 1")

	// Register in a different order so type indices differ between the worlds.
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Position](registry)
	dst := ecs.NewWorld(registry)

	ids, err := snapshot.Load(dst, &buf)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	assert.Equal(t, &Position{X: 1, Y: 2, Z: 3}, ecs.ReadComponent[Position](dst, ids[0]))
	assert.Equal(t, &Name{Value: "alpha"}, ecs.ReadComponent[Name](dst, ids[0]))
	assert.False(t, ecs.HasComponent[Score](dst, ids[0]))

	assert.Equal(t, Score(42), *ecs.ReadComponent[Score](dst, ids[1]))
	assert.True(t, dst.HasTag(ids[1], "enemy"))
	assert.False(t, dst.HasTag(ids[0], "enemy"))

	assert.Equal(t, []ecs.EntityId{ids[0]}, ecs.RecentlyAdded[Position](dst))
}

func TestLoadUnknownTypeRollsBack(t *testing.T) {
	src := ecs.NewWorld(nil)
	id := src.CreateEntity()
	_, err := ecs.AddComponent(src, id, Position{X: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(src, &buf))

	dst := ecs.NewWorld(nil)
	ids, err := snapshot.Load(dst, &buf)
	assert.ErrorIs(t, err, ecs.ErrTypeNotRegistered)
	assert.Nil(t, ids)
	assert.Equal(t, 0, dst.EntityCount())
}

func TestLoadPartialEntityRollsBack(t *testing.T) {
	src := ecs.NewWorld(nil)
	id := src.CreateEntity()
	_, err := ecs.AddComponent(src, id, Name{Value: "half"})
	require.NoError(t, err)
	_, err = ecs.AddComponent(src, id, Position{X: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(src, &buf))

	// Name decodes before Position is found to be unknown.
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Name](registry)
	dst := ecs.NewWorld(registry)

	_, err = snapshot.Load(dst, &buf)
	require.ErrorIs(t, err, ecs.ErrTypeNotRegistered)
	assert.Equal(t, 0, dst.EntityCount())
	assert.Empty(t, ecs.ComponentIds[Name](dst))
	assert.Empty(t, ecs.RecentlyAdded[Name](dst))
	assert.Empty(t, ecs.RecentlyRemoved[Name](dst), "a failed load is not reported as removals")
}

func TestLoadRejectsVersion(t *testing.T) {
	_, err := snapshot.Load(ecs.NewWorld(nil), strings.NewReader("version: 99\nentities: []\n"))
	assert.ErrorIs(t, err, snapshot.ErrVersion)
}

func TestLoadEmptyInput(t *testing.T) {
	ids, err := snapshot.Load(ecs.NewWorld(nil), strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSaveEmptyWorld(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(ecs.NewWorld(nil), &buf))

	ids, err := snapshot.Load(ecs.NewWorld(nil), &buf)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
