package debugui

import (
	"reflect"
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPosition struct {
	X, Y float32
}

type testVelocity struct {
	DX, DY float32
}

type testLabel struct {
	Text    string
	Visible bool
	Count   uint8
	Inner   *testPosition
	private int
}

func newTestWorld(t *testing.T) (*ecs.World, []ecs.EntityId) {
	t.Helper()
	w := ecs.NewWorld(nil)

	ids := make([]ecs.EntityId, 0, 3)
	for i := 0; i < 3; i++ {
		id := w.CreateEntity()
		_, err := ecs.AddComponent(w, id, testPosition{X: float32(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := ecs.AddComponent(w, ids[1], testVelocity{DX: 1})
	require.NoError(t, err)
	return w, ids
}

func TestCollectEntityInfos(t *testing.T) {
	w, ids := newTestWorld(t)

	infos := collectEntityInfos(w)
	require.Len(t, infos, 3)

	byId := make(map[ecs.EntityId]EntityInfo)
	for _, info := range infos {
		byId[info.ID] = info
	}
	assert.Equal(t, 1, byId[ids[0]].ComponentCount)
	assert.Equal(t, 2, byId[ids[1]].ComponentCount)
	assert.Equal(t, []string{"debugui.testPosition", "debugui.testVelocity"}, byId[ids[1]].ComponentTypes)
}

func TestFilterEntityInfos(t *testing.T) {
	w, ids := newTestWorld(t)
	infos := collectEntityInfos(w)

	assert.Len(t, filterEntityInfos(infos, "", nil), 3)

	velocity := ecs.TypeIndexFor[testVelocity](w)
	filtered := filterEntityInfos(infos, "", &velocity)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[1], filtered[0].ID)

	filtered = filterEntityInfos(infos, "TESTVELOCITY", nil)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[1], filtered[0].ID)

	assert.Empty(t, filterEntityInfos(infos, "nothing-matches", nil))
}

func TestSortEntityInfos(t *testing.T) {
	w, _ := newTestWorld(t)
	infos := collectEntityInfos(w)

	sortEntityInfos(infos, 3, false)
	assert.Equal(t, 2, infos[0].ComponentCount)

	sortEntityInfos(infos, 0, true)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].ID.Index(), infos[i].ID.Index())
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		total, page, perPage int
		start, end           int
	}{
		{total: 0, page: 0, perPage: 10, start: 0, end: 0},
		{total: 25, page: 0, perPage: 10, start: 0, end: 10},
		{total: 25, page: 2, perPage: 10, start: 20, end: 25},
		{total: 25, page: 7, perPage: 10, start: 25, end: 25},
	}
	for _, tt := range tests {
		start, end := pageBounds(tt.total, tt.page, tt.perPage)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestSetFieldValue(t *testing.T) {
	label := testLabel{}
	val := reflect.ValueOf(&label).Elem()

	assert.True(t, setFieldValue(val.Field(0), "hello"))
	assert.True(t, setFieldValue(val.Field(1), true))
	assert.True(t, setFieldValue(val.Field(2), uint64(200)))
	assert.False(t, setFieldValue(val.Field(2), uint64(300)), "overflowing uint8")
	assert.False(t, setFieldValue(val.Field(0), int64(1)), "kind mismatch")
	assert.False(t, setFieldValue(val.Field(4), int64(1)), "unexported field")

	assert.Equal(t, "hello", label.Text)
	assert.True(t, label.Visible)
	assert.Equal(t, uint8(200), label.Count)
}

func TestFieldLayouts(t *testing.T) {
	var layouts fieldLayouts
	fields := layouts.of(reflect.TypeFor[testLabel]())

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Text", "Visible", "Count", "Inner"}, names)
	assert.True(t, fields[3].Deref)
	assert.Equal(t, reflect.TypeFor[testPosition](), fields[3].Type)
	assert.Empty(t, layouts.of(reflect.TypeFor[int]()))

	label := reflect.ValueOf(testLabel{Text: "x"})
	_, ok := fields[3].resolve(label)
	assert.False(t, ok, "nil pointer fields are not drawable")

	label = reflect.ValueOf(testLabel{Inner: &testPosition{X: 3}})
	inner, ok := fields[3].resolve(label)
	require.True(t, ok)
	assert.Equal(t, float32(3), inner.Field(0).Interface())
}

func TestMatchingEntities(t *testing.T) {
	w, ids := newTestWorld(t)
	position := ecs.TypeIndexFor[testPosition](w)
	velocity := ecs.TypeIndexFor[testVelocity](w)

	driver, matches := matchingEntities(w, []ecs.TypeIndex{position, velocity})
	assert.Equal(t, velocity, driver)
	assert.Equal(t, []ecs.EntityId{ids[1]}, matches)

	_, matches = matchingEntities(w, []ecs.TypeIndex{position})
	assert.Len(t, matches, 3)
}

func TestCollectSetInfos(t *testing.T) {
	w, _ := newTestWorld(t)

	sets := collectSetInfos(w)
	sortSetInfos(sets, 2, false)
	require.Len(t, sets, 2)
	assert.Equal(t, 3, sets[0].Count)
	assert.Equal(t, 3, sets[0].RecentlyAdded)
	assert.Equal(t, 1, sets[1].Count)
}

func TestPerformanceStatsRecord(t *testing.T) {
	ps := NewPerformanceStatsComponent(4)

	assert.InDelta(t, 2.5, ps.record(0.010), 0.001)
	assert.InDelta(t, 5.0, ps.record(0.010), 0.001)
	ps.record(0.010)
	ps.record(0.010)
	assert.InDelta(t, 10.0, ps.record(0.010), 0.001)
}

func TestShortTypeName(t *testing.T) {
	assert.Equal(t, "ecs.Position", shortTypeName("github.com/plus3/sparsecs/ecs.Position"))
	assert.Equal(t, "int", shortTypeName("int"))
}
