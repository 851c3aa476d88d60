package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

type viewField struct {
	typ      reflect.Type
	index    TypeIndex
	offset   uintptr
	optional bool
	mutable  bool
	changed  bool
}

// View represents a query for entities with a specific combination of components.
// The type T should be a struct whose fields are pointers to component types, plus
// optionally a field `Id EntityId` that receives the entity id.
//
// Named fields can be tagged `ecs:"optional"` (nil when absent) and any field can be
// tagged `ecs:"mut"`, which records a mutated event for each entity the view hands out.
// Both can be combined as `ecs:"mut,optional"`. Embedded fields are always required.
//
// A field tagged `ecs:"changed"` only matches entities whose component of that type is
// in its recently mutated window. Several changed fields intersect their windows, and
// iteration is driven by the smallest of all required sets and windows. A changed
// field cannot be optional.
type View[T any] struct {
	world    *World
	fields   []viewField
	idOffset uintptr
	hasId    bool
}

// NewView creates a new view for the given struct type
func NewView[T any](world *World) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{world: world}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			if v.hasId {
				panic("View struct can only have one EntityId field")
			}
			v.hasId = true
			v.idOffset = field.Offset
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types: " + field.Name)
		}

		vf := viewField{
			typ:    field.Type.Elem(),
			index:  InvalidTypeIndex,
			offset: field.Offset,
		}
		if tag, ok := field.Tag.Lookup("ecs"); ok {
			for _, opt := range strings.Split(tag, ",") {
				switch strings.TrimSpace(opt) {
				case "optional":
					if field.Anonymous {
						panic("embedded View fields cannot be optional: " + field.Name)
					}
					vf.optional = true
				case "mut":
					vf.mutable = true
				case "changed":
					vf.changed = true
				case "":
				default:
					panic(fmt.Sprintf("invalid ecs tag value: %q (supported: \"mut\", \"optional\", \"changed\")", tag))
				}
			}
			if vf.changed && vf.optional {
				panic("View fields cannot be both changed and optional: " + field.Name)
			}
		}
		v.fields = append(v.fields, vf)
	}

	return v
}

// resolve looks up the storage of every field. It reports false when a required
// component type has no storage yet, in which case no entity can match.
func (v *View[T]) resolve(sets []ComponentSet) ([]ComponentSet, bool) {
	sets = sets[:0]
	for i := range v.fields {
		f := &v.fields[i]
		if f.index == InvalidTypeIndex {
			if index, ok := v.world.registry.TypeIndexOf(f.typ); ok {
				f.index = index
			}
		}
		var set ComponentSet
		if f.index != InvalidTypeIndex {
			set = v.world.setAt(f.index)
		}
		if set == nil && !f.optional {
			return sets, false
		}
		sets = append(sets, set)
	}
	return sets, true
}

// driver returns the smallest id list among the required sets and the windows of
// changed fields, or every live entity when the view has no required component.
func (v *View[T]) driver(sets []ComponentSet) []EntityId {
	var smallest []EntityId
	found := false
	consider := func(ids []EntityId) {
		if !found || len(ids) < len(smallest) {
			smallest = ids
			found = true
		}
	}
	for i, set := range sets {
		f := &v.fields[i]
		if f.optional {
			continue
		}
		consider(set.Ids())
		if f.changed {
			consider(v.world.tracker.mutated(f.index))
		}
	}
	if !found {
		return v.world.Entities()
	}
	return smallest
}

func (v *View[T]) fill(id EntityId, resultPtr unsafe.Pointer, sets []ComponentSet) bool {
	if !v.world.entities.IsValid(id) {
		return false
	}
	for i := range v.fields {
		f := &v.fields[i]
		fieldPtr := unsafe.Add(resultPtr, f.offset)

		var component unsafe.Pointer
		if sets[i] != nil {
			component = sets[i].ptr(id)
		}
		if component == nil && !f.optional {
			return false
		}
		if f.changed && !v.world.tracker.isMutated(f.index, id) {
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = component
	}
	if v.hasId {
		*(*EntityId)(unsafe.Add(resultPtr, v.idOffset)) = id
	}
	return true
}

func (v *View[T]) markMutated(id EntityId, resultPtr unsafe.Pointer) {
	for i := range v.fields {
		f := &v.fields[i]
		if !f.mutable {
			continue
		}
		if *(*unsafe.Pointer)(unsafe.Add(resultPtr, f.offset)) == nil {
			continue
		}
		// Query caches can outlive a removal; never record a component that is gone.
		if set := v.world.setAt(f.index); set != nil && set.Contains(id) {
			v.world.tracker.markMutated(f.index, id)
		}
	}
}

// Fill populates the provided struct pointer with component data for the given entity.
// Returns false if the entity is gone or missing any required component.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	sets, ok := v.resolve(make([]ComponentSet, 0, len(v.fields)))
	if !ok {
		return false
	}
	resultPtr := unsafe.Pointer(ptr)
	if !v.fill(id, resultPtr, sets) {
		return false
	}
	v.markMutated(id, resultPtr)
	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

func (v *View[T]) iterIds(ids []EntityId, sets []ComponentSet, yield func(EntityId, T) bool) {
	var result T
	resultPtr := unsafe.Pointer(&result)
	for _, id := range ids {
		if !v.fill(id, resultPtr, sets) {
			continue
		}
		v.markMutated(id, resultPtr)
		if !yield(id, result) {
			return
		}
	}
}

// Iter returns an iterator over all entities that have all the required components for this view.
// Iteration is driven by the smallest required component set; the driving ids are
// copied up front, so entities destroyed during iteration are skipped rather than
// corrupting the walk.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		sets, ok := v.resolve(make([]ComponentSet, 0, len(v.fields)))
		if !ok {
			return
		}
		v.iterIds(slices.Clone(v.driver(sets)), sets, yield)
	}
}

// IterIds is like Iter but only visits the given ids, in their order.
// Stale ids and ids lacking a required component are skipped.
func (v *View[T]) IterIds(ids []EntityId) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		sets, ok := v.resolve(make([]ComponentSet, 0, len(v.fields)))
		if !ok {
			return
		}
		v.iterIds(slices.Clone(ids), sets, yield)
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of matching entities without recording any mutation
func (v *View[T]) Count() int {
	sets, ok := v.resolve(make([]ComponentSet, 0, len(v.fields)))
	if !ok {
		return 0
	}
	var result T
	resultPtr := unsafe.Pointer(&result)
	n := 0
	for _, id := range v.driver(sets) {
		if v.fill(id, resultPtr, sets) {
			n++
		}
	}
	return n
}

// Spawn creates a new entity with the components the view struct points to.
// Nil optional fields are skipped; a nil required field is an error.
func (v *View[T]) Spawn(data T) (EntityId, error) {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.fields))
	for i := range v.fields {
		f := &v.fields[i]
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, f.offset))
		if componentPtr == nil {
			if !f.optional {
				return InvalidEntityId, fmt.Errorf("ecs: required component %s is nil in View.Spawn", f.typ)
			}
			continue
		}
		components = append(components, reflect.NewAt(f.typ, componentPtr).Interface())
	}

	return v.world.Spawn(components...)
}
