package ecs

import "reflect"

// TypeIndexFor returns the index of T in the world's registry, registering T on first use.
func TypeIndexFor[T any](w *World) TypeIndex {
	return RegisterComponent[T](w.registry)
}

// SetOf returns the storage for T, creating it on first use
func SetOf[T any](w *World) *SparseSet[T] {
	return w.ensureSet(TypeIndexFor[T](w)).(*SparseSet[T])
}

// lookupSet returns the storage for T without registering it.
func lookupSet[T any](w *World) (*SparseSet[T], TypeIndex) {
	index, ok := w.registry.TypeIndexOf(reflect.TypeFor[T]())
	if !ok {
		return nil, InvalidTypeIndex
	}
	set := w.setAt(index)
	if set == nil {
		return nil, index
	}
	return set.(*SparseSet[T]), index
}

// AddComponent stores value as the T component of id, replacing an existing one.
// A new component is recorded as added; a replaced one as mutated.
func AddComponent[T any](w *World, id EntityId, value T) (*T, error) {
	if !w.entities.IsValid(id) {
		return nil, ErrInvalidHandle
	}
	index := TypeIndexFor[T](w)
	set := w.ensureSet(index).(*SparseSet[T])
	ptr, added := set.Insert(id, value)
	if added {
		w.noteAdded(index, id)
	} else {
		w.tracker.markMutated(index, id)
	}
	return ptr, nil
}

// CreateOrFindComponent returns the T component of id, creating a zero value if it has none.
// Only the creation is recorded as a change.
func CreateOrFindComponent[T any](w *World, id EntityId) (*T, error) {
	if !w.entities.IsValid(id) {
		return nil, ErrInvalidHandle
	}
	index := TypeIndexFor[T](w)
	set := w.ensureSet(index).(*SparseSet[T])
	if ptr := set.Get(id); ptr != nil {
		return ptr, nil
	}
	var zero T
	ptr, _ := set.Insert(id, zero)
	w.noteAdded(index, id)
	return ptr, nil
}

// ReadComponent returns the T component of id, or nil if the entity is gone or has none.
// Writes through the returned pointer are not tracked; use WriteComponent for that.
func ReadComponent[T any](w *World, id EntityId) *T {
	set, _ := lookupSet[T](w)
	if set == nil {
		return nil
	}
	return set.Get(id)
}

// WriteComponent returns the T component of id like ReadComponent, and records it as mutated.
func WriteComponent[T any](w *World, id EntityId) *T {
	set, index := lookupSet[T](w)
	if set == nil {
		return nil
	}
	ptr := set.Get(id)
	if ptr != nil {
		w.tracker.markMutated(index, id)
	}
	return ptr
}

// HasComponent reports whether id currently holds a T component
func HasComponent[T any](w *World, id EntityId) bool {
	set, _ := lookupSet[T](w)
	return set != nil && set.Contains(id)
}

// RemoveComponent erases the T component of id and reports whether there was one.
func RemoveComponent[T any](w *World, id EntityId) bool {
	set, index := lookupSet[T](w)
	if set == nil {
		return false
	}
	return w.removeComponent(index, id)
}

// ComponentIds returns the ids holding a T component, in dense order.
// The slice is owned by the world and is invalidated by the next structural change to T.
func ComponentIds[T any](w *World) []EntityId {
	set, _ := lookupSet[T](w)
	if set == nil {
		return nil
	}
	return set.Ids()
}

// Components returns the dense T components, parallel to ComponentIds.
// Writes to the elements are not tracked.
func Components[T any](w *World) []T {
	set, _ := lookupSet[T](w)
	if set == nil {
		return nil
	}
	return set.Values()
}
