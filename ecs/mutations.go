package ecs

import "reflect"

// RecentlyAdded returns the ids that gained a T component since T's window was last cleared.
// The slice is owned by the world; copy it before mutating the world if it must be kept.
func RecentlyAdded[T any](w *World) []EntityId {
	index, ok := w.registry.TypeIndexOf(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return w.tracker.added(index)
}

// RecentlyMutated returns the ids whose T component was added, written or marked since
// T's window was last cleared.
func RecentlyMutated[T any](w *World) []EntityId {
	index, ok := w.registry.TypeIndexOf(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return w.tracker.mutated(index)
}

// RecentlyRemoved returns the ids that lost their T component, by RemoveComponent or
// DestroyEntity, since T's window was last cleared. Ids of destroyed entities are no
// longer alive; they are reported so that consumers can drop what they derived from them.
func RecentlyRemoved[T any](w *World) []EntityId {
	index, ok := w.registry.TypeIndexOf(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return w.tracker.removed(index)
}

// MakeMutated records the T components of ids as mutated. Ids without a T component are ignored.
func MakeMutated[T any](w *World, ids ...EntityId) {
	set, index := lookupSet[T](w)
	if set == nil {
		return
	}
	for _, id := range ids {
		if set.Contains(id) {
			w.tracker.markMutated(index, id)
		}
	}
}

// ClearRecentMutationsFor empties the change window of T only
func ClearRecentMutationsFor[T any](w *World) {
	index, ok := w.registry.TypeIndexOf(reflect.TypeFor[T]())
	if ok {
		w.tracker.clearType(index)
	}
}

// RecentlyAddedByType is the erased form of RecentlyAdded
func (w *World) RecentlyAddedByType(index TypeIndex) []EntityId {
	return w.tracker.added(index)
}

// RecentlyMutatedByType is the erased form of RecentlyMutated
func (w *World) RecentlyMutatedByType(index TypeIndex) []EntityId {
	return w.tracker.mutated(index)
}

// RecentlyRemovedByType is the erased form of RecentlyRemoved
func (w *World) RecentlyRemovedByType(index TypeIndex) []EntityId {
	return w.tracker.removed(index)
}

// MakeMutatedByType is the erased form of MakeMutated
func (w *World) MakeMutatedByType(index TypeIndex, ids ...EntityId) {
	set := w.setAt(index)
	if set == nil {
		return
	}
	for _, id := range ids {
		if set.Contains(id) {
			w.tracker.markMutated(index, id)
		}
	}
}

// ClearRecentMutations empties the change windows of every component type.
func (w *World) ClearRecentMutations() {
	w.tracker.clearAll()
}

// ClearRecentMutationsByType empties the change window of a single type
func (w *World) ClearRecentMutationsByType(index TypeIndex) {
	w.tracker.clearType(index)
}
