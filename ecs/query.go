package ecs

import (
	"iter"
	"unsafe"
)

// Query wraps a View with a per-frame cache of the matching entities.
// Execute snapshots the matches, after which Iter and Values can be walked any
// number of times. When the world's structure changes after Execute (a component
// added or removed, an entity destroyed), the remaining rows are re-read from storage
// as they are yielded and rows that no longer match are skipped. Ids and Len still
// describe the snapshot. Systems should prefer Commands for structural changes.
type Query[T any] struct {
	view      *View[T]
	sets      []ComponentSet
	structure uint64

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a new Query over world
func NewQuery[T any](world *World) *Query[T] {
	return &Query[T]{
		view: NewView[T](world),
	}
}

// Init initializes or re-initializes the Query with a world.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(world *World) {
	q.view = NewView[T](world)
	q.sets = q.sets[:0]
	q.cacheValid = false
}

// Execute builds the entity and component caches for this frame.
// Called automatically by the Scheduler before each system runs.
func (q *Query[T]) Execute() {
	q.execute(nil, false)
}

// ExecuteIds is like Execute but restricts the matches to ids, typically the
// output of RecentlyMutated or RecentlyAdded.
func (q *Query[T]) ExecuteIds(ids []EntityId) {
	q.execute(ids, true)
}

func (q *Query[T]) execute(ids []EntityId, restricted bool) {
	q.cachedEntities = q.cachedEntities[:0]
	clear(q.cachedComponents)
	q.cachedComponents = q.cachedComponents[:0]
	q.cacheValid = true
	q.structure = q.view.world.structure

	var ok bool
	q.sets, ok = q.view.resolve(q.sets)
	if !ok {
		return
	}
	if !restricted {
		ids = q.view.driver(q.sets)
	}

	var result T
	resultPtr := unsafe.Pointer(&result)
	for _, id := range ids {
		if !q.view.fill(id, resultPtr, q.sets) {
			continue
		}
		q.cachedEntities = append(q.cachedEntities, id)
		q.cachedComponents = append(q.cachedComponents, result)
	}
}

// Iter returns an iterator over entity IDs and component data.
// Mutable fields are recorded as mutated as each entity is yielded.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !q.current(i) {
				continue
			}
			q.view.markMutated(q.cachedEntities[i], unsafe.Pointer(&q.cachedComponents[i]))
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !q.current(i) {
				continue
			}
			q.view.markMutated(q.cachedEntities[i], unsafe.Pointer(&q.cachedComponents[i]))
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}

// current reports whether row i still matches, re-reading it from storage when the
// world's structure changed since Execute.
func (q *Query[T]) current(i int) bool {
	if q.view.world.structure == q.structure {
		return true
	}
	var ok bool
	q.sets, ok = q.view.resolve(q.sets)
	return ok && q.view.fill(q.cachedEntities[i], unsafe.Pointer(&q.cachedComponents[i]), q.sets)
}

// Ids returns the matched entity ids of the last Execute
func (q *Query[T]) Ids() []EntityId {
	return q.cachedEntities
}

// Len returns the number of matches of the last Execute
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// View returns the underlying view, for direct lookups by id
func (q *Query[T]) View() *View[T] {
	return q.view
}
