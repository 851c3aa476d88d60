package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// ComponentSet is the type-erased view of a SparseSet, used by tooling that has to
// enumerate components without compile-time knowledge of their types (inspectors,
// snapshots, stats). Typed access goes through the generic functions instead.
//
// Structural changes are not exported here; they go through the World so that entity
// masks and mutation tracking stay consistent.
type ComponentSet interface {
	TypeIndex() TypeIndex
	TypeName() string
	Type() reflect.Type
	Len() int
	Ids() []EntityId
	Contains(id EntityId) bool
	// GetAny returns a pointer to the component (as *T) or nil.
	GetAny(id EntityId) any
	// New returns a pointer to a zero component (as *T), suitable for decoding into.
	New() any
	Visit(fn func(id EntityId, component any) bool)

	ptr(id EntityId) unsafe.Pointer
	setAny(id EntityId, value any) (added bool, ok bool)
	erase(id EntityId) bool
	clear()
}

// SparseSet stores components of type T densely, with a sparse index from entity slot to dense position.
//
// Erasing swaps the last element into the hole, so dense order is not stable across erases.
// Pointers returned by Insert/Get are only valid until the next Insert or Erase on the same set.
type SparseSet[T any] struct {
	info   *componentInfo
	values []T
	dense  []EntityId
	sparse []uint32
}

// NewSparseSet creates a standalone sparse set that is not attached to any registry.
func NewSparseSet[T any]() *SparseSet[T] {
	t := reflect.TypeFor[T]()
	return newSparseSet[T](&componentInfo{
		index: InvalidTypeIndex,
		typ:   t,
		name:  typeName(t),
	})
}

func newSparseSet[T any](info *componentInfo) *SparseSet[T] {
	return &SparseSet[T]{info: info}
}

func (s *SparseSet[T]) growSparse(index EntityIndex) {
	target := int(index) + 1
	if target <= len(s.sparse) {
		return
	}
	if target <= cap(s.sparse) {
		old := len(s.sparse)
		s.sparse = s.sparse[:target]
		for i := old; i < target; i++ {
			s.sparse[i] = invalidIndex
		}
		return
	}
	for len(s.sparse) < target {
		s.sparse = append(s.sparse, invalidIndex)
	}
}

// denseIndex returns the dense position holding id, or -1 when absent.
// The stored id must match exactly, so a recycled slot never resolves to a stale entry.
func (s *SparseSet[T]) denseIndex(id EntityId) int {
	index := id.Index()
	if int(index) >= len(s.sparse) {
		return -1
	}
	pos := s.sparse[index]
	if pos == invalidIndex || s.dense[pos] != id {
		return -1
	}
	return int(pos)
}

// Insert stores value for id, replacing any existing value. It reports whether the component was newly added.
func (s *SparseSet[T]) Insert(id EntityId, value T) (*T, bool) {
	if pos := s.denseIndex(id); pos >= 0 {
		s.values[pos] = value
		return &s.values[pos], false
	}

	index := id.Index()
	s.growSparse(index)

	// A different generation still mapped at this slot means the owner was destroyed
	// without being erased here; drop that entry first.
	if s.sparse[index] != invalidIndex {
		s.Erase(s.dense[s.sparse[index]])
	}

	s.sparse[index] = uint32(len(s.dense))
	s.dense = append(s.dense, id)
	s.values = append(s.values, value)
	return &s.values[len(s.values)-1], true
}

// Get returns a pointer to the component of id, or nil
func (s *SparseSet[T]) Get(id EntityId) *T {
	pos := s.denseIndex(id)
	if pos < 0 {
		return nil
	}
	return &s.values[pos]
}

// GetByIndex returns the component stored at an entity slot regardless of generation, or nil
func (s *SparseSet[T]) GetByIndex(index EntityIndex) *T {
	if int(index) >= len(s.sparse) {
		return nil
	}
	pos := s.sparse[index]
	if pos == invalidIndex {
		return nil
	}
	return &s.values[pos]
}

// Contains reports whether id has a component in this set
func (s *SparseSet[T]) Contains(id EntityId) bool {
	return s.denseIndex(id) >= 0
}

// ContainsIndex reports whether any entity at the given slot has a component in this set
func (s *SparseSet[T]) ContainsIndex(index EntityIndex) bool {
	return int(index) < len(s.sparse) && s.sparse[index] != invalidIndex
}

// Erase removes the component of id and reports whether anything was removed.
func (s *SparseSet[T]) Erase(id EntityId) bool {
	pos := s.denseIndex(id)
	if pos < 0 {
		return false
	}

	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[pos] = moved
	s.values[pos] = s.values[last]
	s.sparse[moved.Index()] = uint32(pos)
	s.sparse[id.Index()] = invalidIndex

	var zero T
	s.values[last] = zero
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	return true
}

// Ids returns the dense id array. It is owned by the set and must not be modified.
func (s *SparseSet[T]) Ids() []EntityId {
	return s.dense
}

// Values returns the dense component array, parallel to Ids
func (s *SparseSet[T]) Values() []T {
	return s.values
}

// Len returns the number of components in the set
func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

// All iterates over every (id, component) pair in dense order
func (s *SparseSet[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for i := range s.dense {
			if !yield(s.dense[i], &s.values[i]) {
				return
			}
		}
	}
}

// Clear removes every component while keeping allocated capacity
func (s *SparseSet[T]) Clear() {
	clear(s.values)
	s.values = s.values[:0]
	s.dense = s.dense[:0]
	s.sparse = s.sparse[:0]
}

func (s *SparseSet[T]) TypeIndex() TypeIndex {
	return s.info.index
}

func (s *SparseSet[T]) TypeName() string {
	return s.info.name
}

func (s *SparseSet[T]) Type() reflect.Type {
	return s.info.typ
}

func (s *SparseSet[T]) GetAny(id EntityId) any {
	if p := s.Get(id); p != nil {
		return p
	}
	return nil
}

func (s *SparseSet[T]) New() any {
	return new(T)
}

func (s *SparseSet[T]) Visit(fn func(id EntityId, component any) bool) {
	for i := range s.dense {
		if !fn(s.dense[i], &s.values[i]) {
			return
		}
	}
}

func (s *SparseSet[T]) ptr(id EntityId) unsafe.Pointer {
	pos := s.denseIndex(id)
	if pos < 0 {
		return nil
	}
	return unsafe.Pointer(&s.values[pos])
}

func (s *SparseSet[T]) setAny(id EntityId, value any) (bool, bool) {
	var concrete T
	if ptr, ok := value.(*T); ok {
		if ptr == nil {
			return false, false
		}
		concrete = *ptr
	} else if val, ok := value.(T); ok {
		concrete = val
	} else {
		return false, false
	}
	_, added := s.Insert(id, concrete)
	return added, true
}

func (s *SparseSet[T]) erase(id EntityId) bool {
	return s.Erase(id)
}

func (s *SparseSet[T]) clear() {
	s.Clear()
}
