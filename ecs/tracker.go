package ecs

import "github.com/kamstrup/intmap"

// idSet is an insertion-ordered set of entity ids with O(1) add, remove and membership.
type idSet struct {
	ids []EntityId
	pos *intmap.Map[EntityId, int]
}

func newIdSet() *idSet {
	return &idSet{
		pos: intmap.New[EntityId, int](64),
	}
}

func (s *idSet) add(id EntityId) bool {
	if _, ok := s.pos.Get(id); ok {
		return false
	}
	s.pos.Put(id, len(s.ids))
	s.ids = append(s.ids, id)
	return true
}

func (s *idSet) remove(id EntityId) bool {
	p, ok := s.pos.Get(id)
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	moved := s.ids[last]
	s.ids[p] = moved
	s.pos.Put(moved, p)
	s.ids = s.ids[:last]
	s.pos.Del(id)
	return true
}

func (s *idSet) contains(id EntityId) bool {
	_, ok := s.pos.Get(id)
	return ok
}

func (s *idSet) len() int {
	return len(s.ids)
}

func (s *idSet) clear() {
	s.ids = s.ids[:0]
	s.pos.Clear()
}

// typeMutations is the change window of a single component type.
type typeMutations struct {
	added   *idSet
	mutated *idSet
	removed *idSet
}

// mutationTracker records, per component type, which entities had the component
// added, mutated or removed since the window for that type was last cleared.
// Adding a component counts as mutating it. Removal drops the id from the added and
// mutated sets; adding the component back to the same id cancels the removal.
type mutationTracker struct {
	types []*typeMutations
}

func (t *mutationTracker) forType(index TypeIndex) *typeMutations {
	for int(index) >= len(t.types) {
		t.types = append(t.types, nil)
	}
	m := t.types[index]
	if m == nil {
		m = &typeMutations{added: newIdSet(), mutated: newIdSet(), removed: newIdSet()}
		t.types[index] = m
	}
	return m
}

func (t *mutationTracker) lookup(index TypeIndex) *typeMutations {
	if int(index) >= len(t.types) {
		return nil
	}
	return t.types[index]
}

func (t *mutationTracker) markAdded(index TypeIndex, id EntityId) {
	m := t.forType(index)
	m.added.add(id)
	m.mutated.add(id)
	m.removed.remove(id)
}

func (t *mutationTracker) markMutated(index TypeIndex, id EntityId) {
	t.forType(index).mutated.add(id)
}

func (t *mutationTracker) isMutated(index TypeIndex, id EntityId) bool {
	m := t.lookup(index)
	return m != nil && m.mutated.contains(id)
}

// markRemoved forgets id and records the removal of its component.
func (t *mutationTracker) markRemoved(index TypeIndex, id EntityId) {
	m := t.forType(index)
	m.added.remove(id)
	m.mutated.remove(id)
	m.removed.add(id)
}

// forget drops id from the added and mutated windows of a type without recording a removal.
func (t *mutationTracker) forget(index TypeIndex, id EntityId) {
	if m := t.lookup(index); m != nil {
		m.added.remove(id)
		m.mutated.remove(id)
	}
}

func (t *mutationTracker) added(index TypeIndex) []EntityId {
	if m := t.lookup(index); m != nil {
		return m.added.ids
	}
	return nil
}

func (t *mutationTracker) mutated(index TypeIndex) []EntityId {
	if m := t.lookup(index); m != nil {
		return m.mutated.ids
	}
	return nil
}

func (t *mutationTracker) removed(index TypeIndex) []EntityId {
	if m := t.lookup(index); m != nil {
		return m.removed.ids
	}
	return nil
}

func (m *typeMutations) clear() {
	m.added.clear()
	m.mutated.clear()
	m.removed.clear()
}

func (t *mutationTracker) clearType(index TypeIndex) {
	if m := t.lookup(index); m != nil {
		m.clear()
	}
}

func (t *mutationTracker) clearAll() {
	for _, m := range t.types {
		if m != nil {
			m.clear()
		}
	}
}
