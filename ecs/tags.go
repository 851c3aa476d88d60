package ecs

import "sort"

// AddTag attaches a named, valueless marker to id.
func (w *World) AddTag(id EntityId, tag string) error {
	if !w.entities.IsValid(id) {
		return ErrInvalidHandle
	}
	set, ok := w.tags[tag]
	if !ok {
		set = newIdSet()
		w.tags[tag] = set
	}
	set.add(id)
	return nil
}

// RemoveTag detaches tag from id and reports whether it was present
func (w *World) RemoveTag(id EntityId, tag string) bool {
	set, ok := w.tags[tag]
	if !ok {
		return false
	}
	return set.remove(id)
}

// HasTag reports whether id carries tag
func (w *World) HasTag(id EntityId, tag string) bool {
	set, ok := w.tags[tag]
	return ok && set.contains(id)
}

// TaggedIds returns the entities carrying tag. The slice is owned by the world.
func (w *World) TaggedIds(tag string) []EntityId {
	if set, ok := w.tags[tag]; ok {
		return set.ids
	}
	return nil
}

// ClearTag removes tag from every entity
func (w *World) ClearTag(tag string) {
	delete(w.tags, tag)
}

// Tags returns the names of all tags in use, sorted
func (w *World) Tags() []string {
	names := make([]string, 0, len(w.tags))
	for name, set := range w.tags {
		if set.len() > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
