package ecs

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"go.uber.org/zap"
)

var errNilComponent = errors.New("ecs: nil component value")

// ComponentSets iterates over the storage of every type that has been used in this world,
// in type index order.
func (w *World) ComponentSets() iter.Seq2[TypeIndex, ComponentSet] {
	return func(yield func(TypeIndex, ComponentSet) bool) {
		for i, set := range w.sets {
			if set == nil {
				continue
			}
			if !yield(TypeIndex(i), set) {
				return
			}
		}
	}
}

// ComponentSet returns the storage of a type, or nil if the type is unknown or has never been used.
func (w *World) ComponentSet(index TypeIndex) ComponentSet {
	return w.setAt(index)
}

// TypeName returns the registered name of a type index, or "unknown"
func (w *World) TypeName(index TypeIndex) string {
	if name := w.registry.TypeName(index); name != "" {
		return name
	}
	return "unknown"
}

// ComponentTypes returns the types id currently holds, in ascending index order.
// A dead id has none.
func (w *World) ComponentTypes(id EntityId) []TypeIndex {
	if !w.entities.IsValid(id) {
		return nil
	}
	return w.masks[id.Index()].types(nil)
}

// ComponentAny returns a pointer to the component of id with the given type, or nil.
func (w *World) ComponentAny(id EntityId, index TypeIndex) any {
	set := w.setAt(index)
	if set == nil {
		return nil
	}
	return set.GetAny(id)
}

// SetComponentAny adds or replaces a component whose type is only known at runtime.
// value may be a T or a *T of a registered type.
func (w *World) SetComponentAny(id EntityId, value any) error {
	t := reflect.TypeOf(value)
	if t == nil {
		return errNilComponent
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if !w.entities.IsValid(id) {
		return ErrInvalidHandle
	}

	set, index := w.setForType(t)
	if set == nil {
		return fmt.Errorf("%w: %s", ErrTypeNotRegistered, t)
	}
	added, ok := set.setAny(id, value)
	if !ok {
		return errNilComponent
	}
	if added {
		w.noteAdded(index, id)
	} else {
		w.tracker.markMutated(index, id)
	}
	return nil
}

// RemoveComponentByType erases the component of a given type from id
func (w *World) RemoveComponentByType(id EntityId, index TypeIndex) bool {
	return w.removeComponent(index, id)
}

// Spawn creates an entity and sets each of the given components on it.
// If any component is rejected the entity is destroyed again and the error returned.
func (w *World) Spawn(components ...any) (EntityId, error) {
	id := w.CreateEntity()
	for _, c := range components {
		if err := w.SetComponentAny(id, c); err != nil {
			w.logger.Warn("spawn rejected component",
				zap.Stringer("entity", id),
				zap.String("type", fmt.Sprintf("%T", c)),
				zap.Error(err))
			_ = w.DestroyEntity(id)
			return InvalidEntityId, err
		}
	}
	return id, nil
}
