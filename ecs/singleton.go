package ecs

import (
	"reflect"
	"sort"
	"unsafe"

	"go.uber.org/zap"
)

type singletonEntry struct {
	typ     reflect.Type
	value   any
	dataPtr unsafe.Pointer
}

func (w *World) getSingletonEntry(t reflect.Type) *singletonEntry {
	return w.singletons[t]
}

func (w *World) addSingleton(t reflect.Type, value reflect.Value) *singletonEntry {
	ptr := reflect.New(t)
	ptr.Elem().Set(value)
	entry := &singletonEntry{
		typ:     t,
		value:   ptr.Interface(),
		dataPtr: ptr.UnsafePointer(),
	}
	w.singletons[t] = entry
	w.logger.Debug("singleton added", zap.String("type", typeName(t)))
	return entry
}

// SingletonAny returns a pointer to the singleton of type t, or nil
func (w *World) SingletonAny(t reflect.Type) any {
	if entry := w.singletons[t]; entry != nil {
		return entry.value
	}
	return nil
}

// SingletonTypes returns the names of all singletons, sorted
func (w *World) SingletonTypes() []string {
	names := make([]string, 0, len(w.singletons))
	for t := range w.singletons {
		names = append(names, typeName(t))
	}
	sort.Strings(names)
	return names
}

// Singleton provides efficient access to a single component instance
// that is not associated with any entity. Use this for global state
// such as clocks, configuration or input.
type Singleton[T any] struct {
	world         *World
	componentPtr  unsafe.Pointer
	componentType reflect.Type
}

// NewSingleton creates a new Singleton accessor for the given world.
// If the singleton doesn't exist yet it is created with the initializer value,
// or a zero value when none is given.
func NewSingleton[T any](world *World, initializer ...T) *Singleton[T] {
	componentType := reflect.TypeFor[T]()

	entry := world.getSingletonEntry(componentType)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		entry = world.addSingleton(componentType, reflect.ValueOf(&value).Elem())
	}

	return &Singleton[T]{
		world:         world,
		componentPtr:  entry.dataPtr,
		componentType: componentType,
	}
}

// Init initializes the Singleton with a world reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(world *World) {
	s.world = world
	s.componentType = reflect.TypeFor[T]()
	s.componentPtr = nil
	s.updateCache()
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to the world.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	if s.componentPtr == nil {
		return nil
	}
	return (*T)(s.componentPtr)
}

func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	if entry := s.world.getSingletonEntry(s.componentType); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}

// Exists returns true if the singleton component has been added to the world
func (s *Singleton[T]) Exists() bool {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return s.componentPtr != nil
}
