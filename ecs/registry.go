package ecs

import (
	"math"
	"reflect"
	"sync"
)

// TypeIndex is the small dense integer a ComponentRegistry assigns to a component type.
// It is stable for the lifetime of the registry only; persisted data must key by type name.
type TypeIndex uint32

// InvalidTypeIndex marks a type that is not registered
const InvalidTypeIndex = TypeIndex(math.MaxUint32)

type componentInfo struct {
	index    TypeIndex
	typ      reflect.Type
	name     string
	newSet   func(info *componentInfo) ComponentSet
	register func(r *ComponentRegistry) TypeIndex
}

// ComponentRegistry assigns type indices to component types and keeps the metadata
// needed to build their storage without static type knowledge.
// Each World owns one; a registry may be shared between worlds explicitly, which
// keeps type indices identical across them.
type ComponentRegistry struct {
	mu     sync.RWMutex
	infos  []*componentInfo
	byType map[reflect.Type]TypeIndex
	byName map[string]TypeIndex
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: make(map[reflect.Type]TypeIndex),
		byName: make(map[string]TypeIndex),
	}
}

// RegisterComponent registers T with the registry and returns its type index.
// Registering the same type again returns the existing index.
func RegisterComponent[T any](r *ComponentRegistry) TypeIndex {
	t := reflect.TypeFor[T]()

	r.mu.RLock()
	index, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return index
	}

	validateComponentType(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if index, ok := r.byType[t]; ok {
		return index
	}

	name := typeName(t)
	if _, taken := r.byName[name]; taken {
		panic("component type name " + name + " registered twice")
	}

	index = TypeIndex(len(r.infos))
	r.infos = append(r.infos, &componentInfo{
		index: index,
		typ:   t,
		name:  name,
		newSet: func(info *componentInfo) ComponentSet {
			return newSparseSet[T](info)
		},
		register: RegisterComponent[T],
	})
	r.byType[t] = index
	r.byName[name] = index
	return index
}

// TypeIndexOf returns the index registered for t
func (r *ComponentRegistry) TypeIndexOf(t reflect.Type) (TypeIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.byType[t]
	return index, ok
}

// TypeIndexByName resolves a persisted type name back to this registry's index
func (r *ComponentRegistry) TypeIndexByName(name string) (TypeIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.byName[name]
	return index, ok
}

// TypeName returns the registered name of a type, or "" if the index is unknown
func (r *ComponentRegistry) TypeName(index TypeIndex) string {
	if info := r.info(index); info != nil {
		return info.name
	}
	return ""
}

// Type returns the reflect.Type registered at index, or nil
func (r *ComponentRegistry) Type(index TypeIndex) reflect.Type {
	if info := r.info(index); info != nil {
		return info.typ
	}
	return nil
}

// Len returns the number of registered types
func (r *ComponentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.infos)
}

func (r *ComponentRegistry) info(index TypeIndex) *componentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(index) >= len(r.infos) {
		return nil
	}
	return r.infos[index]
}

// importInfo registers the type described by info (usually from another registry) and returns its local index.
func (r *ComponentRegistry) importInfo(info *componentInfo) TypeIndex {
	return info.register(r)
}

// typeName builds the persisted name of a type: import path qualified for named types.
func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// validateComponentType rejects kinds that are not plain values.
// Components can be structs or primitives (int, string, etc.) but not pointers, maps, channels, functions or interfaces.
func validateComponentType(t reflect.Type) {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}
}
