package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// World owns the entity pool, one sparse set per component type in use, and the
// change windows of every type. It is the only writer of all of them.
//
// A World is not safe for concurrent mutation; schedule systems so that nothing
// writes a component type while another system reads or writes it.
type World struct {
	registry   *ComponentRegistry
	entities   *EntityPool
	sets       []ComponentSet
	masks      []componentMask
	tracker    mutationTracker
	tags       map[string]*idSet
	singletons map[reflect.Type]*singletonEntry
	logger     *zap.Logger

	// structure counts inserts and erases; cached component pointers are stale once it moves.
	structure uint64

	typeScratch []TypeIndex
}

// WorldOption configures a World
type WorldOption func(*World)

// WithLogger sets the logger used for type registration and diagnostics.
func WithLogger(logger *zap.Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorld creates a world backed by the given registry.
// A nil registry gives the world a private one, so separate worlds never share type indices by accident.
func NewWorld(registry *ComponentRegistry, opts ...WorldOption) *World {
	if registry == nil {
		registry = NewComponentRegistry()
	}
	w := &World{
		registry:   registry,
		entities:   NewEntityPool(),
		tags:       make(map[string]*idSet),
		singletons: make(map[reflect.Type]*singletonEntry),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Registry returns the component registry of the world
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Logger returns the world's logger
func (w *World) Logger() *zap.Logger {
	return w.logger
}

// CreateEntity allocates a new entity with no components.
func (w *World) CreateEntity() EntityId {
	id := w.entities.Create()
	index := int(id.Index())
	for len(w.masks) <= index {
		w.masks = append(w.masks, nil)
	}
	return id
}

// DestroyEntity erases every component and tag of id and releases its slot.
// Each erased component is recorded in its type's removed window.
// A stale or unknown id returns ErrInvalidHandle.
func (w *World) DestroyEntity(id EntityId) error {
	return w.destroy(id, true)
}

// Discard destroys id like DestroyEntity but records no removals, for undoing entities
// that were created and never handed out, such as a failed load.
func (w *World) Discard(id EntityId) error {
	return w.destroy(id, false)
}

func (w *World) destroy(id EntityId, recordRemovals bool) error {
	if !w.entities.IsValid(id) {
		return ErrInvalidHandle
	}

	index := id.Index()
	mask := w.masks[index]
	w.typeScratch = mask.types(w.typeScratch[:0])
	for _, t := range w.typeScratch {
		w.sets[t].erase(id)
		if recordRemovals {
			w.tracker.markRemoved(t, id)
		} else {
			w.tracker.forget(t, id)
		}
	}
	if len(w.typeScratch) > 0 {
		w.structure++
	}
	w.masks[index] = mask.reset()

	for _, set := range w.tags {
		set.remove(id)
	}

	return w.entities.Destroy(id)
}

// IsAlive reports whether id refers to a live entity of this world
func (w *World) IsAlive(id EntityId) bool {
	return w.entities.IsValid(id)
}

// IdFromIndex returns the live id at a slot index, or InvalidEntityId
func (w *World) IdFromIndex(index EntityIndex) EntityId {
	return w.entities.IdFromIndex(index)
}

// Entities returns every live entity id. The slice is owned by the world and
// is invalidated by the next CreateEntity or DestroyEntity.
func (w *World) Entities() []EntityId {
	return w.entities.Ids()
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	return w.entities.Len()
}

// Pool exposes the entity allocator, mostly for diagnostics
func (w *World) Pool() *EntityPool {
	return w.entities
}

func (w *World) setAt(index TypeIndex) ComponentSet {
	if int(index) < len(w.sets) {
		return w.sets[index]
	}
	return nil
}

// ensureSet returns the storage for a registered type, creating it on first use.
func (w *World) ensureSet(index TypeIndex) ComponentSet {
	for int(index) >= len(w.sets) {
		w.sets = append(w.sets, nil)
	}
	set := w.sets[index]
	if set == nil {
		info := w.registry.info(index)
		if info == nil {
			panic("ecs: type index not registered with this world's registry")
		}
		set = info.newSet(info)
		w.sets[index] = set
		w.logger.Debug("component storage created",
			zap.String("type", info.name),
			zap.Uint32("index", uint32(index)))
	}
	return set
}

// setForType resolves a reflect.Type to its storage, or nil when the type is not registered.
func (w *World) setForType(t reflect.Type) (ComponentSet, TypeIndex) {
	index, ok := w.registry.TypeIndexOf(t)
	if !ok {
		return nil, InvalidTypeIndex
	}
	return w.ensureSet(index), index
}

func (w *World) noteAdded(index TypeIndex, id EntityId) {
	w.masks[id.Index()].set(index)
	w.tracker.markAdded(index, id)
	w.structure++
}

func (w *World) removeComponent(index TypeIndex, id EntityId) bool {
	set := w.setAt(index)
	if set == nil || !set.erase(id) {
		return false
	}
	w.masks[id.Index()].unset(index)
	w.tracker.markRemoved(index, id)
	w.structure++
	return true
}
