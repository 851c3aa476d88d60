package ecs

import "math"

// entitySlot is either occupied (holding the live generation) or free (linking to the next free slot).
type entitySlot struct {
	generation uint32
	next       uint32
	alivePos   uint32
	occupied   bool
}

// EntityPool hands out generational entity ids. Destroyed slots are reused
// most-recently-freed first; every reuse bumps the slot generation so that
// old ids stop resolving.
type EntityPool struct {
	slots    []entitySlot
	alive    []EntityId
	freeHead uint32
	retired  int
}

// NewEntityPool creates an empty entity pool
func NewEntityPool() *EntityPool {
	return &EntityPool{
		slots:    make([]entitySlot, 0, 1024),
		alive:    make([]EntityId, 0, 1024),
		freeHead: invalidIndex,
	}
}

// Create allocates a new entity id, reusing the most recently freed slot if there is one.
func (p *EntityPool) Create() EntityId {
	var index uint32
	if p.freeHead != invalidIndex {
		index = p.freeHead
		p.freeHead = p.slots[index].next
	} else {
		if uint64(len(p.slots)) >= invalidIndex {
			panic("ecs: entity pool exhausted")
		}
		index = uint32(len(p.slots))
		p.slots = append(p.slots, entitySlot{})
	}

	slot := &p.slots[index]
	slot.generation++
	slot.next = invalidIndex
	slot.occupied = true
	slot.alivePos = uint32(len(p.alive))

	id := NewEntityId(EntityIndex(index), slot.generation)
	p.alive = append(p.alive, id)
	return id
}

// Destroy releases the slot held by id. Stale, destroyed or out of range ids
// return ErrInvalidHandle and leave the pool untouched.
func (p *EntityPool) Destroy(id EntityId) error {
	if !p.IsValid(id) {
		return ErrInvalidHandle
	}

	index := uint32(id.Index())
	slot := &p.slots[index]

	last := len(p.alive) - 1
	moved := p.alive[last]
	p.alive[slot.alivePos] = moved
	p.slots[moved.Index()].alivePos = slot.alivePos
	p.alive = p.alive[:last]

	slot.occupied = false
	slot.alivePos = 0

	// A slot at the last generation can't be bumped again without aliasing
	// an id handed out earlier, so it is retired instead of recycled.
	if slot.generation == math.MaxUint32 {
		slot.next = invalidIndex
		p.retired++
		return nil
	}

	slot.next = p.freeHead
	p.freeHead = index
	return nil
}

// IsValid reports whether id refers to a live entity of this pool
func (p *EntityPool) IsValid(id EntityId) bool {
	index := id.Index()
	if int(index) >= len(p.slots) {
		return false
	}
	slot := &p.slots[index]
	return slot.occupied && slot.generation == id.Generation()
}

// IdFromIndex returns the live id occupying a slot, or InvalidEntityId
func (p *EntityPool) IdFromIndex(index EntityIndex) EntityId {
	if int(index) >= len(p.slots) || !p.slots[index].occupied {
		return InvalidEntityId
	}
	return NewEntityId(index, p.slots[index].generation)
}

// Ids returns the live entity ids. The order is unspecified and changes when entities are destroyed.
// The returned slice is owned by the pool and must not be modified.
func (p *EntityPool) Ids() []EntityId {
	return p.alive
}

// Len returns the number of live entities
func (p *EntityPool) Len() int {
	return len(p.alive)
}

// Capacity returns the number of slots ever allocated, live or free
func (p *EntityPool) Capacity() int {
	return len(p.slots)
}

// Retired returns the number of slots permanently withdrawn after exhausting their generations
func (p *EntityPool) Retired() int {
	return p.retired
}
