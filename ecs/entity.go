package ecs

import (
	"fmt"
	"math"
)

// EntityIndex is the slot position of an entity inside its World.
type EntityIndex uint32

const invalidIndex = math.MaxUint32

// EntityId encodes the slot index (lower 32 bits) and the slot generation (upper 32 bits).
// Two ids are the same entity only if both parts match.
type EntityId uint64

// InvalidEntityId is the unset id. No entity is ever allocated at its index.
const InvalidEntityId = EntityId(invalidIndex)

// NewEntityId creates an EntityId from a slot index and a generation
func NewEntityId(index EntityIndex, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity ID
func (e EntityId) Index() EntityIndex {
	return EntityIndex(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// IsValid reports whether the id is anything other than the unset sentinel.
// It says nothing about whether the entity is still alive; use World.IsAlive for that.
func (e EntityId) IsValid() bool {
	return e.Index() != invalidIndex
}

func (e EntityId) String() string {
	if !e.IsValid() {
		return "entity(invalid)"
	}
	return fmt.Sprintf("entity(%d:%d)", e.Index(), e.Generation())
}
