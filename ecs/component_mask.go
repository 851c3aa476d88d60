package ecs

import "math/bits"

// componentMask records which component types an entity currently holds.
// Each bit corresponds to a TypeIndex; the mask grows as higher indices get set.
type componentMask []uint64

func (m *componentMask) set(t TypeIndex) {
	word := int(t >> 6)
	for len(*m) <= word {
		*m = append(*m, 0)
	}
	(*m)[word] |= uint64(1) << (t & 63)
}

func (m componentMask) unset(t TypeIndex) {
	word := int(t >> 6)
	if word < len(m) {
		m[word] &^= uint64(1) << (t & 63)
	}
}

func (m componentMask) has(t TypeIndex) bool {
	word := int(t >> 6)
	return word < len(m) && m[word]&(uint64(1)<<(t&63)) != 0
}

func (m componentMask) count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// types appends the set type indices to dst in ascending order.
func (m componentMask) types(dst []TypeIndex) []TypeIndex {
	for word, w := range m {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			dst = append(dst, TypeIndex(word<<6|bit))
			w &= w - 1
		}
	}
	return dst
}

func (m componentMask) reset() componentMask {
	clear(m)
	return m[:0]
}
