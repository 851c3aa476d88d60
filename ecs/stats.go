package ecs

// ComponentStats describes the storage of one component type.
type ComponentStats struct {
	TypeIndex       TypeIndex
	TypeName        string
	Count           int
	RecentlyAdded   int
	RecentlyMutated int
	RecentlyRemoved int
	// ApproxBytes counts the dense values only, not what they point to.
	ApproxBytes uintptr
}

// WorldStats is a point-in-time summary of a World.
type WorldStats struct {
	TotalEntityCount   int
	SlotCapacity       int
	RetiredSlots       int
	ComponentTypeCount int
	SingletonCount     int
	TagCount           int
	ComponentBreakdown []ComponentStats
	SingletonTypes     []string
	Tags               []string
}

// CollectStats gathers entity, component, singleton and tag counts.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		TotalEntityCount: w.entities.Len(),
		SlotCapacity:     w.entities.Capacity(),
		RetiredSlots:     w.entities.Retired(),
		SingletonTypes:   w.SingletonTypes(),
		Tags:             w.Tags(),
	}
	stats.SingletonCount = len(stats.SingletonTypes)
	stats.TagCount = len(stats.Tags)

	for index, set := range w.ComponentSets() {
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			TypeIndex:       index,
			TypeName:        set.TypeName(),
			Count:           set.Len(),
			RecentlyAdded:   len(w.tracker.added(index)),
			RecentlyMutated: len(w.tracker.mutated(index)),
			RecentlyRemoved: len(w.tracker.removed(index)),
			ApproxBytes:     uintptr(set.Len()) * set.Type().Size(),
		})
	}
	stats.ComponentTypeCount = len(stats.ComponentBreakdown)
	return stats
}
