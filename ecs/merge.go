package ecs

import (
	"fmt"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// Merge copies every live entity of other into w with fresh ids, together with its
// components and tags. Component types unknown to w's registry are registered from
// other's type metadata. The new ids are returned in the order of other.Entities().
// On error no entity is left behind in w.
//
// Components that hold EntityId values are copied as-is; callers that store
// references between entities must remap them with the returned ids.
func (w *World) Merge(other *World) ([]EntityId, error) {
	if other == nil || other == w {
		return nil, fmt.Errorf("ecs: cannot merge a world into itself or from nil")
	}

	type mergedSet struct {
		src      ComponentSet
		dstIndex TypeIndex
		name     string
	}
	var sets []mergedSet
	for srcIndex, set := range other.ComponentSets() {
		info := other.registry.info(srcIndex)
		if info == nil {
			return nil, fmt.Errorf("ecs: merge: %w: index %d", ErrTypeNotRegistered, srcIndex)
		}
		sets = append(sets, mergedSet{src: set, dstIndex: w.registry.importInfo(info), name: info.name})
	}

	source := other.Entities()
	remap := intmap.New[EntityId, EntityId](len(source))
	created := make([]EntityId, 0, len(source))
	for _, id := range source {
		nid := w.CreateEntity()
		remap.Put(id, nid)
		created = append(created, nid)
	}

	rollback := func(err error) ([]EntityId, error) {
		for _, id := range created {
			_ = w.Discard(id)
		}
		return nil, err
	}

	for _, ms := range sets {
		dst := w.ensureSet(ms.dstIndex)

		var err error
		ms.src.Visit(func(id EntityId, component any) bool {
			nid, ok := remap.Get(id)
			if !ok {
				return true
			}
			added, ok := dst.setAny(nid, component)
			if !ok {
				err = fmt.Errorf("ecs: merge: component %s rejected", ms.name)
				return false
			}
			if added {
				w.noteAdded(ms.dstIndex, nid)
			}
			return true
		})
		if err != nil {
			return rollback(err)
		}
	}

	for tag, set := range other.tags {
		for _, id := range set.ids {
			if nid, ok := remap.Get(id); ok {
				_ = w.AddTag(nid, tag)
			}
		}
	}

	w.logger.Debug("merged world",
		zap.Int("entities", len(created)),
		zap.Int("types", w.registry.Len()))
	return created, nil
}
