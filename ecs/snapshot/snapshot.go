// Package snapshot saves and restores the entities of an ecs.World as YAML.
//
// Components are keyed by their registered type name rather than their type
// index, so a snapshot can be loaded into a world whose registry assigned
// indices in a different order. Every type named in a snapshot must be
// registered with the target world before Load.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/plus3/sparsecs/ecs"
	"gopkg.in/yaml.v3"
)

// Version is written into every snapshot and checked on load
const Version = 1

var ErrVersion = errors.New("snapshot: unsupported version")

type document struct {
	Version  int         `yaml:"version"`
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Id         uint64               `yaml:"id"`
	Tags       []string             `yaml:"tags,omitempty"`
	Components map[string]yaml.Node `yaml:"components"`
}

// Save writes every live entity of w, with its components and tags, to out.
// Entities are ordered by slot index.
func Save(w *ecs.World, out io.Writer) error {
	ids := slices.Clone(w.Entities())
	slices.SortFunc(ids, func(a, b ecs.EntityId) int {
		return int(a.Index()) - int(b.Index())
	})
	tags := w.Tags()

	doc := document{
		Version:  Version,
		Entities: make([]entityDoc, 0, len(ids)),
	}
	for _, id := range ids {
		ed := entityDoc{
			Id:         uint64(id),
			Components: make(map[string]yaml.Node),
		}
		for _, tag := range tags {
			if w.HasTag(id, tag) {
				ed.Tags = append(ed.Tags, tag)
			}
		}
		for _, index := range w.ComponentTypes(id) {
			var node yaml.Node
			if err := node.Encode(w.ComponentAny(id, index)); err != nil {
				return fmt.Errorf("snapshot: encode %s of %s: %w", w.TypeName(index), id, err)
			}
			ed.Components[w.TypeName(index)] = node
		}
		doc.Entities = append(doc.Entities, ed)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return enc.Close()
}

// Load reads a snapshot from in and creates its entities in w with fresh ids.
// The returned slice holds the new ids in snapshot order. On error, the entities
// created so far are destroyed again.
func Load(w *ecs.World, in io.Reader) ([]ecs.EntityId, error) {
	var doc document
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}

	created := make([]ecs.EntityId, 0, len(doc.Entities))
	rollback := func(err error) ([]ecs.EntityId, error) {
		for _, id := range created {
			_ = w.Discard(id)
		}
		return nil, err
	}

	registry := w.Registry()
	for _, ed := range doc.Entities {
		id := w.CreateEntity()
		created = append(created, id)

		names := make([]string, 0, len(ed.Components))
		for name := range ed.Components {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			index, ok := registry.TypeIndexByName(name)
			if !ok {
				return rollback(fmt.Errorf("snapshot: %w: %s", ecs.ErrTypeNotRegistered, name))
			}
			value := reflect.New(registry.Type(index)).Interface()
			node := ed.Components[name]
			if err := node.Decode(value); err != nil {
				return rollback(fmt.Errorf("snapshot: decode %s of entity %d: %w", name, ed.Id, err))
			}
			if err := w.SetComponentAny(id, value); err != nil {
				return rollback(fmt.Errorf("snapshot: set %s: %w", name, err))
			}
		}
		for _, tag := range ed.Tags {
			if err := w.AddTag(id, tag); err != nil {
				return rollback(err)
			}
		}
	}
	return created, nil
}
