package main

import (
	"math/rand"

	"github.com/plus3/sparsecs/ecs"
)

type Position struct {
	X, Y, Z float32
}

type Velocity struct {
	DX, DY, DZ float32
}

type Health struct {
	Current int
	Max     int
}

// Lifetime counts down; the entity is destroyed when it reaches zero.
type Lifetime struct {
	Remaining float64
}

type Team uint8

type Sprite struct {
	Name  string
	Layer int
}

// Counters is a singleton the systems update and the report reads.
type Counters struct {
	Spawned       int64
	Destroyed     int64
	Moved         int64
	DeltaVisits   int64
	HealthChanged int64
}

var optionalComponents = []func(r *rand.Rand, lifetime float64) any{
	func(r *rand.Rand, _ float64) any {
		return Velocity{DX: r.Float32()*2 - 1, DY: r.Float32()*2 - 1, DZ: r.Float32()*2 - 1}
	},
	func(r *rand.Rand, _ float64) any {
		return Health{Current: 100, Max: 100}
	},
	func(r *rand.Rand, lifetime float64) any {
		return Lifetime{Remaining: lifetime * (0.5 + r.Float64())}
	},
	func(r *rand.Rand, _ float64) any {
		return Team(r.Intn(4))
	},
	func(r *rand.Rand, _ float64) any {
		return Sprite{Name: "unit", Layer: r.Intn(3)}
	},
}

func registerStressComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Lifetime](registry)
	ecs.RegisterComponent[Team](registry)
	ecs.RegisterComponent[Sprite](registry)
}

// randomComponents returns a Position plus up to maxComponents-1 other components, without repeats.
func randomComponents(r *rand.Rand, maxComponents int, lifetime float64) []any {
	components := []any{Position{X: r.Float32() * 1000, Y: r.Float32() * 1000}}
	extra := r.Intn(maxComponents)
	for _, i := range r.Perm(len(optionalComponents))[:min(extra, len(optionalComponents))] {
		components = append(components, optionalComponents[i](r, lifetime))
	}
	return components
}

type MovementSystem struct {
	Movers ecs.Query[struct {
		Position *Position `ecs:"mut"`
		Velocity *Velocity
	}]
	Counters ecs.Singleton[Counters]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	var moved int64
	for item := range s.Movers.Values() {
		item.Position.X += item.Velocity.DX * dt
		item.Position.Y += item.Velocity.DY * dt
		item.Position.Z += item.Velocity.DZ * dt
		moved++
	}
	s.Counters.Get().Moved += moved
}

type DecaySystem struct {
	Decaying ecs.Query[struct {
		Id       ecs.EntityId
		Lifetime *Lifetime `ecs:"mut"`
		Health   *Health   `ecs:"mut,optional"`
	}]
	Counters ecs.Singleton[Counters]
}

func (s *DecaySystem) Execute(frame *ecs.UpdateFrame) {
	counters := s.Counters.Get()
	for item := range s.Decaying.Values() {
		item.Lifetime.Remaining -= frame.DeltaTime
		if item.Health != nil && item.Health.Current > 0 {
			item.Health.Current--
		}
		if item.Lifetime.Remaining <= 0 {
			frame.Commands.Destroy(item.Id)
			counters.Destroyed++
		}
	}
}

// RespawnSystem keeps the population at its target by spawning replacements through the command buffer.
type RespawnSystem struct {
	Target        int
	MaxComponents int
	Lifetime      float64
	Rand          *rand.Rand
	Counters      ecs.Singleton[Counters]
}

func (s *RespawnSystem) Execute(frame *ecs.UpdateFrame) {
	missing := s.Target - frame.World.EntityCount()
	for i := 0; i < missing; i++ {
		frame.Commands.Spawn(randomComponents(s.Rand, s.MaxComponents, s.Lifetime)...)
	}
	if missing > 0 {
		s.Counters.Get().Spawned += int64(missing)
	}
}

// HealthWatchSystem only visits entities whose Health changed since the window was last drained.
type HealthWatchSystem struct {
	Counters ecs.Singleton[Counters]
	view     *ecs.View[struct {
		Health *Health
		Team   *Team `ecs:"optional"`
	}]
}

func (s *HealthWatchSystem) Execute(frame *ecs.UpdateFrame) {
	if s.view == nil {
		s.view = ecs.NewView[struct {
			Health *Health
			Team   *Team `ecs:"optional"`
		}](frame.World)
	}
	counters := s.Counters.Get()
	for _, item := range s.view.IterIds(ecs.RecentlyMutated[Health](frame.World)) {
		counters.DeltaVisits++
		if item.Health.Current < item.Health.Max {
			counters.HealthChanged++
		}
	}
}
