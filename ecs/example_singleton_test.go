package ecs_test

import (
	"fmt"
	"reflect"

	"github.com/plus3/sparsecs/ecs"
)

type GameConfig struct {
	MaxPlayers int
	Difficulty string
}

type GameScore struct {
	Points int
	Level  int
}

// ExampleNewSingleton demonstrates creating and accessing singleton components.
// Singletons are global components not associated with any entity, useful for
// game state, configuration, or other application-wide data.
func ExampleNewSingleton() {
	world := ecs.NewWorld(nil)

	// Create singleton with initializer
	config := ecs.NewSingleton(world, GameConfig{
		MaxPlayers: 4,
		Difficulty: "Normal",
	})

	fmt.Printf("Config: %d players, %s difficulty\n", config.Get().MaxPlayers, config.Get().Difficulty)

	config.Get().Difficulty = "Hard"
	fmt.Printf("Updated difficulty: %s\n", config.Get().Difficulty)

	// The initializer is ignored once the singleton exists
	sameConfig := ecs.NewSingleton(world, GameConfig{Difficulty: "Easy"})
	fmt.Printf("Same config: %s difficulty\n", sameConfig.Get().Difficulty)

	// Output:
	// Config: 4 players, Normal difficulty
	// Updated difficulty: Hard
	// Same config: Hard difficulty
}

// ExampleSingleton_multipleReferences shows that multiple Singleton instances
// reference the same underlying data.
func ExampleSingleton_multipleReferences() {
	world := ecs.NewWorld(nil)

	score1 := ecs.NewSingleton(world, GameScore{Points: 0, Level: 1})
	fmt.Printf("Score1: %d points, Level %d\n", score1.Get().Points, score1.Get().Level)

	score1.Get().Points = 100
	score1.Get().Level = 2

	score2 := ecs.NewSingleton[GameScore](world)
	fmt.Printf("Score2: %d points, Level %d\n", score2.Get().Points, score2.Get().Level)

	score2.Get().Points = 250
	fmt.Printf("Score1 after Score2 update: %d points\n", score1.Get().Points)

	// Output:
	// Score1: 0 points, Level 1
	// Score2: 100 points, Level 2
	// Score1 after Score2 update: 250 points
}

// ExampleWorld_SingletonAny shows the type-erased singleton lookup used by tooling.
func ExampleWorld_SingletonAny() {
	world := ecs.NewWorld(nil)
	ecs.NewSingleton(world, GameConfig{MaxPlayers: 8, Difficulty: "Expert"})

	if config, ok := world.SingletonAny(reflect.TypeFor[GameConfig]()).(*GameConfig); ok {
		fmt.Printf("Game: %d players, %s mode\n", config.MaxPlayers, config.Difficulty)
	}

	if world.SingletonAny(reflect.TypeFor[GameScore]()) == nil {
		fmt.Println("Score not found")
	}
	fmt.Println(len(world.SingletonTypes()))

	// Output:
	// Game: 8 players, Expert mode
	// Score not found
	// 1
}
