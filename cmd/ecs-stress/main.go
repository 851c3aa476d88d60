package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/ecs/snapshot"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The initial number of entities to create.")
	profileMode := flag.String("profile", "", "Profile the run: cpu or mem.")
	snapshotPath := flag.String("snapshot", "", "Write the final world as YAML to this path.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Run.Duration = *duration
		case "entities":
			cfg.Run.Entities = *entityCount
		case "profile":
			cfg.Profile.Mode = *profileMode
		case "snapshot":
			cfg.Run.SnapshotPath = *snapshotPath
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	}

	seed := cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log.Info("starting ECS stress test",
		zap.Int("entities", cfg.Run.Entities),
		zap.Duration("duration", cfg.Run.Duration),
		zap.Int64("seed", seed))

	registry := ecs.NewComponentRegistry()
	registerStressComponents(registry)
	world := ecs.NewWorld(registry, ecs.WithLogger(log.Named("world")))
	counters := ecs.NewSingleton[Counters](world)

	scheduler := ecs.NewScheduler(world,
		ecs.WithSchedulerLogger(log.Named("scheduler")),
		ecs.WithMutationDrain(cfg.Run.DrainChanges))
	registerSystems(scheduler, cfg.Run, rng)

	log.Info("populating world")
	if err := populate(world, rng, cfg.Run); err != nil {
		return err
	}

	report := &Report{
		Duration:       cfg.Run.Duration,
		Entities:       cfg.Run.Entities,
		Seed:           seed,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Run.Duration)
	defer cancel()
	report.TotalUpdates, report.TotalTime = runFrames(ctx, scheduler, &report.UpdateTime)

	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.World = world.CollectStats()
	report.Scheduler = scheduler.GetStats()
	report.Counters = *counters.Get()

	log.Info("simulation finished", zap.Int64("updates", report.TotalUpdates))

	if cfg.Run.SnapshotPath != "" {
		if err := writeSnapshot(world, cfg.Run.SnapshotPath); err != nil {
			return err
		}
		log.Info("snapshot written", zap.String("path", cfg.Run.SnapshotPath))
	}

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func registerSystems(scheduler *ecs.Scheduler, cfg RunConfig, rng *rand.Rand) {
	scheduler.Register(&MovementSystem{})
	scheduler.Register(&DecaySystem{})
	scheduler.Register(&HealthWatchSystem{})
	scheduler.Register(&RespawnSystem{
		Target:        cfg.Entities,
		MaxComponents: cfg.MaxComponents,
		Lifetime:      cfg.Lifetime,
		Rand:          rng,
	})
}

func populate(world *ecs.World, rng *rand.Rand, cfg RunConfig) error {
	for i := 0; i < cfg.Entities; i++ {
		if _, err := world.Spawn(randomComponents(rng, cfg.MaxComponents, cfg.Lifetime)...); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	return nil
}

// runFrames ticks the scheduler as fast as possible until ctx is done.
func runFrames(ctx context.Context, scheduler *ecs.Scheduler, samples *FrameTimes) (int64, time.Duration) {
	startTime := time.Now()
	lastFrameTime := startTime
	var totalUpdates int64

	for ctx.Err() == nil {
		now := time.Now()
		deltaTime := now.Sub(lastFrameTime)
		lastFrameTime = now

		scheduler.Once(deltaTime.Seconds())
		samples.Samples = append(samples.Samples, time.Since(now))
		totalUpdates++
	}
	return totalUpdates, time.Since(startTime)
}

func writeSnapshot(world *ecs.World, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := snapshot.Save(world, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
