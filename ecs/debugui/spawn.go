package debugui

import "github.com/plus3/sparsecs/ecs"

// SpawnDebugUI creates one entity per debug window. Pair it with a registered DebugUISystem.
func SpawnDebugUI(world *ecs.World) error {
	windows := []any{
		NewEntityBrowserComponent(100),
		NewComponentInspectorComponent(),
		NewComponentSetViewerComponent(),
		NewPerformanceStatsComponent(120),
		NewQueryDebuggerComponent(),
	}
	for _, window := range windows {
		if _, err := world.Spawn(window); err != nil {
			return err
		}
	}
	return nil
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[ComponentInspectorComponent](registry)
	ecs.RegisterComponent[ComponentSetViewerComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[QueryDebuggerComponent](registry)
}
