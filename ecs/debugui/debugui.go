// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems, and ships
// a set of inspector windows built on the world's type-erased enumeration API.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sparsecs/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions.
// It also updates the ImguiInputState singleton with current input capture state.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
		state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}

// DebugUISystem renders every debug window spawned with SpawnDebugUI.
// Rendering is deferred to the end of the frame, after buffered commands have been
// applied, so the windows show the state the next frame will start from.
type DebugUISystem struct {
	Browsers   ecs.Query[struct{ *EntityBrowserComponent }]
	Inspectors ecs.Query[struct{ *ComponentInspectorComponent }]
	SetViewers ecs.Query[struct{ *ComponentSetViewerComponent }]
	Perf       ecs.Query[struct{ *PerformanceStatsComponent }]
	Queries    ecs.Query[struct{ *QueryDebuggerComponent }]
}

func (d *DebugUISystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	dt := float32(frame.DeltaTime)

	// Window state lives in component storage, which the flush may reshape,
	// so the deferred closures re-resolve by id.
	browsers := append([]ecs.EntityId(nil), d.Browsers.Ids()...)
	inspectors := append([]ecs.EntityId(nil), d.Inspectors.Ids()...)
	viewers := append([]ecs.EntityId(nil), d.SetViewers.Ids()...)
	perf := append([]ecs.EntityId(nil), d.Perf.Ids()...)
	queries := append([]ecs.EntityId(nil), d.Queries.Ids()...)

	frame.Commands.Defer(func() {
		var clicked *ecs.TypeIndex
		for _, id := range viewers {
			if viewer := ecs.ReadComponent[ComponentSetViewerComponent](w, id); viewer != nil {
				if t, ok := viewer.Render(w); ok {
					clicked = &t
				}
			}
		}

		selected := ecs.InvalidEntityId
		for _, id := range browsers {
			browser := ecs.ReadComponent[EntityBrowserComponent](w, id)
			if browser == nil {
				continue
			}
			if clicked != nil {
				browser.SetTypeFilter(*clicked)
			}
			browser.Render(w)
			selected = browser.GetSelectedEntity()
		}
		for _, id := range inspectors {
			if inspector := ecs.ReadComponent[ComponentInspectorComponent](w, id); inspector != nil {
				inspector.Render(w, selected)
			}
		}
		for _, id := range perf {
			if ps := ecs.ReadComponent[PerformanceStatsComponent](w, id); ps != nil {
				ps.Render(w, dt)
			}
		}
		for _, id := range queries {
			if qd := ecs.ReadComponent[QueryDebuggerComponent](w, id); qd != nil {
				qd.Render(w)
			}
		}
	})
}
