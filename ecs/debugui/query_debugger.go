package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sparsecs/ecs"
)

type QueryDebuggerCache struct {
	componentTypes []string
	byName         map[string]ecs.TypeIndex
	lastTypeCount  int
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedComponentTypes: make(map[string]bool),
		cache: &QueryDebuggerCache{
			lastTypeCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(w)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, compType := range qd.cache.componentTypes {
		selected := qd.selectedComponentTypes[compType]
		if imgui.Checkbox(shortTypeName(compType), &selected) {
			if selected {
				qd.selectedComponentTypes[compType] = true
			} else {
				delete(qd.selectedComponentTypes, compType)
			}
		}
	}

	imgui.Separator()

	selectedTypes := make([]ecs.TypeIndex, 0, len(qd.selectedComponentTypes))
	for name := range qd.selectedComponentTypes {
		if index, ok := qd.cache.byName[name]; ok {
			selectedTypes = append(selectedTypes, index)
		}
	}

	if len(selectedTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	driver, matches := matchingEntities(w, selectedTypes)
	imgui.Text(fmt.Sprintf("Driving set: %s (%d ids probed)", shortTypeName(w.TypeName(driver)), probeCount(w, driver)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Matches") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
		if imgui.BeginTableV("QueryMatchTable", 2, tableFlags, imgui.NewVec2(0, 200), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("All Components")
			imgui.TableHeadersRow()

			for i, id := range matches {
				if i >= 500 {
					break
				}
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(id.String())

				imgui.TableSetColumnIndex(1)
				types := w.ComponentTypes(id)
				names := make([]string, len(types))
				for j, t := range types {
					names[j] = shortTypeName(w.TypeName(t))
				}
				imgui.Text(fmt.Sprintf("%v", names))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(w *ecs.World) {
	typeCount := 0
	for range w.ComponentSets() {
		typeCount++
	}
	if qd.cache.lastTypeCount == typeCount && qd.cache.componentTypes != nil {
		return
	}
	qd.cache.lastTypeCount = typeCount

	qd.cache.byName = make(map[string]ecs.TypeIndex, typeCount)
	qd.cache.componentTypes = make([]string, 0, typeCount)
	for index := range w.ComponentSets() {
		name := w.TypeName(index)
		qd.cache.byName[name] = index
		qd.cache.componentTypes = append(qd.cache.componentTypes, name)
	}
	sort.Strings(qd.cache.componentTypes)
}

// matchingEntities intersects the given component sets the way a query does: it
// walks the smallest set and probes the others. It returns the driving type and the matches.
func matchingEntities(w *ecs.World, types []ecs.TypeIndex) (ecs.TypeIndex, []ecs.EntityId) {
	sets := make([]ecs.ComponentSet, 0, len(types))
	driver := ecs.InvalidTypeIndex
	var smallest ecs.ComponentSet
	for _, t := range types {
		set := w.ComponentSet(t)
		if set == nil {
			return t, nil
		}
		sets = append(sets, set)
		if smallest == nil || set.Len() < smallest.Len() {
			smallest, driver = set, t
		}
	}
	if smallest == nil {
		return driver, nil
	}

	var matches []ecs.EntityId
	for _, id := range smallest.Ids() {
		ok := true
		for _, set := range sets {
			if !set.Contains(id) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, id)
		}
	}
	return driver, matches
}

func probeCount(w *ecs.World, driver ecs.TypeIndex) int {
	if set := w.ComponentSet(driver); set != nil {
		return set.Len()
	}
	return 0
}
