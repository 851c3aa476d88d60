package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sparsecs/ecs"
)

type ComponentSetInfo struct {
	Index           ecs.TypeIndex
	TypeName        string
	Count           int
	RecentlyAdded   int
	RecentlyMutated int
	ApproxBytes     uintptr
}

type ComponentSetViewerCache struct {
	sets          []ComponentSetInfo
	sortColumn    int
	sortAscending bool
}

func NewComponentSetViewerComponent() ComponentSetViewerComponent {
	return ComponentSetViewerComponent{
		cache: &ComponentSetViewerCache{
			sortColumn:    2,
			sortAscending: false,
		},
	}
}

// Render lists every component set with its size and change window.
// It returns the type of a row clicked this frame, if any.
func (cv *ComponentSetViewerComponent) Render(w *ecs.World) (ecs.TypeIndex, bool) {
	if !imgui.BeginV("Component Sets", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ecs.InvalidTypeIndex, false
	}

	cv.cache.sets = collectSetInfos(w)
	sortSetInfos(cv.cache.sets, cv.cache.sortColumn, cv.cache.sortAscending)

	maxCount := 0
	for _, set := range cv.cache.sets {
		maxCount = max(maxCount, set.Count)
	}

	clicked := ecs.InvalidTypeIndex
	wasClicked := false

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ComponentSetTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Index")
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Count")
		imgui.TableSetupColumn("Added")
		imgui.TableSetupColumn("Mutated")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			cv.cache.sortColumn = int(spec.ColumnIndex())
			cv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSetInfos(cv.cache.sets, cv.cache.sortColumn, cv.cache.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, set := range cv.cache.sets {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := cv.selectedType != nil && *cv.selectedType == set.Index
			if imgui.SelectableBoolV(fmt.Sprintf("%d", set.Index), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				index := set.Index
				cv.selectedType = &index
				clicked, wasClicked = index, true
			}

			imgui.TableNextColumn()
			imgui.Text(shortTypeName(set.TypeName))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", set.Count))
			if maxCount > 0 {
				barWidth := float32(set.Count) / float32(maxCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", set.RecentlyAdded))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", set.RecentlyMutated))
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked, wasClicked
}

func collectSetInfos(w *ecs.World) []ComponentSetInfo {
	stats := w.CollectStats()
	sets := make([]ComponentSetInfo, 0, len(stats.ComponentBreakdown))
	for _, cs := range stats.ComponentBreakdown {
		sets = append(sets, ComponentSetInfo{
			Index:           cs.TypeIndex,
			TypeName:        cs.TypeName,
			Count:           cs.Count,
			RecentlyAdded:   cs.RecentlyAdded,
			RecentlyMutated: cs.RecentlyMutated,
			ApproxBytes:     cs.ApproxBytes,
		})
	}
	return sets
}

func sortSetInfos(sets []ComponentSetInfo, column int, ascending bool) {
	sort.SliceStable(sets, func(i, j int) bool {
		a, b := sets[i], sets[j]
		var less bool

		switch column {
		case 0:
			less = a.Index < b.Index
		case 1:
			less = a.TypeName < b.TypeName
		case 3:
			less = a.RecentlyAdded < b.RecentlyAdded
		case 4:
			less = a.RecentlyMutated < b.RecentlyMutated
		default:
			less = a.Count < b.Count
		}

		if !ascending {
			return !less
		}
		return less
	})
}
