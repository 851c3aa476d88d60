package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sparsecs/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Types          []ecs.TypeIndex
	ComponentTypes []string
	ComponentCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	signature     worldSignature
	sortColumn    int
	sortAscending bool
}

// worldSignature changes whenever entities or components are created or erased.
type worldSignature struct {
	entities   int
	components int
}

func signatureOf(w *ecs.World) worldSignature {
	sig := worldSignature{entities: w.EntityCount()}
	for _, set := range w.ComponentSets() {
		sig.components += set.Len()
	}
	return sig
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
			signature:     worldSignature{entities: -1},
		},
		selectedEntityId:   ecs.InvalidEntityId,
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowserComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(w)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterType = nil
		eb.currentPage = 0
	}
	if eb.filterType != nil {
		imgui.Text("Type filter: " + w.TypeName(*eb.filterType))
	}

	filteredEntities := eb.getFilteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Generation")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntityInfos(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
			filteredEntities = eb.getFilteredEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx, endIdx := pageBounds(len(filteredEntities), eb.currentPage, eb.maxEntitiesPerPage)
		for i := startIdx; i < endIdx; i++ {
			entity := filteredEntities[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID.Index()), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ID.Generation()))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(w *ecs.World) {
	sig := signatureOf(w)
	if eb.cache.entities != nil && eb.cache.signature == sig {
		return
	}
	eb.cache.signature = sig
	eb.cache.entities = collectEntityInfos(w)
	sortEntityInfos(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)

	if !w.IsAlive(eb.selectedEntityId) {
		eb.selectedEntityId = ecs.InvalidEntityId
	}
}

func collectEntityInfos(w *ecs.World) []EntityInfo {
	entities := make([]EntityInfo, 0, w.EntityCount())
	for _, id := range w.Entities() {
		types := w.ComponentTypes(id)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = shortTypeName(w.TypeName(t))
		}
		entities = append(entities, EntityInfo{
			ID:             id,
			Types:          types,
			ComponentTypes: names,
			ComponentCount: len(types),
		})
	}
	return entities
}

func sortEntityInfos(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		var less bool

		switch column {
		case 1:
			less = a.ID.Generation() < b.ID.Generation()
		case 2:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 3:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.ID.Index() < b.ID.Index()
		}

		if !ascending {
			return !less
		}
		return less
	})
}

// filterEntityInfos keeps rows matching the free text (entity index or component
// name, case-insensitive) and, if set, holding a component of filterType.
func filterEntityInfos(entities []EntityInfo, text string, filterType *ecs.TypeIndex) []EntityInfo {
	if text == "" && filterType == nil {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	filterLower := strings.ToLower(text)

	for _, entity := range entities {
		if filterType != nil && !containsType(entity.Types, *filterType) {
			continue
		}

		if text != "" {
			idStr := fmt.Sprintf("%d", entity.ID.Index())
			componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

			if !strings.Contains(idStr, filterLower) && !strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func containsType(types []ecs.TypeIndex, t ecs.TypeIndex) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func pageBounds(total, page, perPage int) (int, int) {
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func (eb *EntityBrowserComponent) getFilteredEntities() []EntityInfo {
	return filterEntityInfos(eb.cache.entities, eb.filterText, eb.filterType)
}

func (eb *EntityBrowserComponent) GetSelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}

// SetTypeFilter restricts the browser to entities holding a component of type t
func (eb *EntityBrowserComponent) SetTypeFilter(t ecs.TypeIndex) {
	eb.filterType = &t
	eb.currentPage = 0
}

// shortTypeName drops the import path from a registered type name
func shortTypeName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
