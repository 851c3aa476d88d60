package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sparsecs/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{selectedEntityId: ecs.InvalidEntityId}
}

// Render shows and edits every component of the selected entity. Edits write
// straight into component storage and are recorded as mutations of that type.
func (ci *ComponentInspectorComponent) Render(w *ecs.World, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if !ci.selectedEntityId.IsValid() {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}
	if !w.IsAlive(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %s no longer exists", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntityId))
	for _, tag := range w.Tags() {
		if w.HasTag(ci.selectedEntityId, tag) {
			imgui.SameLine()
			imgui.Text("#" + tag)
		}
	}
	imgui.Separator()

	for _, index := range w.ComponentTypes(ci.selectedEntityId) {
		component := w.ComponentAny(ci.selectedEntityId, index)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(shortTypeName(w.TypeName(index))) {
			if ci.renderComponent(component) {
				w.MakeMutatedByType(index, ci.selectedEntityId)
			}
			imgui.TreePop()
		}
	}

	imgui.End()
}

// renderComponent draws the fields of component (a pointer into storage) and reports whether any was edited.
func (ci *ComponentInspectorComponent) renderComponent(component any) bool {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return ci.renderField("value", val)
	}

	return ci.renderFields(val)
}

func (ci *ComponentInspectorComponent) renderFields(val reflect.Value) bool {
	edited := false
	for _, field := range inspectorLayouts.of(val.Type()) {
		fieldVal, ok := field.resolve(val)
		if !ok {
			imgui.Text(fmt.Sprintf("%s: nil", field.Name))
			continue
		}
		if ci.renderField(field.Name, fieldVal) {
			edited = true
		}
	}
	return edited
}

func (ci *ComponentInspectorComponent) renderField(name string, val reflect.Value) bool {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return false
	}

	label := fmt.Sprintf("##%s", name)

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) {
			return setFieldValue(val, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) && v >= 0 {
			return setFieldValue(val, uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(label, &v) {
			return setFieldValue(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			return setFieldValue(val, v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil) {
			return setFieldValue(val, v)
		}

	case reflect.Struct:
		edited := false
		if imgui.TreeNodeStr(name) {
			edited = ci.renderFields(val)
			imgui.TreePop()
		}
		return edited

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
	return false
}

// setFieldValue writes value into a settable field of a compatible kind and reports whether it changed anything.
func setFieldValue(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}
	switch v := value.(type) {
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.OverflowInt(v) {
				return false
			}
			field.SetInt(v)
			return true
		}
	case uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if field.OverflowUint(v) {
				return false
			}
			field.SetUint(v)
			return true
		}
	case float64:
		switch field.Kind() {
		case reflect.Float32, reflect.Float64:
			field.SetFloat(v)
			return true
		}
	case bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(v)
			return true
		}
	case string:
		if field.Kind() == reflect.String {
			field.SetString(v)
			return true
		}
	}
	return false
}
