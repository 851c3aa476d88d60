package debugui

import (
	"reflect"
	"sync"
)

// inspectableField is an exported struct field the component inspector can draw.
type inspectableField struct {
	Name  string
	Index int
	// Deref is set for pointer fields; the inspector draws the pointee.
	Deref bool
	Type  reflect.Type
}

// resolve returns the drawable value of f inside the struct value parent. ok is false for nil pointers.
func (f inspectableField) resolve(parent reflect.Value) (reflect.Value, bool) {
	v := parent.Field(f.Index)
	if !f.Deref {
		return v, true
	}
	if v.IsNil() {
		return reflect.Value{}, false
	}
	return v.Elem(), true
}

// fieldLayouts caches the inspectable fields of each struct type seen by the inspector.
type fieldLayouts struct {
	layouts sync.Map // reflect.Type -> []inspectableField
}

func (l *fieldLayouts) of(t reflect.Type) []inspectableField {
	if cached, ok := l.layouts.Load(t); ok {
		return cached.([]inspectableField)
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]inspectableField, 0, t.NumField())
	for _, sf := range reflect.VisibleFields(t) {
		// promoted fields are reached through their embedding struct
		if len(sf.Index) != 1 || !sf.IsExported() {
			continue
		}
		field := inspectableField{Name: sf.Name, Index: sf.Index[0], Type: sf.Type}
		if sf.Type.Kind() == reflect.Pointer {
			field.Deref = true
			field.Type = sf.Type.Elem()
		}
		fields = append(fields, field)
	}

	actual, _ := l.layouts.LoadOrStore(t, fields)
	return actual.([]inspectableField)
}

var inspectorLayouts fieldLayouts
