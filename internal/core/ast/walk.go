package ast

import "reflect"

// AssignNodeIDs walks schema and assigns a fresh, stable NodeID to every
// embedded Node it finds, in a deterministic pre-order. Participle never
// touches unexported state while parsing, so identity is assigned in this
// separate pass immediately after a file is parsed.
func AssignNodeIDs(schema *Schema, alloc *idAllocator) {
	walkAssign(reflect.ValueOf(schema), alloc)
}

// IDAllocator hands out stable NodeIDs across every file parsed within one
// analysis run, so identity survives include expansion.
type IDAllocator = idAllocator

// NewIDAllocator exposes idAllocator construction outside this package;
// analysis.New creates one allocator per analysis run so NodeIDs stay
// unique across every file pulled in through includes.
func NewIDAllocator() *IDAllocator {
	return newIDAllocator()
}

var nodeType = reflect.TypeOf(Node{})

func walkAssign(v reflect.Value, alloc *idAllocator) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		walkAssign(v.Elem(), alloc)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkAssign(v.Index(i), alloc)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if v.Type().Field(i).Type == nodeType && f.CanSet() {
				f.Set(reflect.ValueOf(Node{ID: alloc.alloc()}))
				continue
			}
			if f.CanInterface() {
				walkAssign(f, alloc)
			}
		}
	}
}
