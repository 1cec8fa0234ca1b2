package message

import (
	"reflect"
	"sync"
	"unsafe"
)

type payloadClass uint8

const (
	// classValue payloads are copied byte by byte into the buffer.
	classValue payloadClass = iota
	// classRef payloads are single pointer words (pointers, maps, channels, functions)
	// kept in a slot the garbage collector can see.
	classRef
	// classTooLarge payloads do not fit into the buffer.
	classTooLarge
	// classUnsupported payloads carry pointers inside a larger value.
	classUnsupported
)

var classCache sync.Map

// classOf returns the payload class of T.
func classOf[T any]() payloadClass {
	typ := reflect.TypeFor[T]()

	if class, ok := classCache.Load(typ); ok {
		return class.(payloadClass)
	}

	class := classify(typ)
	classCache.Store(typ, class)

	return class
}

func classify(typ reflect.Type) payloadClass {
	if isRefKind(typ.Kind()) {
		return classRef
	}

	if typ.Size() > MaxMessageSize {
		return classTooLarge
	}

	if hasPointers(typ) {
		return classUnsupported
	}

	return classValue
}

func isRefKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.Slice, reflect.String:
		return true

	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())

	case reflect.Struct:
		for idx := range typ.NumField() {
			if hasPointers(typ.Field(idx).Type) {
				return true
			}
		}
	}

	return false
}

// asBytes returns the memory of v as a byte slice.
func asBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}
