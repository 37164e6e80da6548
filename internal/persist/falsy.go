package persist

import (
	"math"
	"reflect"
)

// isFalsy reports whether v counts as "no value" under the falsy-fallback
// policy: false, zero or NaN numbers, the empty string, and nil pointers,
// interfaces, maps, slices, funcs and channels. Structs and arrays never
// count, nor do empty but non-nil maps and slices.
func isFalsy(v any) bool {
	return falsyValue(reflect.ValueOf(v))
}

func falsyValue(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() == 0
	case reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return falsyValue(rv.Elem())
	default:
		return false
	}
}
