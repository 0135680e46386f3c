package ql

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quill-lang/quill/object"
)

// ToObject lifts an ordinary Go value into the engine's value world, so a
// host can seed a scope or return results from a native function without
// touching the object package. A Go value with no Quill equivalent comes
// through as an opaque handle: scripts can store and pass it, and native
// functions can unwrap it.
func ToObject(v any) object.Object {
	switch v := v.(type) {
	case nil:
		return object.UNIT
	case object.Object:
		return v
	case bool:
		return object.MakeBool(v)
	case int:
		return &object.Integer{Value: int64(v)}
	case int64:
		return &object.Integer{Value: v}
	case float64:
		return &object.Float{Value: v}
	case string:
		return &object.String{Value: v}
	case rune:
		return &object.Char{Value: v}
	case decimal.Decimal:
		return &object.Decimal{Value: v}
	case []any:
		elements := make([]object.Object, 0, len(v))
		for _, el := range v {
			elements = append(elements, ToObject(el))
		}
		return object.ListFromSlice(elements)
	case map[string]any:
		m := object.NewMap()
		for key, value := range v {
			m.Pairs[key] = ToObject(value)
		}
		return m
	}
	return &object.Opaque{Name: fmt.Sprintf("%T", v), Value: v}
}

// FromObject is the way back down: engine values become the obvious Go
// values, opaque handles give back what ToObject was given, and functions,
// which have no Go equivalent, come through as themselves.
func FromObject(o object.Object) any {
	switch o := o.(type) {
	case *object.Unit:
		return nil
	case *object.Boolean:
		return o.Value
	case *object.Integer:
		return o.Value
	case *object.Float:
		return o.Value
	case *object.Decimal:
		return o.Value
	case *object.String:
		return o.Value
	case *object.Char:
		return o.Value
	case *object.Range:
		// A descending range is a valid, empty range.
		size := o.End - o.Start
		if size < 0 {
			size = 0
		}
		values := make([]any, 0, size)
		for i := o.Start; i < o.End; i++ {
			values = append(values, i)
		}
		return values
	case *object.List:
		values := make([]any, 0, o.Len())
		for i := 0; i < o.Len(); i++ {
			el, _ := o.Elements.Index(i)
			values = append(values, FromObject(el.(object.Object)))
		}
		return values
	case *object.Map:
		values := make(map[string]any, len(o.Pairs))
		for key, value := range o.Pairs {
			values[key] = FromObject(value)
		}
		return values
	case *object.Opaque:
		return o.Value
	}
	return o
}
