// Package sanitize normalizes arbitrary nested request data into JSON-safe
// form and redacts values under sensitive keys. It is the only part of the
// notifier that touches caller-supplied structures, which may be cyclic,
// heterogeneous, and arbitrarily deep; it must never panic or hang on them.
package sanitize

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/redleaf-labs/hopper/internal/model"
)

// Clean returns a JSON-safe copy of v: mappings become map[string]any,
// sequences become []any, and every other value is coerced to a string
// (shallowly, for structs; see opaqueString). String coercion is
// deliberate — the collector wire format carries all leaves as strings,
// so numeric and boolean fidelity is traded for compatibility.
//
// A branch whose container identity is already being visited higher up the
// same traversal is cut off with the model.RecursionHalted sentinel, so
// cyclic input terminates with finite output. Sharing without cycling (the
// same map reachable twice as siblings) is cleaned normally each time.
//
// Clean(nil) is nil, preserving the distinction between an absent data
// region and an empty one.
func Clean(v any) any {
	if v == nil {
		return nil
	}
	t := traversal{ancestry: make(map[uintptr]struct{})}
	return t.clean(v)
}

// CleanMap is Clean for a top-level mapping, keeping the map[string]any
// shape the assembler stores on the Notice. A nil map stays nil.
func CleanMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	t := traversal{ancestry: make(map[uintptr]struct{})}
	cleaned, ok := t.clean(m).(map[string]any)
	if !ok {
		// clean of a non-nil map only returns a non-map when the map is
		// its own ancestor, which cannot happen at the top of a traversal.
		return map[string]any{}
	}
	return cleaned
}

// traversal carries the ancestry set for one top-level Clean call. It is
// exclusively owned by that call and never shared across goroutines.
type traversal struct {
	ancestry map[uintptr]struct{}
}

func (t *traversal) clean(v any) any {
	switch vv := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t.cleanStringMap(vv)
	case []any:
		return t.cleanSlice(vv)
	}

	// Slow path: other map kinds, other slice/array element types, and
	// pointers to containers all still count as mappings or sequences.
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return t.cleanReflectMap(rv)
	case reflect.Slice:
		// Byte slices read better as scalar text than as digit sequences.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		return t.cleanReflectSeq(rv)
	case reflect.Array:
		return t.cleanReflectSeq(rv)
	default:
		return opaqueString(rv)
	}
}

// opaqueString renders a leaf that is neither a mapping nor a sequence.
// Every non-struct kind goes straight to fmt. Structs must not: fmt
// formats nested fields recursively and has no cycle detection, so a
// cyclic map buried in a struct field would overflow the stack. Struct
// leaves are rendered one field level deep instead, with container-ish
// fields shown as their type.
func opaqueString(rv reflect.Value) string {
	if rv.Kind() != reflect.Struct {
		return fmt.Sprint(rv.Interface())
	}
	switch v := rv.Interface().(type) {
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}

	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < rv.NumField(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct,
			reflect.Pointer, reflect.Interface:
			b.WriteString(f.Type().String())
		default:
			fmt.Fprintf(&b, "%v", f)
		}
	}
	b.WriteByte('}')
	return b.String()
}

func (t *traversal) cleanStringMap(m map[string]any) any {
	id := reflect.ValueOf(m).Pointer()
	if t.entered(id) {
		return model.RecursionHalted
	}
	defer t.leave(id)

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = t.clean(v)
	}
	return out
}

func (t *traversal) cleanSlice(s []any) any {
	id := identityOfSlice(reflect.ValueOf(s))
	if t.entered(id) {
		return model.RecursionHalted
	}
	defer t.leave(id)

	out := make([]any, len(s))
	for i, v := range s {
		out[i] = t.clean(v)
	}
	return out
}

func (t *traversal) cleanReflectMap(rv reflect.Value) any {
	id := rv.Pointer()
	if t.entered(id) {
		return model.RecursionHalted
	}
	defer t.leave(id)

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = t.clean(iter.Value().Interface())
	}
	return out
}

func (t *traversal) cleanReflectSeq(rv reflect.Value) any {
	id := identityOfSlice(rv)
	if t.entered(id) {
		return model.RecursionHalted
	}
	defer t.leave(id)

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = t.clean(rv.Index(i).Interface())
	}
	return out
}

// entered records id as an ancestor of the branch about to be visited and
// reports whether it already was one. The zero id marks values with no
// stable identity (arrays, nil slices); those cannot form cycles and are
// never tracked.
func (t *traversal) entered(id uintptr) bool {
	if id == 0 {
		return false
	}
	if _, ok := t.ancestry[id]; ok {
		return true
	}
	t.ancestry[id] = struct{}{}
	return false
}

func (t *traversal) leave(id uintptr) {
	if id != 0 {
		delete(t.ancestry, id)
	}
}

// identityOfSlice returns a stable identity for a slice's backing storage.
// Arrays are values without one; they cannot participate in cycles.
func identityOfSlice(rv reflect.Value) uintptr {
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return 0
	}
	return rv.Pointer()
}
