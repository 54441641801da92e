package state

import "reflect"

// mergeStruct returns upd layered on top of old: every set (non-zero) field
// of upd replaces the old field, zero fields keep the old value. Gateway
// events routinely carry partial objects, and an absent field decodes to its
// zero value, so this is what lets a "channel name changed" update not
// clobber the stored topic.
func mergeStruct[T any](old, upd T) T {
	ov := reflect.ValueOf(&old).Elem()
	uv := reflect.ValueOf(upd)

	if ov.Kind() != reflect.Struct {
		return upd
	}

	t := uv.Type()
	for i := 0; i < uv.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue // unexported
		}
		if f := uv.Field(i); !f.IsZero() {
			ov.Field(i).Set(f)
		}
	}
	return old
}

// mergeByID merges upd into the element of list with the same ID, or
// appends it. The list is copied before modification, so slices previously
// handed to readers stay valid.
func mergeByID[T any, K comparable](list []T, upd T, id func(T) K) []T {
	out := make([]T, len(list))
	copy(out, list)

	k := id(upd)
	for i := range out {
		if id(out[i]) == k {
			out[i] = mergeStruct(out[i], upd)
			return out
		}
	}
	return append(out, upd)
}

// deleteByID returns list without the element keyed k, again as a copy.
func deleteByID[T any, K comparable](list []T, k K, id func(T) K) []T {
	out := make([]T, 0, len(list))
	for i := range list {
		if id(list[i]) != k {
			out = append(out, list[i])
		}
	}
	return out
}
