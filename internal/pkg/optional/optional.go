// Package optional provides a field type that remembers whether it was
// supplied, so partial updates can tell "absent" apart from "zero".
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a T together with its presence flag. The zero Value is absent.
type Value[T any] struct {
	value T
	set   bool
	null  bool
}

func Of[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

func (v Value[T]) Get() (T, bool) {
	return v.value, v.set
}

func (v Value[T]) IsSet() bool {
	return v.set
}

// IsNull reports whether the value was supplied as an explicit JSON null.
func (v Value[T]) IsNull() bool {
	return v.set && v.null
}

// IsZero lets encoding/json drop absent values under the omitzero option.
func (v Value[T]) IsZero() bool {
	return !v.set
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what marks the value as set.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	v.value = decoded
	v.set = true
	v.null = bytes.Equal(bytes.TrimSpace(data), []byte("null"))
	return nil
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
