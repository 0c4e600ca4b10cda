// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

// Package optional provides a tri-state JSON field for PATCH payloads,
// distinguishing an absent key from an explicit null from a value.
package optional

import "encoding/json"

// Field wraps a value with presence information. The zero value is absent.
type Field[T any] struct {
	value   T
	present bool
	null    bool
}

// Present builds a field carrying value.
func Present[T any](value T) Field[T] {
	return Field[T]{value: value, present: true}
}

// Null builds a field that was explicitly set to JSON null.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// IsPresent reports whether the key appeared in the payload at all.
func (field Field[T]) IsPresent() bool {
	return field.present
}

// IsNull reports whether the key was explicitly null.
func (field Field[T]) IsNull() bool {
	return field.present && field.null
}

// Value returns the carried value and whether one exists (present, non-null).
func (field Field[T]) Value() (T, bool) {
	if !field.present || field.null {
		var zero T
		return zero, false
	}
	return field.value, true
}

func (field *Field[T]) UnmarshalJSON(data []byte) error {
	field.present = true

	if string(data) == "null" {
		field.null = true
		return nil
	}

	return json.Unmarshal(data, &field.value)
}

func (field Field[T]) MarshalJSON() ([]byte, error) {
	if !field.present || field.null {
		return []byte("null"), nil
	}
	return json.Marshal(field.value)
}
