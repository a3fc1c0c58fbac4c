// Package optional provides a tri-state string for partial updates where
// "field absent", "field explicitly null" and "field set" mean different
// things.
package optional

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	omitted state = iota
	null
	present
)

// String is an omitted, null or set string. The zero value is omitted.
//
// Struct fields of this type should carry the `omitzero` JSON option so an
// omitted value stays absent on the wire.
type String struct {
	state state
	value string
}

// Omit returns an omitted value.
func Omit() String { return String{} }

// Null returns an explicit null.
func Null() String { return String{state: null} }

// Of returns a set value.
func Of(s string) String { return String{state: present, value: s} }

// FromPtr maps nil to null and a pointer to a set value.
func FromPtr(s *string) String {
	if s == nil {
		return Null()
	}
	return Of(*s)
}

func (s String) IsOmitted() bool { return s.state == omitted }
func (s String) IsNull() bool    { return s.state == null }
func (s String) IsSet() bool     { return s.state == present }

// Get returns the value and whether one is set.
func (s String) Get() (string, bool) {
	return s.value, s.state == present
}

// Or returns the set value, or fallback when omitted or null.
func (s String) Or(fallback string) string {
	if s.state == present {
		return s.value
	}
	return fallback
}

// IsZero reports omission; encoding/json uses it for `omitzero`.
func (s String) IsZero() bool { return s.state == omitted }

func (s String) String() string {
	switch s.state {
	case null:
		return "null"
	case present:
		return s.value
	default:
		return "<omitted>"
	}
}

func (s String) MarshalJSON() ([]byte, error) {
	if s.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON is only called when the key is present, so the result is
// either null or set.
func (s *String) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Null()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Of(v)
	return nil
}
