package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON field that was omitted from one that was
// sent, including an explicit null. It backs partial-update payloads:
//
//	{}                    -> Set=false
//	{"description": null} -> Set=true, Value=nil
//	{"description": "x"}  -> Set=true, Value=&"x"
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null returns a present Optional carrying an explicit null.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

// IsNull reports whether the field was sent as null.
func (o Optional[T]) IsNull() bool { return o.Set && o.Value == nil }

// UnmarshalJSON is only invoked for keys present in the document, which
// is what marks the field as set.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
