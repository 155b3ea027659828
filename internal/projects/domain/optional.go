package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field that remembers whether its key was present.
// A present JSON null leaves Set true and Value nil.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Null reports an explicit JSON null.
func (o Optional[T]) Null() bool {
	return o.Set && o.Value == nil
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// assign overwrites *dst when the key was present, clearing it on null.
func (o Optional[T]) assign(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}
