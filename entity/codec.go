package entity

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// The codec must be deterministic: struct fields marshal in declaration
// order, and nested collections are ordered slices.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode serializes an entity to its stored byte representation.
func Encode(v any) ([]byte, error) {
	b, err := codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("entity: encode %T: %w", v, err)
	}
	return b, nil
}

// Decode deserializes stored bytes into an entity of type T.
//
// Empty input yields the zero value of T: absence of a record is represented
// by an empty value at its address, and handlers test existence by comparing
// decoded fields against the zero value.
func Decode[T any](b []byte) (T, error) {
	var v T
	if len(b) == 0 {
		return v, nil
	}
	if err := codec.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("entity: decode %T: %w", v, err)
	}
	return v, nil
}

// MustEncode is Encode for values known to be serializable, such as the
// package's own entity structs. It panics on error.
func MustEncode(v any) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}
