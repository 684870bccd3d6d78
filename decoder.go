package penlive

import (
	"encoding/json"
)

// Decoder turns the body of one text frame into a payload. It must return a new value on
// every call so a payload is always a full replacement of the previous one.
type Decoder[T any] interface {
	Decode(data []byte) (*T, error)
}

// JSONDecoder decodes each frame as a JSON document into a fresh T.
type JSONDecoder[T any] struct{}

func NewJSONDecoder[T any]() *JSONDecoder[T] {
	return &JSONDecoder[T]{}
}

func (d *JSONDecoder[T]) Decode(data []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecoderFunc adapts a plain function to a Decoder.
type DecoderFunc[T any] func(data []byte) (*T, error)

func (f DecoderFunc[T]) Decode(data []byte) (*T, error) {
	return f(data)
}
