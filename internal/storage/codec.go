package storage

import (
	"encoding"
	"fmt"

	"github.com/goccy/go-json"
)

// Codec converts between values and stored bytes.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, dst any) error
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Decode(data []byte, dst any) error { return json.Unmarshal(data, dst) }

type textCodec struct{}

func (textCodec) Encode(v any) ([]byte, error) {
	switch x := v.(type) {
	case encoding.TextMarshaler:
		return x.MarshalText()
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	}
	return nil, fmt.Errorf("text codec cannot encode %T", v)
}

func (textCodec) Decode(data []byte, dst any) error {
	switch x := dst.(type) {
	case encoding.TextUnmarshaler:
		return x.UnmarshalText(data)
	case *string:
		*x = string(data)
		return nil
	}
	return fmt.Errorf("text codec cannot decode into %T", dst)
}

var (
	// JSON stores values as JSON documents.
	JSON Codec = jsonCodec{}
	// Text stores a single raw string, e.g. "dark" rather than "\"dark\"".
	Text Codec = textCodec{}
)
