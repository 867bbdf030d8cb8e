package introspect

// decode.go reads and writes introspection JSON

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNoSchema is returned when the JSON has no __schema object (either at the top level or under "data")
	ErrNoSchema = errors.New("introspection result has no __schema")

	// ErrNoTypes is returned when __schema has no types list
	ErrNoTypes = errors.New("introspection result has no __schema.types")
)

// Decode parses an introspection result. Both the full response envelope
// {"data":{"__schema":...}} and the bare {"__schema":...} form are accepted.
func Decode(data []byte) (*Schema, error) {
	var raw struct {
		Data *struct {
			Schema *jsoniter.RawMessage `json:"__schema"`
		} `json:"data"`
		Schema *jsoniter.RawMessage `json:"__schema"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w decoding introspection JSON", err)
	}

	var schemaJSON *jsoniter.RawMessage
	switch {
	case raw.Data != nil && raw.Data.Schema != nil:
		schemaJSON = raw.Data.Schema
	case raw.Schema != nil:
		schemaJSON = raw.Schema
	}
	if schemaJSON == nil || bytes.Equal(bytes.TrimSpace(*schemaJSON), []byte("null")) {
		return nil, ErrNoSchema
	}

	s := &Schema{}
	if err := json.Unmarshal(*schemaJSON, s); err != nil {
		return nil, fmt.Errorf("%w decoding __schema", err)
	}
	if s.Types == nil {
		return nil, ErrNoTypes
	}
	return s, nil
}

// Encode writes the schema in the full response envelope
func Encode(s *Schema) ([]byte, error) {
	doc := Document{}
	doc.Data.Schema = s
	return json.Marshal(&doc)
}

// EncodeIndent is like Encode but the output is indented
func EncodeIndent(s *Schema, indent string) ([]byte, error) {
	doc := Document{}
	doc.Data.Schema = s
	return json.MarshalIndent(&doc, "", indent)
}
