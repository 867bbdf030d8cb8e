package schemapruner

// types.go exposes the introspection types so that callers don't need the internal packages

import (
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/pruner"
)

type (
	// Schema is the __schema object of an introspection result
	Schema = introspect.Schema

	// Type is one entry of the __schema.types list
	Type = introspect.Type

	Field      = introspect.Field
	InputValue = introspect.InputValue
	TypeRef    = introspect.TypeRef
	Kind       = introspect.Kind

	// Reference is a place in a schema that names a type the schema does not contain
	Reference = pruner.Reference
)

// DecodeSchema parses an introspection result, with or without the {"data": ...} envelope
func DecodeSchema(data []byte) (*Schema, error) {
	return introspect.Decode(data)
}

// EncodeSchema produces an introspection result ({"data":{"__schema":...}}) for a schema
func EncodeSchema(s *Schema) ([]byte, error) {
	return introspect.Encode(s)
}

// SchemaToSDL renders a schema in the GraphQL schema definition language
func SchemaToSDL(s *Schema) string {
	return introspect.ToSDL(s)
}

// Dangling lists the references in s to types that s does not contain
func Dangling(s *Schema) []Reference {
	return pruner.Dangling(s)
}
