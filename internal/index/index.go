// Package index provides name based lookup over an introspection schema
package index

// index.go builds lookup tables for quick access to types and fields by name

import (
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/huandu/go-clone"
)

// Index owns a private working copy of a schema. The schema passed to New is never
// modified, since callers may cache and reuse an introspection result across sessions.
type Index struct {
	schema *introspect.Schema
	types  map[string]*introspect.Type
}

// New deep copies the schema and indexes its types by name
func New(s *introspect.Schema) *Index {
	working := clone.Clone(s).(*introspect.Schema)
	i := &Index{
		schema: working,
		types:  make(map[string]*introspect.Type, len(working.Types)),
	}
	for _, t := range working.Types {
		if t == nil {
			continue
		}
		i.types[t.Name] = t
	}
	return i
}

// Schema returns the working copy. Callers that change it must clone it first.
func (i *Index) Schema() *introspect.Schema {
	return i.schema
}

// Lookup returns the named type or nil if the schema does not have it
func (i *Index) Lookup(name string) *introspect.Type {
	return i.types[name]
}

// Unwrap strips the LIST and NON_NULL layers of a reference and returns the named type
// it refers to, or nil if the reference is malformed or the type is missing.
func (i *Index) Unwrap(ref *introspect.TypeRef) *introspect.Type {
	if ref == nil {
		return nil
	}
	name := ref.Named()
	if name == "" {
		return nil
	}
	return i.Lookup(name)
}

// Field finds a field of an OBJECT or INTERFACE type
func (i *Index) Field(typeName, fieldName string) *introspect.Field {
	t := i.Lookup(typeName)
	if t == nil {
		return nil
	}
	return t.FieldByName(fieldName)
}

// InputField finds a field of an INPUT_OBJECT type
func (i *Index) InputField(typeName, fieldName string) *introspect.InputValue {
	t := i.Lookup(typeName)
	if t == nil {
		return nil
	}
	return t.InputFieldByName(fieldName)
}

// RootType returns the name of the root type of an operation ("query", "mutation" or
// "subscription"). The names declared in __schema are used if present, otherwise the
// conventional Query/Mutation/Subscription names.
func (i *Index) RootType(operation string) string {
	var ref *introspect.TypeName
	def := ""
	switch operation {
	case "query", "":
		ref, def = i.schema.QueryType, "Query"
	case "mutation":
		ref, def = i.schema.MutationType, "Mutation"
	case "subscription":
		ref, def = i.schema.SubscriptionType, "Subscription"
	default:
		return ""
	}
	if ref != nil && ref.Name != "" {
		return ref.Name
	}
	return def
}
