// Package usage records which fields, arguments and input fields of a schema are
// referenced by a set of queries
package usage

// usage.go implements the usage map shared by the query analyzer (writer) and the pruner (reader)

import (
	"sort"

	"github.com/dolmen-go/jsonmap"
	"github.com/samber/lo"
)

type (
	// Key identifies a usage set. With Field empty it holds the field (or input field) names used on
	// the type. With Field set it holds the argument names used on that field of the type.
	Key struct {
		Type  string
		Field string
	}

	// Set is a set of names
	Set map[string]struct{}

	// Map only grows: names are added but never removed.
	// It is not safe for concurrent use, use one Map per goroutine and Merge the results.
	Map struct {
		sets map[Key]Set
	}
)

// TypeKey is the key for field usage on a type
func TypeKey(typeName string) Key {
	return Key{Type: typeName}
}

// ArgKey is the key for argument usage on a field
func ArgKey(typeName, fieldName string) Key {
	return Key{Type: typeName, Field: fieldName}
}

// String renders the key as "Type" or "Type.field"
func (k Key) String() string {
	if k.Field == "" {
		return k.Type
	}
	return k.Type + "." + k.Field
}

// Has returns true if the name is in the set (a nil set is empty)
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in alphabetical order
func (s Set) Sorted() []string {
	r := lo.Keys(s)
	sort.Strings(r)
	return r
}

func NewMap() *Map {
	return &Map{sets: make(map[Key]Set)}
}

// Touch makes sure there is a (possibly empty) set for the key
func (m *Map) Touch(key Key) Set {
	s, ok := m.sets[key]
	if !ok {
		s = make(Set)
		m.sets[key] = s
	}
	return s
}

// Add records a name under the key
func (m *Map) Add(key Key, name string) {
	m.Touch(key)[name] = struct{}{}
}

// AddField records that field is used on typeName
func (m *Map) AddField(typeName, field string) {
	m.Add(TypeKey(typeName), field)
}

// AddArg records that argument arg is used on typeName.field
func (m *Map) AddArg(typeName, field, arg string) {
	m.Add(ArgKey(typeName, field), arg)
}

// Has returns true if anything (even an empty set) was recorded for the key
func (m *Map) Has(key Key) bool {
	_, ok := m.sets[key]
	return ok
}

// HasType returns true if the type was reached by any query
func (m *Map) HasType(typeName string) bool {
	return m.Has(TypeKey(typeName))
}

// Get returns the set for the key or nil
func (m *Map) Get(key Key) Set {
	return m.sets[key]
}

// Contains returns true if name was recorded under the key
func (m *Map) Contains(key Key, name string) bool {
	return m.sets[key].Has(name)
}

// Len is the number of keys
func (m *Map) Len() int {
	return len(m.sets)
}

// Keys returns all keys, types before their fields, in alphabetical order
func (m *Map) Keys() []Key {
	keys := lo.Keys(m.sets)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Field < keys[j].Field
	})
	return keys
}

// Merge adds everything recorded in other (set union)
func (m *Map) Merge(other *Map) {
	if other == nil {
		return
	}
	for key, set := range other.sets {
		dest := m.Touch(key)
		for name := range set {
			dest[name] = struct{}{}
		}
	}
}

// Clone returns an independent copy
func (m *Map) Clone() *Map {
	r := NewMap()
	r.Merge(m)
	return r
}

// Report returns the usage as an ordered JSON object such as
// {"Product": ["name","sku"], "Query": ["product"], "Query.product": ["sku"]}
func (m *Map) Report() jsonmap.Ordered {
	keys := m.Keys()
	r := jsonmap.Ordered{
		Data:  make(map[string]interface{}, len(keys)),
		Order: make([]string, 0, len(keys)),
	}
	for _, key := range keys {
		name := key.String()
		r.Order = append(r.Order, name)
		r.Data[name] = m.sets[key].Sorted()
	}
	return r
}
