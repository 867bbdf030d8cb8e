package index_test

import (
	"testing"

	"github.com/diconium/schemapruner/internal/index"
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	s, err := introspect.FromSDL("schema", `type Query { items: [Item!]! } type Item { name: String }`)
	require.NoError(t, err)
	i := index.New(s)

	items := i.Field("Query", "items")
	require.NotNil(t, items)
	item := i.Unwrap(items.Type)
	require.NotNil(t, item)
	assert.Equal(t, "Item", item.Name)
	assert.Equal(t, introspect.Object, item.Kind)

	assert.Nil(t, i.Lookup("Missing"))
	assert.Nil(t, i.Field("Missing", "x"))
	assert.Nil(t, i.Field("Query", "missing"))
	assert.Nil(t, i.InputField("Item", "name"))
	assert.Nil(t, i.Unwrap(nil))
	assert.Nil(t, i.Unwrap(introspect.NamedRef(introspect.Object, "Gone")))
	assert.Nil(t, i.Unwrap(&introspect.TypeRef{Kind: introspect.List}))
}

func TestWorkingCopy(t *testing.T) {
	s, err := introspect.FromSDL("schema", `type Query { a: Int b: Int }`)
	require.NoError(t, err)
	i := index.New(s)

	i.Lookup("Query").Fields = nil
	var query *introspect.Type
	for _, typ := range s.Types {
		if typ.Name == "Query" {
			query = typ
		}
	}
	require.NotNil(t, query)
	assert.Len(t, query.Fields, 2, "original schema must not change")
}

func TestRootType(t *testing.T) {
	s, err := introspect.FromSDL("schema", `schema { query: Root mutation: Change } type Root { a: Int } type Change { b: Int }`)
	require.NoError(t, err)
	i := index.New(s)
	assert.Equal(t, "Root", i.RootType("query"))
	assert.Equal(t, "Change", i.RootType("mutation"))
	assert.Equal(t, "Subscription", i.RootType("subscription"))
	assert.Equal(t, "", i.RootType("other"))

	bare := index.New(&introspect.Schema{Types: []*introspect.Type{}})
	assert.Equal(t, "Query", bare.RootType("query"))
	assert.Equal(t, "Mutation", bare.RootType("mutation"))
}
