package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSDL = `
type Query { product(sku: String!, store: String): Product }
type Product { name: String sku: String description: String }
input Unused { a: Int }
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env", ""))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "shop.graphql")
	require.NoError(t, os.WriteFile(schema, []byte(shopSDL), 0o600))
	queries := filepath.Join(dir, "queries", "nested")
	require.NoError(t, os.MkdirAll(queries, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(queries, "product.graphql"), []byte(`{ product(sku: "A") { sku } }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(queries, "notes.txt"), []byte(`not a query`), 0o600))

	t.Run("prune sdl", func(t *testing.T) {
		out, err := run(t, "prune", "--schema", schema, "--query", `{ product(sku: "A") { name } }`, "--query-dir", filepath.Join(dir, "queries"), "--format", "sdl")
		require.NoError(t, err)
		assert.Contains(t, out, "product(sku: String!): Product")
		assert.Contains(t, out, "name: String")
		assert.Contains(t, out, "sku: String")
		assert.NotContains(t, out, "description")
		assert.NotContains(t, out, "Unused")
	})

	t.Run("prune json to file", func(t *testing.T) {
		file := filepath.Join(dir, "pruned.json")
		_, err := run(t, "prune", "-s", schema, "-q", `{ product(sku: "A") { name } }`, "-o", file)
		require.NoError(t, err)
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"__schema"`)
		assert.Contains(t, string(data), `"name": "Product"`, "indented output")
	})

	t.Run("usage", func(t *testing.T) {
		out, err := run(t, "usage", "--schema", schema, "--query", `{ product(sku: "A", store: "x") { name } }`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Product": ["name"], "Query": ["product"], "Query.product": ["sku", "store"]}`, out)
	})

	t.Run("introspect", func(t *testing.T) {
		out, err := run(t, "introspect", "--schema", schema, "--sdl")
		require.NoError(t, err)
		assert.Contains(t, out, "input Unused")
	})

	t.Run("query dir with schema files", func(t *testing.T) {
		tree := t.TempDir()
		schemaInTree := filepath.Join(tree, "schema.graphql")
		require.NoError(t, os.WriteFile(schemaInTree, []byte(shopSDL), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(tree, "extra.gql"), []byte(`extend type Product { weight: Float }`), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(tree, "product.gql"), []byte(`query P { product(sku: "A") { description } }`), 0o600))

		out, err := run(t, "usage", "--schema", schemaInTree, "--query-dir", tree)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Product": ["description"], "Query": ["product"], "Query.product": ["sku"]}`, out)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := run(t, "prune", "--query", `{ product }`)
		assert.ErrorContains(t, err, "no schema")

		_, err = run(t, "prune", "--schema", schema, "--query", `{ product`)
		assert.Error(t, err)

		_, err = run(t, "prune", "--schema", schema, "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")

		_, err = run(t, "prune", "--schema", schema, "--url", "http://localhost")
		assert.Error(t, err, "--schema and --url are exclusive")

		_, err = run(t, "usage", "--schema", schema, "--query-file", filepath.Join(dir, "missing.graphql"))
		assert.Error(t, err)
	})
}
