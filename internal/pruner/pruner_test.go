package pruner_test

import (
	"testing"

	"github.com/diconium/schemapruner/internal/analyzer"
	"github.com/diconium/schemapruner/internal/index"
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/pruner"
	"github.com/diconium/schemapruner/internal/usage"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commerceSchema = `
type Query {
	product(sku: String!, store: String, locale: String): Product
	products(filter: ProductFilter): [Product!]!
	search(term: String!): [SearchResult]
	node(id: ID!): Node
	categories: [Category]
}
type Mutation { addToCart(cartId: ID!, items: [CartItemInput!]!): Cart }
interface Node { id: ID! label(locale: String, short: Boolean): String }
interface Priced { price: Money }
type Product implements Node & Priced { id: ID! label(locale: String, short: Boolean): String name: String sku: String description: String price: Money }
type Category implements Node { id: ID! label(locale: String, short: Boolean): String name: String }
type Money { value: Float currency: Currency }
type Cart { id: ID! }
union SearchResult = Product | Category
enum Currency { EUR USD }
scalar DateTime
input ProductFilter { name: String sku: String range: RangeInput }
input RangeInput { from: Float to: Float }
input CartItemInput { sku: String! quantity: Float! }
`

type fixture struct {
	original *introspect.Schema
	analyzer *analyzer.Analyzer
	usage    *usage.Map
	pruner   *pruner.Pruner
}

func newFixture(t *testing.T, queries ...string) *fixture {
	t.Helper()
	s, err := introspect.FromSDL("commerce", commerceSchema)
	require.NoError(t, err)
	i := index.New(s)
	f := &fixture{
		original: s,
		analyzer: analyzer.New(i, zerolog.Nop()),
		usage:    usage.NewMap(),
	}
	f.pruner = pruner.New(i, f.usage, zerolog.Nop())
	for _, q := range queries {
		f.process(t, q)
	}
	return f
}

func (f *fixture) process(t *testing.T, query string) {
	t.Helper()
	require.NoError(t, f.analyzer.Analyze(query, f.usage))
}

func find(s *introspect.Schema, name string) *introspect.Type {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func fieldNames(t *introspect.Type) []string {
	r := []string{}
	for _, f := range t.Fields {
		r = append(r, f.Name)
	}
	return r
}

func inputFieldNames(t *introspect.Type) []string {
	r := []string{}
	for _, f := range t.InputFields {
		r = append(r, f.Name)
	}
	return r
}

func argNames(f *introspect.Field) []string {
	r := []string{}
	for _, a := range f.Args {
		r = append(r, a.Name)
	}
	return r
}

func TestScalarsAndEnumsSurvive(t *testing.T) {
	for name, queries := range map[string][]string{
		"no queries": nil,
		"one query":  {`{ product(sku: "A") { price { value } } }`},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, queries...)
			pruned := f.pruner.Prune()
			for _, typ := range f.original.Types {
				if typ.Kind != introspect.Scalar && typ.Kind != introspect.Enum {
					continue
				}
				got := find(pruned, typ.Name)
				require.NotNil(t, got, typ.Name)
				assert.Equal(t, typ, got)
			}
		})
	}
}

func TestZeroQueries(t *testing.T) {
	pruned := newFixture(t).pruner.Prune()
	for _, typ := range pruned.Types {
		assert.Contains(t, []introspect.Kind{introspect.Scalar, introspect.Enum, introspect.Union}, typ.Kind, typ.Name)
	}
	assert.NotNil(t, find(pruned, "SearchResult"))
	assert.NotNil(t, find(pruned, "DateTime"))
	assert.Nil(t, pruned.QueryType, "root reference to a removed type")
	assert.Nil(t, pruned.MutationType)
	assert.Empty(t, find(pruned, "SearchResult").PossibleTypes)
}

func TestProductScenario(t *testing.T) {
	pruned := newFixture(t, `{ product(sku: "A") { name sku } }`).pruner.Prune()

	product := find(pruned, "Product")
	require.NotNil(t, product)
	assert.Equal(t, []string{"name", "sku"}, fieldNames(product))

	query := find(pruned, "Query")
	require.NotNil(t, query)
	assert.Equal(t, []string{"product"}, fieldNames(query))
	assert.Equal(t, []string{"sku"}, argNames(query.FieldByName("product")))

	for _, removed := range []string{"Category", "Money", "Cart", "Mutation", "Node", "Priced", "ProductFilter", "RangeInput", "CartItemInput"} {
		assert.Nil(t, find(pruned, removed), removed)
	}
	assert.Empty(t, product.Interfaces, "references to removed interfaces are dropped")
	require.NotNil(t, pruned.QueryType)
	assert.Nil(t, pruned.MutationType)
	assert.Equal(t, []string{"Product"}, namesOf(find(pruned, "SearchResult").PossibleTypes))
}

func TestFieldReachability(t *testing.T) {
	pruned := newFixture(t,
		`{ search(term: "x") { ... on Category { name } } }`,
		`{ node(id: "1") { ... on Product { description } } }`,
	).pruner.Prune()

	assert.Equal(t, []string{"name"}, fieldNames(find(pruned, "Category")))
	assert.Equal(t, []string{"description"}, fieldNames(find(pruned, "Product")))
	assert.Equal(t, []string{"search", "node"}, fieldNames(find(pruned, "Query")))
	// nothing was selected on Node itself
	assert.Nil(t, find(pruned, "Node"))
	assert.Empty(t, find(pruned, "Product").Interfaces)
	assert.Equal(t, []string{"Category", "Product"}, namesOf(find(pruned, "SearchResult").PossibleTypes))
}

func TestEmptyInterface(t *testing.T) {
	pruned := newFixture(t, `{ node(id: "1") { __typename ... on Category { name } } }`).pruner.Prune()

	node := find(pruned, "Node")
	require.NotNil(t, node)
	assert.Empty(t, node.Fields)
	assert.NotNil(t, node.Fields, "an interface with no fields left still has a field list")
	assert.Equal(t, []string{"Category"}, namesOf(node.PossibleTypes))
	assert.Equal(t, []string{"Node"}, namesOf(find(pruned, "Category").Interfaces))
	assert.Equal(t, []string{"name"}, fieldNames(find(pruned, "Category")))
}

func TestInterfaceInheritance(t *testing.T) {
	pruned := newFixture(t, `{ node(id: "1") { id label(locale: "de") ... on Product { sku } } }`).pruner.Prune()

	product := find(pruned, "Product")
	require.NotNil(t, product)
	assert.Equal(t, []string{"id", "label", "sku"}, fieldNames(product))
	assert.Equal(t, []string{"locale"}, argNames(product.FieldByName("label")))
	assert.Equal(t, []string{"Node"}, namesOf(product.Interfaces))

	node := find(pruned, "Node")
	assert.Equal(t, []string{"id", "label"}, fieldNames(node))
	assert.Equal(t, []string{"locale"}, argNames(node.FieldByName("label")))

	// Category was never selected on directly so is gone, even though it implements Node
	assert.Nil(t, find(pruned, "Category"))
}

func TestArgumentPruning(t *testing.T) {
	pruned := newFixture(t, `{ product(sku: "A") { sku } }`, `{ product(sku: "B", locale: "en") { name } }`).pruner.Prune()
	assert.Equal(t, []string{"sku", "locale"}, argNames(find(pruned, "Query").FieldByName("product")))
}

func TestInputFallback(t *testing.T) {
	f := newFixture(t, `query ($f: ProductFilter) { products(filter: $f) { sku } }`)
	pruned := f.pruner.Prune()
	assert.Equal(t, []string{"name", "sku", "range"}, inputFieldNames(find(pruned, "ProductFilter")))
	assert.Equal(t, []string{"from", "to"}, inputFieldNames(find(pruned, "RangeInput")))

	literal := newFixture(t, `{ products(filter: { sku: "a" }) { sku } }`).pruner.Prune()
	assert.Equal(t, []string{"sku"}, inputFieldNames(find(literal, "ProductFilter")))
	assert.Nil(t, find(literal, "RangeInput"))
	assert.Nil(t, find(literal, "ProductFilter").Fields, "null lists stay null")
}

func TestIdempotence(t *testing.T) {
	f := newFixture(t, `{ product(sku: "A") { name price { value } } }`)
	first, err := introspect.Encode(f.pruner.Prune())
	require.NoError(t, err)
	second, err := introspect.Encode(f.pruner.Prune())
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	// later calls see usage recorded since
	f.process(t, `mutation { addToCart(cartId: "1", items: []) { id } }`)
	third := f.pruner.Prune()
	assert.NotNil(t, find(third, "Cart"))
	assert.NotNil(t, find(third, "CartItemInput"))
	require.NotNil(t, third.MutationType)
	assert.Equal(t, []string{"name", "price"}, fieldNames(find(third, "Product")))
}

func TestOriginalUnchanged(t *testing.T) {
	f := newFixture(t, `{ product(sku: "A") { name } }`)
	before, err := introspect.Encode(f.original)
	require.NoError(t, err)
	f.pruner.Prune()
	after, err := introspect.Encode(f.original)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestDangling(t *testing.T) {
	pruned := newFixture(t, `{ product(sku: "A") { name } }`).pruner.Prune()
	assert.Empty(t, pruner.Dangling(pruned))

	// price is only kept on Product because Priced declares it
	inherited := newFixture(t, `{ product(sku: "A") { name ... on Priced { price { value } } } }`).pruner.Prune()
	assert.Equal(t, []string{"name", "price"}, fieldNames(find(inherited, "Product")))
	assert.Empty(t, pruner.Dangling(inherited))

	// without a selection on price, Money is never reached
	leaf := newFixture(t, `{ product(sku: "A") { name ... on Priced { price } } }`).pruner.Prune()
	assert.Equal(t, []string{
		"Priced.price refers to missing type Money",
		"Product.price refers to missing type Money",
	}, lo.Map(pruner.Dangling(leaf), func(r pruner.Reference, _ int) string { return r.String() }))

	broken := &introspect.Schema{Types: []*introspect.Type{{
		Kind: introspect.Object,
		Name: "Query",
		Fields: []*introspect.Field{{
			Name: "cart",
			Type: introspect.NamedRef(introspect.Object, "Cart"),
			Args: []*introspect.InputValue{{Name: "id", Type: &introspect.TypeRef{Kind: introspect.NonNull, OfType: introspect.NamedRef(introspect.Scalar, "ID")}}},
		}},
	}}}
	refs := pruner.Dangling(broken)
	require.Len(t, refs, 2)
	assert.Equal(t, "Query.cart refers to missing type Cart", refs[0].String())
	assert.Equal(t, "Query.cart(id) refers to missing type ID", refs[1].String())
}

func namesOf(refs []*introspect.TypeRef) []string {
	r := []string{}
	for _, ref := range refs {
		r = append(r, ref.Named())
	}
	return r
}
