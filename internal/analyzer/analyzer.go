// Package analyzer walks GraphQL query documents against a schema index and records
// every field, argument and input field they reference in a usage map.
package analyzer

// analyzer.go walks the selection sets of a query and the schema's type graph together

import (
	"errors"
	"fmt"

	"github.com/diconium/schemapruner/internal/index"
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/usage"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ErrParse is wrapped by the error returned for a query that is not valid GraphQL syntax
var ErrParse = errors.New("error parsing query")

type (
	// Analyzer only reads the index so one Analyzer can be used from several goroutines,
	// as long as each goroutine records into its own usage map.
	Analyzer struct {
		index *index.Index
		log   zerolog.Logger
	}

	// walker holds the state of one Analyze call
	walker struct {
		*Analyzer
		usage *usage.Map
	}
)

func New(i *index.Index, log zerolog.Logger) *Analyzer {
	return &Analyzer{index: i, log: log}
}

// Analyze parses a query document and records what each of its operations uses in m.
// Nothing is recorded if the query cannot be parsed.
func (a *Analyzer) Analyze(query string, m *usage.Map) error {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: query})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	w := walker{Analyzer: a, usage: m}
	for _, operation := range doc.Operations {
		root := a.index.RootType(string(operation.Operation))
		if root == "" {
			a.log.Debug().Str("operation", string(operation.Operation)).Msg("unknown operation type")
			continue
		}
		w.selections(operation.SelectionSet, root)
	}
	if len(doc.Fragments) > 0 {
		a.log.Debug().Int("fragments", len(doc.Fragments)).Msg("named fragment definitions are not analysed")
	}
	return nil
}

// selections records the fields of a selection set on the parent type (which may be missing
// from the schema, in which case field names are still recorded but nothing below them).
func (w *walker) selections(set ast.SelectionSet, parentName string) {
	parent := w.index.Lookup(parentName)
	for _, selection := range set {
		switch s := selection.(type) {
		case *ast.Field:
			w.field(s, parentName, parent)

		case *ast.InlineFragment:
			typeName := s.TypeCondition
			if typeName == "" {
				typeName = parentName // eg "... @include(if: $x) { ... }"
			}
			w.selections(s.SelectionSet, typeName)

		case *ast.FragmentSpread:
			w.log.Debug().Str("fragment", s.Name).Str("type", parentName).Msg("skipping fragment spread")
		}
	}
}

func (w *walker) field(f *ast.Field, parentName string, parent *introspect.Type) {
	w.usage.AddField(parentName, f.Name)

	var def *introspect.Field
	if parent != nil {
		def = parent.FieldByName(f.Name)
	}
	if def == nil {
		w.log.Debug().Str("type", parentName).Str("field", f.Name).Msg("field not found in schema")
	}

	for _, arg := range f.Arguments {
		w.usage.AddArg(parentName, f.Name, arg.Name)
		if def == nil {
			continue
		}
		argDef := def.ArgByName(arg.Name)
		if argDef == nil {
			w.log.Debug().Str("field", parentName+"."+f.Name).Str("argument", arg.Name).Msg("argument not found in schema")
			continue
		}
		if input := w.index.Unwrap(argDef.Type); input != nil && input.Kind == introspect.InputObject {
			w.inputValue(input, arg.Value)
		}
	}

	if def == nil || len(f.SelectionSet) == 0 {
		return
	}
	t := w.index.Unwrap(def.Type)
	if t == nil {
		if e := w.log.Debug(); e.Enabled() {
			e.Str("field", parentName+"."+f.Name).Str("fieldType", def.Type.String()).Msg("type not found in schema")
		}
		return
	}
	if t.Kind.IsComposite() {
		w.selections(f.SelectionSet, t.Name)
	}
}

// inputValue records the input fields that a literal value of input type t uses.
// If the shape of the value cannot be seen (a variable, null, a scalar where an object was
// expected) all the fields of the type are taken to be used.
func (w *walker) inputValue(t *introspect.Type, value *ast.Value) {
	if value == nil {
		w.markAll(t, make(map[string]bool))
		return
	}
	switch value.Kind {
	case ast.ObjectValue:
		w.usage.Touch(usage.TypeKey(t.Name))
		for _, child := range value.Children {
			w.usage.AddField(t.Name, child.Name)
			def := t.InputFieldByName(child.Name)
			if def == nil {
				continue
			}
			if nested := w.index.Unwrap(def.Type); nested != nil && nested.Kind == introspect.InputObject {
				w.inputValue(nested, child.Value)
			}
		}

	case ast.ListValue:
		// an empty list still references the type
		w.usage.Touch(usage.TypeKey(t.Name))
		for _, child := range value.Children {
			w.inputValue(t, child.Value)
		}

	default:
		if e := w.log.Debug(); e.Enabled() {
			e.Str("type", t.Name).Str("value", value.String()).Msg("input shape unknown, keeping all fields")
		}
		w.markAll(t, make(map[string]bool))
	}
}

// markAll records every field of an input type and, recursively, of the input types they
// reference. visited stops the recursion on self-referencing input types.
func (w *walker) markAll(t *introspect.Type, visited map[string]bool) {
	if visited[t.Name] {
		return
	}
	visited[t.Name] = true

	w.usage.Touch(usage.TypeKey(t.Name))
	for _, f := range t.InputFields {
		w.usage.AddField(t.Name, f.Name)
		if nested := w.index.Unwrap(f.Type); nested != nil && nested.Kind == introspect.InputObject {
			w.markAll(nested, visited)
		}
	}
}
