package introspect

// sdl.go renders the introspection model as schema definition language

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// builtInScalars are predeclared by every GraphQL server so are not written out
var builtInScalars = map[string]bool{"Int": true, "Float": true, "String": true, "Boolean": true, "ID": true}

// builtInDirectives are also predeclared
var builtInDirectives = map[string]bool{
	"include": true, "skip": true, "deprecated": true, "specifiedBy": true, "defer": true, "oneOf": true,
}

// ToSDL returns the schema as SDL text
func ToSDL(s *Schema) string {
	builder := &strings.Builder{}
	builder.Grow(64 * len(s.Types)) // a rough guess to avoid most reallocations
	formatter.NewFormatter(builder).FormatSchemaDocument(ToDocument(s))
	return builder.String()
}

// ToDocument converts the schema to a gqlparser schema document. The schema definition
// (root operation types) is only written if the names differ from the defaults.
func ToDocument(s *Schema) *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}

	var operations ast.OperationTypeDefinitionList
	custom := false
	for _, op := range []struct {
		operation ast.Operation
		ref       *TypeName
		def       string
	}{
		{ast.Query, s.QueryType, "Query"},
		{ast.Mutation, s.MutationType, "Mutation"},
		{ast.Subscription, s.SubscriptionType, "Subscription"},
	} {
		if op.ref == nil {
			continue
		}
		if op.ref.Name != op.def {
			custom = true
		}
		operations = append(operations, &ast.OperationTypeDefinition{Operation: op.operation, Type: op.ref.Name})
	}
	if custom {
		doc.Schema = append(doc.Schema, &ast.SchemaDefinition{OperationTypes: operations})
	}

	for _, d := range s.Directives {
		if builtInDirectives[d.Name] {
			continue
		}
		dd := &ast.DirectiveDefinition{
			Name:        d.Name,
			Description: value(d.Description),
			Arguments:   toArgumentDefinitions(d.Args),
		}
		if d.IsRepeatable != nil {
			dd.IsRepeatable = *d.IsRepeatable
		}
		for _, loc := range d.Locations {
			dd.Locations = append(dd.Locations, ast.DirectiveLocation(loc))
		}
		doc.Directives = append(doc.Directives, dd)
	}

	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") || (t.Kind == Scalar && builtInScalars[t.Name]) {
			continue
		}
		doc.Definitions = append(doc.Definitions, toDefinition(t))
	}
	return doc
}

func toDefinition(t *Type) *ast.Definition {
	defn := &ast.Definition{
		Kind:        ast.DefinitionKind(t.Kind),
		Name:        t.Name,
		Description: value(t.Description),
	}
	for _, i := range t.Interfaces {
		defn.Interfaces = append(defn.Interfaces, i.Named())
	}
	for _, f := range t.Fields {
		fd := &ast.FieldDefinition{
			Name:        f.Name,
			Description: value(f.Description),
			Arguments:   toArgumentDefinitions(f.Args),
			Type:        toASTType(f.Type),
		}
		if f.IsDeprecated {
			fd.Directives = ast.DirectiveList{deprecated(f.DeprecationReason)}
		}
		defn.Fields = append(defn.Fields, fd)
	}
	for _, f := range t.InputFields {
		defn.Fields = append(defn.Fields, &ast.FieldDefinition{
			Name:         f.Name,
			Description:  value(f.Description),
			Type:         toASTType(f.Type),
			DefaultValue: literal(f.DefaultValue),
		})
	}
	if t.Kind == Union {
		for _, p := range t.PossibleTypes {
			defn.Types = append(defn.Types, p.Named())
		}
	}
	for _, ev := range t.EnumValues {
		evd := &ast.EnumValueDefinition{Name: ev.Name, Description: value(ev.Description)}
		if ev.IsDeprecated {
			evd.Directives = ast.DirectiveList{deprecated(ev.DeprecationReason)}
		}
		defn.EnumValues = append(defn.EnumValues, evd)
	}
	return defn
}

func toArgumentDefinitions(args []*InputValue) ast.ArgumentDefinitionList {
	var r ast.ArgumentDefinitionList
	for _, a := range args {
		r = append(r, &ast.ArgumentDefinition{
			Name:         a.Name,
			Description:  value(a.Description),
			Type:         toASTType(a.Type),
			DefaultValue: literal(a.DefaultValue),
		})
	}
	return r
}

func toASTType(r *TypeRef) *ast.Type {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case NonNull:
		t := toASTType(r.OfType)
		if t != nil {
			t.NonNull = true
		}
		return t
	case List:
		return &ast.Type{Elem: toASTType(r.OfType)}
	}
	return &ast.Type{NamedType: r.Named()}
}

func deprecated(reason *string) *ast.Directive {
	d := &ast.Directive{Name: "deprecated"}
	if reason != nil && *reason != defaultDeprecationReason {
		d.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: *reason},
		}}
	}
	return d
}

// literal wraps an introspection default value (already GraphQL literal text) so the
// formatter writes it unchanged
func literal(s *string) *ast.Value {
	if s == nil {
		return nil
	}
	return &ast.Value{Kind: ast.EnumValue, Raw: *s}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
