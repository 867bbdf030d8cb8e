package introspect

// render.go builds the introspection model from a gqlparser schema, ie it produces what a
// server would return for the introspection query. It is mainly used to turn SDL into the
// JSON that the pruner consumes.

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const defaultDeprecationReason = "No longer supported"

// FromSDL parses schema definition language text and returns its introspection form
func FromSDL(name, sdl string) (*Schema, error) {
	astSchema, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return FromAST(astSchema), nil
}

// FromAST converts a parsed schema. Types are sorted by name so the output is stable.
// Introspection types (names starting with "__") are left out.
func FromAST(astSchema *ast.Schema) *Schema {
	s := &Schema{
		Types:      getTypes(astSchema),
		Directives: getDirectives(astSchema),
	}
	if astSchema.Query != nil {
		s.QueryType = &TypeName{Name: astSchema.Query.Name}
	}
	if astSchema.Mutation != nil {
		s.MutationType = &TypeName{Name: astSchema.Mutation.Name}
	}
	if astSchema.Subscription != nil {
		s.SubscriptionType = &TypeName{Name: astSchema.Subscription.Name}
	}
	return s
}

func getTypes(astSchema *ast.Schema) []*Type {
	names := make([]string, 0, len(astSchema.Types))
	for name := range astSchema.Types {
		if !strings.HasPrefix(name, "__") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	r := make([]*Type, 0, len(names))
	for _, name := range names {
		r = append(r, getType(astSchema, astSchema.Types[name]))
	}
	return r
}

func getType(astSchema *ast.Schema, defn *ast.Definition) *Type {
	t := &Type{
		Kind:        Kind(defn.Kind),
		Name:        defn.Name,
		Description: optional(defn.Description),
	}
	switch defn.Kind {
	case ast.Object, ast.Interface:
		t.Fields = getFields(astSchema, defn.Fields)
		t.Interfaces = getInterfaces(astSchema, defn.Interfaces)
		if defn.Kind == ast.Interface {
			t.PossibleTypes = getPossibleTypes(astSchema, defn)
		}
	case ast.Union:
		t.PossibleTypes = getPossibleTypes(astSchema, defn)
	case ast.Enum:
		t.EnumValues = getEnumValues(defn.EnumValues)
	case ast.InputObject:
		t.InputFields = make([]*InputValue, 0, len(defn.Fields))
		for _, f := range defn.Fields {
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         f.Name,
				Description:  optional(f.Description),
				Type:         getTypeRef(astSchema, f.Type),
				DefaultValue: getDefault(f.DefaultValue),
			})
		}
	case ast.Scalar:
		if d := defn.Directives.ForName("specifiedBy"); d != nil {
			if url := d.Arguments.ForName("url"); url != nil && url.Value != nil {
				t.SpecifiedByURL = optional(url.Value.Raw)
			}
		}
	}
	return t
}

func getFields(astSchema *ast.Schema, fields ast.FieldList) []*Field {
	r := make([]*Field, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		field := &Field{
			Name:        f.Name,
			Description: optional(f.Description),
			Args:        getArgs(astSchema, f.Arguments),
			Type:        getTypeRef(astSchema, f.Type),
		}
		field.IsDeprecated, field.DeprecationReason = getDeprecation(f.Directives)
		r = append(r, field)
	}
	return r
}

func getArgs(astSchema *ast.Schema, arguments ast.ArgumentDefinitionList) []*InputValue {
	r := make([]*InputValue, 0, len(arguments))
	for _, arg := range arguments {
		r = append(r, &InputValue{
			Name:         arg.Name,
			Description:  optional(arg.Description),
			Type:         getTypeRef(astSchema, arg.Type),
			DefaultValue: getDefault(arg.DefaultValue),
		})
	}
	return r
}

func getInterfaces(astSchema *ast.Schema, interfaces []string) []*TypeRef {
	r := make([]*TypeRef, 0, len(interfaces))
	for _, name := range interfaces {
		r = append(r, getTypeRef(astSchema, &ast.Type{NamedType: name}))
	}
	return r
}

func getPossibleTypes(astSchema *ast.Schema, defn *ast.Definition) []*TypeRef {
	possible := astSchema.GetPossibleTypes(defn)
	names := make([]string, 0, len(possible))
	for _, p := range possible {
		names = append(names, p.Name)
	}
	sort.Strings(names)

	r := make([]*TypeRef, 0, len(names))
	for _, name := range names {
		r = append(r, NamedRef(Object, name))
	}
	return r
}

func getEnumValues(values ast.EnumValueList) []*EnumValue {
	r := make([]*EnumValue, 0, len(values))
	for _, v := range values {
		ev := &EnumValue{
			Name:        v.Name,
			Description: optional(v.Description),
		}
		ev.IsDeprecated, ev.DeprecationReason = getDeprecation(v.Directives)
		r = append(r, ev)
	}
	return r
}

func getDirectives(astSchema *ast.Schema) []*Directive {
	directives := astSchema.Directives
	names := make([]string, 0, len(directives))
	for name := range directives {
		names = append(names, name)
	}
	sort.Strings(names)

	r := make([]*Directive, 0, len(names))
	for _, name := range names {
		d := directives[name]
		locations := make([]string, 0, len(d.Locations))
		for _, loc := range d.Locations {
			locations = append(locations, string(loc))
		}
		r = append(r, &Directive{
			Name:        d.Name,
			Description: optional(d.Description),
			Locations:   locations,
			Args:        getArgs(astSchema, d.Arguments),
		})
	}
	return r
}

// getTypeRef converts an AST type to the nested introspection form. NON_NULL wraps the
// type it modifies, so [Int!]! is NON_NULL(LIST(NON_NULL(Int))).
func getTypeRef(astSchema *ast.Schema, t *ast.Type) *TypeRef {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return &TypeRef{Kind: NonNull, OfType: getTypeRef(astSchema, &inner)}
	}
	if t.Elem != nil {
		return &TypeRef{Kind: List, OfType: getTypeRef(astSchema, t.Elem)}
	}
	kind := Scalar
	if defn := astSchema.Types[t.NamedType]; defn != nil {
		kind = Kind(defn.Kind)
	}
	return NamedRef(kind, t.NamedType)
}

func getDeprecation(directives ast.DirectiveList) (bool, *string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, nil
	}
	reason := defaultDeprecationReason
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil && arg.Value.Raw != "" {
		reason = arg.Value.Raw
	}
	return true, &reason
}

func getDefault(v *ast.Value) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
