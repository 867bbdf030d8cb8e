// Package introspect models the JSON result of a GraphQL introspection query
// and converts it to and from other representations (gqlparser AST, SDL text).
package introspect

// model.go holds the introspection types. Optional values are pointers so that
// a decoded schema encodes back to the same shape (null stays null, absent stays absent).

type (
	// Kind is the __TypeKind of a type or type reference
	Kind string

	// Document is the envelope returned by an introspection query
	Document struct {
		Data struct {
			Schema *Schema `json:"__schema"`
		} `json:"data"`
	}

	// Schema is the __schema object: the root operation types, every named type and the directives
	Schema struct {
		Description      *string      `json:"description,omitempty"`
		QueryType        *TypeName    `json:"queryType"`
		MutationType     *TypeName    `json:"mutationType"`
		SubscriptionType *TypeName    `json:"subscriptionType"`
		Types            []*Type      `json:"types"`
		Directives       []*Directive `json:"directives"`
	}

	// TypeName is how the root operation types are referenced
	TypeName struct {
		Name string `json:"name"`
	}

	// Type is a named type (the FullType fragment of the introspection query)
	Type struct {
		Kind           Kind          `json:"kind"`
		Name           string        `json:"name"`
		Description    *string       `json:"description"`
		SpecifiedByURL *string       `json:"specifiedByURL,omitempty"`
		IsOneOf        *bool         `json:"isOneOf,omitempty"`
		Fields         []*Field      `json:"fields"`
		InputFields    []*InputValue `json:"inputFields"`
		Interfaces     []*TypeRef    `json:"interfaces"`
		EnumValues     []*EnumValue  `json:"enumValues"`
		PossibleTypes  []*TypeRef    `json:"possibleTypes"`
	}

	// Field is an output field of an OBJECT or INTERFACE
	Field struct {
		Name              string        `json:"name"`
		Description       *string       `json:"description"`
		Args              []*InputValue `json:"args"`
		Type              *TypeRef      `json:"type"`
		IsDeprecated      bool          `json:"isDeprecated"`
		DeprecationReason *string       `json:"deprecationReason"`
	}

	// InputValue is a field argument, an input-object field or a directive argument
	InputValue struct {
		Name              string   `json:"name"`
		Description       *string  `json:"description"`
		Type              *TypeRef `json:"type"`
		DefaultValue      *string  `json:"defaultValue"`
		IsDeprecated      *bool    `json:"isDeprecated,omitempty"`
		DeprecationReason *string  `json:"deprecationReason,omitempty"`
	}

	// TypeRef references a named type, possibly wrapped in LIST and NON_NULL layers
	TypeRef struct {
		Kind   Kind     `json:"kind"`
		Name   *string  `json:"name"`
		OfType *TypeRef `json:"ofType"`
	}

	EnumValue struct {
		Name              string  `json:"name"`
		Description       *string `json:"description"`
		IsDeprecated      bool    `json:"isDeprecated"`
		DeprecationReason *string `json:"deprecationReason"`
	}

	Directive struct {
		Name         string        `json:"name"`
		Description  *string       `json:"description"`
		IsRepeatable *bool         `json:"isRepeatable,omitempty"`
		Locations    []string      `json:"locations"`
		Args         []*InputValue `json:"args"`
	}
)

const (
	Scalar      Kind = "SCALAR"
	Object      Kind = "OBJECT"
	Interface   Kind = "INTERFACE"
	Union       Kind = "UNION"
	Enum        Kind = "ENUM"
	InputObject Kind = "INPUT_OBJECT"
	List        Kind = "LIST"
	NonNull     Kind = "NON_NULL"
)

// IsWrapper is true for the LIST and NON_NULL modifiers
func (k Kind) IsWrapper() bool {
	return k == List || k == NonNull
}

// IsComposite is true for kinds that carry a selection set in a query
func (k Kind) IsComposite() bool {
	return k == Object || k == Interface || k == Union
}

// Named returns the name of the innermost named type of a (possibly wrapped) reference,
// or "" if the reference is malformed.
func (r *TypeRef) Named() string {
	for t := r; t != nil; t = t.OfType {
		if !t.Kind.IsWrapper() {
			if t.Name == nil {
				return ""
			}
			return *t.Name
		}
	}
	return ""
}

// String renders the reference in SDL notation, eg [Product!]!
func (r *TypeRef) String() string {
	if r == nil {
		return ""
	}
	switch r.Kind {
	case NonNull:
		return r.OfType.String() + "!"
	case List:
		return "[" + r.OfType.String() + "]"
	}
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// FieldByName returns the output field with the given name or nil
func (t *Type) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputFieldByName returns the input field with the given name or nil
func (t *Type) InputFieldByName(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ArgByName returns the argument with the given name or nil
func (f *Field) ArgByName(name string) *InputValue {
	for _, a := range f.Args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// NamedRef makes an unwrapped reference to a named type
func NamedRef(kind Kind, name string) *TypeRef {
	return &TypeRef{Kind: kind, Name: &name}
}
