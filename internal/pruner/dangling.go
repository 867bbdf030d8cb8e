package pruner

// dangling.go finds references to types that are not in a schema. Pruning can leave some
// (eg an object field kept because an interface declares it, whose type was never queried).

import (
	"fmt"
	"sort"

	"github.com/diconium/schemapruner/internal/introspect"
)

// Reference is a place in the schema that names a missing type
type Reference struct {
	Type     string // type containing the reference
	Field    string // field or input field, empty for interface/member references
	Argument string // set for a field argument
	Missing  string // the name of the missing type
}

func (r Reference) String() string {
	where := r.Type
	if r.Field != "" {
		where += "." + r.Field
	}
	if r.Argument != "" {
		where += "(" + r.Argument + ")"
	}
	return fmt.Sprintf("%s refers to missing type %s", where, r.Missing)
}

// Dangling lists the references in s to types that s does not contain
func Dangling(s *introspect.Schema) []Reference {
	names := typeNames(s)
	var r []Reference
	check := func(ref *introspect.TypeRef, at Reference) {
		if ref == nil {
			return
		}
		if name := ref.Named(); name != "" && !names[name] {
			at.Missing = name
			r = append(r, at)
		}
	}

	for _, t := range s.Types {
		for _, f := range t.Fields {
			check(f.Type, Reference{Type: t.Name, Field: f.Name})
			for _, a := range f.Args {
				check(a.Type, Reference{Type: t.Name, Field: f.Name, Argument: a.Name})
			}
		}
		for _, f := range t.InputFields {
			check(f.Type, Reference{Type: t.Name, Field: f.Name})
		}
		for _, i := range t.Interfaces {
			check(i, Reference{Type: t.Name})
		}
		for _, p := range t.PossibleTypes {
			check(p, Reference{Type: t.Name})
		}
	}

	sort.SliceStable(r, func(i, j int) bool { return r[i].String() < r[j].String() })
	return r
}
