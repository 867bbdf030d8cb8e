// Package pruner produces the subset of a schema that the recorded usage can reach
package pruner

// pruner.go filters a copy of the working schema in four ordered steps, each step
// relying on the output of the previous ones:
//   1. drop OBJECT, INTERFACE and INPUT_OBJECT types that were never used
//   2. drop references to interfaces removed in step 1
//   3. keep only the used fields of the remaining interfaces
//   4. keep only the used fields of objects (plus those declared by a remaining interface the
//      object implements) and input objects, then only the used arguments of those fields

import (
	"github.com/diconium/schemapruner/internal/index"
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/usage"
	"github.com/huandu/go-clone"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Pruner reads the usage map, which may keep growing between calls to Prune
type Pruner struct {
	index *index.Index
	usage *usage.Map
	log   zerolog.Logger
}

func New(i *index.Index, m *usage.Map, log zerolog.Logger) *Pruner {
	return &Pruner{index: i, usage: m, log: log}
}

// Prune returns a new schema with everything not reached by the recorded usage removed.
// The index's working copy is not modified so Prune can be called any number of times.
func (p *Pruner) Prune() *introspect.Schema {
	s := clone.Clone(p.index.Schema()).(*introspect.Schema)

	before := len(s.Types)
	p.filterTypes(s)
	kept := typeNames(s)
	p.removeDanglingInterfaces(s, kept)
	interfaces := p.filterInterfaceFields(s)
	p.filterFields(s, interfaces)
	p.removeDanglingReferences(s, kept)

	p.log.Debug().Int("types", before).Int("kept", len(s.Types)).Msg("schema pruned")
	return s
}

// filterTypes is step 1. SCALAR, ENUM and UNION types are always kept.
func (p *Pruner) filterTypes(s *introspect.Schema) {
	s.Types = lo.Filter(s.Types, func(t *introspect.Type, _ int) bool {
		if t == nil {
			return false
		}
		switch t.Kind {
		case introspect.Object, introspect.Interface, introspect.InputObject:
			return p.usage.HasType(t.Name)
		}
		return true
	})
}

// removeDanglingInterfaces is step 2
func (p *Pruner) removeDanglingInterfaces(s *introspect.Schema, kept map[string]bool) {
	for _, t := range s.Types {
		if t.Interfaces == nil {
			continue
		}
		t.Interfaces = lo.Filter(t.Interfaces, func(ref *introspect.TypeRef, _ int) bool {
			return kept[ref.Named()]
		})
	}
}

// declared lists what a remaining interface still declares after step 3:
// its field names and, per field, the argument names
type declared struct {
	fields usage.Set
	args   map[string]usage.Set
}

// filterInterfaceFields is step 3. The arguments of the remaining fields are filtered the
// same way as for objects in step 4.
func (p *Pruner) filterInterfaceFields(s *introspect.Schema) map[string]declared {
	r := make(map[string]declared)
	for _, t := range s.Types {
		if t.Kind != introspect.Interface {
			continue
		}
		used := p.usage.Get(usage.TypeKey(t.Name))
		t.Fields = filterList(t.Fields, func(f *introspect.Field) bool {
			return used.Has(f.Name)
		})
		p.filterArgs(t.Name, t.Fields, nil)

		d := declared{fields: make(usage.Set), args: make(map[string]usage.Set)}
		for _, f := range t.Fields {
			d.fields[f.Name] = struct{}{}
			args := make(usage.Set, len(f.Args))
			for _, a := range f.Args {
				args[a.Name] = struct{}{}
			}
			d.args[f.Name] = args
		}
		r[t.Name] = d
	}
	return r
}

// filterFields is step 4
func (p *Pruner) filterFields(s *introspect.Schema, interfaces map[string]declared) {
	for _, t := range s.Types {
		used := p.usage.Get(usage.TypeKey(t.Name))
		switch t.Kind {
		case introspect.InputObject:
			t.InputFields = filterList(t.InputFields, func(f *introspect.InputValue) bool {
				return used.Has(f.Name)
			})

		case introspect.Object:
			implemented := make([]declared, 0, len(t.Interfaces))
			for _, ref := range t.Interfaces {
				if d, ok := interfaces[ref.Named()]; ok {
					implemented = append(implemented, d)
				}
			}
			t.Fields = filterList(t.Fields, func(f *introspect.Field) bool {
				if used.Has(f.Name) {
					return true
				}
				// a field required by an interface must stay, it may have only been
				// queried through a fragment on the interface
				return lo.SomeBy(implemented, func(d declared) bool { return d.fields.Has(f.Name) })
			})
			p.filterArgs(t.Name, t.Fields, implemented)
		}
	}
}

// filterArgs keeps only the arguments recorded for each field, plus those that an
// implemented interface still declares on the same field
func (p *Pruner) filterArgs(typeName string, fields []*introspect.Field, implemented []declared) {
	for _, f := range fields {
		if len(f.Args) == 0 {
			continue
		}
		used := p.usage.Get(usage.ArgKey(typeName, f.Name))
		f.Args = filterList(f.Args, func(a *introspect.InputValue) bool {
			if used.Has(a.Name) {
				return true
			}
			return lo.SomeBy(implemented, func(d declared) bool { return d.args[f.Name].Has(a.Name) })
		})
	}
}

// removeDanglingReferences removes references that would otherwise point at removed types:
// members of interfaces and unions, and the root operation types
func (p *Pruner) removeDanglingReferences(s *introspect.Schema, kept map[string]bool) {
	for _, t := range s.Types {
		if t.PossibleTypes == nil {
			continue
		}
		t.PossibleTypes = lo.Filter(t.PossibleTypes, func(ref *introspect.TypeRef, _ int) bool {
			return kept[ref.Named()]
		})
	}
	for _, root := range []**introspect.TypeName{&s.QueryType, &s.MutationType, &s.SubscriptionType} {
		if *root != nil && !kept[(*root).Name] {
			*root = nil
		}
	}
}

// filterList is lo.Filter except that a nil list stays nil (so it is still encoded as null)
func filterList[T any](list []T, keep func(T) bool) []T {
	if list == nil {
		return nil
	}
	return lo.Filter(list, func(item T, _ int) bool { return keep(item) })
}

func typeNames(s *introspect.Schema) map[string]bool {
	r := make(map[string]bool, len(s.Types))
	for _, t := range s.Types {
		r[t.Name] = true
	}
	return r
}
