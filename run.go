package schemapruner

// run.go provides the MustPrune function for quickly pruning a schema in one call

import (
	"context"
)

// MustPrune prunes an introspection result (JSON) to what the queries use and returns the
// pruned introspection result. It panics if the schema or any query is invalid so it is
// mainly useful for tests and tools where the input is known to be good.
func MustPrune(schema []byte, queries ...string) []byte {
	s, err := NewFromJSON(schema)
	if err != nil {
		panic(err)
	}
	if err := s.ProcessAll(context.Background(), queries); err != nil {
		panic(err)
	}
	r, err := s.PruneJSON()
	if err != nil {
		panic(err)
	}
	return r
}
