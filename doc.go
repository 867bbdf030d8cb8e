// Package schemapruner reduces a GraphQL schema to the part that a set of queries actually use.

// A Session is created from an introspection result (the JSON returned by the standard
// introspection query). Queries are then processed one at a time, or in bulk, and the
// session records every field, argument and input field they reference. Prune returns
// the schema with everything else removed:

//package main
//
//import (
//    "os"
//
//    "github.com/diconium/schemapruner"
//)
//func main() {
//	data, _ := os.ReadFile("schema.json")
//	s, err := schemapruner.NewFromJSON(data)
//	if err != nil {
//		panic(err)
//	}
//	if err := s.Process(`{ product(sku: "A") { name sku } }`); err != nil {
//		panic(err)
//	}
//	pruned, _ := s.PruneJSON()
//	os.Stdout.Write(pruned)
//}

// The pruned schema keeps every scalar, enum and union. Object, interface and input types
// survive only if a query used them, and of those only the used fields and arguments
// are kept. Fields declared by an interface stay on every object implementing it.

// Inputs passed through variables can't be seen by the analysis so every field of those
// input types (and of the input types they refer to) is kept.

// See cmd/schemaprune for a command line tool and HTTP/websocket server built on the package.

package schemapruner
