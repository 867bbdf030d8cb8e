// Command schemaprune reduces a GraphQL schema to what a set of queries use.
//
//	schemaprune prune --url https://shop.example.com/graphql --query-dir ./queries --format sdl
//	schemaprune usage --schema schema.json --query '{ products { items { sku } } }'
//	schemaprune introspect --url https://shop.example.com/graphql -o schema.json
//	schemaprune serve --config schemaprune.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
