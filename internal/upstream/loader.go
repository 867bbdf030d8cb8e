package upstream

// loader.go defines the Loader interface and the file based loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diconium/schemapruner/internal/introspect"
)

// Loader returns an introspection result as JSON
type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

// LoaderFunc allows an ordinary function to be used as a Loader
type LoaderFunc func(ctx context.Context) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context) ([]byte, error) { return f(ctx) }

// Static is a Loader that always returns the same JSON
type Static []byte

func (s Static) Load(context.Context) ([]byte, error) { return s, nil }

// FileLoader reads an introspection result from a file. A file with extension .graphql,
// .graphqls or .gql is taken to be a schema in SDL and is converted to an introspection result.
type FileLoader struct {
	Path string
}

func (f FileLoader) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if !isSDL(f.Path) {
		return data, nil
	}

	s, err := introspect.FromSDL(filepath.Base(f.Path), string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return introspect.Encode(s)
}

func isSDL(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".graphqls", ".gql":
		return true
	}
	return false
}
