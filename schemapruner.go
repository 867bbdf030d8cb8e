package schemapruner

// schemapruner.go provides the Session type which ties together the schema index, the query
// analyzer and the pruner

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/diconium/schemapruner/internal/analyzer"
	"github.com/diconium/schemapruner/internal/index"
	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/pruner"
	"github.com/diconium/schemapruner/internal/usage"
	"github.com/dolmen-go/jsonmap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrParse is wrapped by errors from Process for queries that are not valid GraphQL
	ErrParse = analyzer.ErrParse

	// ErrNoSchema is returned when creating a session without a schema
	ErrNoSchema = introspect.ErrNoSchema

	// ErrNoTypes is returned when creating a session from a schema with no types list
	ErrNoTypes = introspect.ErrNoTypes
)

// Session accumulates the usage of processed queries against one schema.
// All methods may be called concurrently.
type Session struct {
	opt options

	mu       sync.Mutex // protects usage
	usage    *usage.Map
	index    *index.Index
	analyzer *analyzer.Analyzer
	pruner   *pruner.Pruner
}

// New creates a session for a schema. The session works on its own copy so s can be
// modified or reused by the caller afterwards.
func New(s *Schema, options ...func(*options)) (*Session, error) {
	if s == nil {
		return nil, ErrNoSchema
	}
	if s.Types == nil {
		return nil, ErrNoTypes
	}

	r := &Session{usage: usage.NewMap()}
	r.opt.setDefaults()
	for _, opt := range options {
		opt(&r.opt)
	}
	r.index = index.New(s)
	r.analyzer = analyzer.New(r.index, r.opt.log)
	r.pruner = pruner.New(r.index, r.usage, r.opt.log)
	r.opt.log.Debug().Int("types", len(s.Types)).Msg("session created")
	return r, nil
}

// NewFromJSON decodes an introspection result and creates a session for it
func NewFromJSON(data []byte, options ...func(*options)) (*Session, error) {
	s, err := introspect.Decode(data)
	if err != nil {
		return nil, err
	}
	return New(s, options...)
}

// NewFromSDL creates a session for a schema written in the GraphQL schema definition language
func NewFromSDL(sdl string, options ...func(*options)) (*Session, error) {
	s, err := introspect.FromSDL("schema", sdl)
	if err != nil {
		return nil, err
	}
	return New(s, options...)
}

// Process records what a query document uses. If the query can't be parsed an error
// (wrapping ErrParse) is returned and the usage recorded so far is unaffected.
func (s *Session) Process(query string) error {
	m := usage.NewMap()
	if err := s.analyzer.Analyze(query, m); err != nil {
		s.opt.log.Debug().Err(err).Msg("query rejected")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage.Merge(m)
	return nil
}

// ProcessAll analyses several queries concurrently. Either all the queries are recorded
// or (if any query fails or ctx is cancelled) none are.
func (s *Session) ProcessAll(ctx context.Context, queries []string) error {
	maps := make([]*usage.Map, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opt.concurrency)
	for i, query := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m := usage.NewMap()
			if err := s.analyzer.Analyze(query, m); err != nil {
				return &QueryError{Index: i, Err: err}
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.opt.log.Debug().Err(err).Int("queries", len(queries)).Msg("batch rejected")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range maps {
		s.usage.Merge(m)
	}
	return nil
}

// Prune returns a new schema containing only what the queries processed so far use.
// It can be called any number of times, more queries may be processed in between.
func (s *Session) Prune() *Schema {
	s.mu.Lock()
	r := s.pruner.Prune()
	s.mu.Unlock()

	for _, ref := range pruner.Dangling(r) {
		s.opt.log.Warn().Str("type", ref.Type).Str("field", ref.Field).Str("argument", ref.Argument).
			Str("missing", ref.Missing).Msg("pruned schema has a dangling reference")
	}
	return r
}

// PruneJSON is Prune with the result encoded as an introspection result ({"data":{"__schema":...}})
func (s *Session) PruneJSON() ([]byte, error) {
	if s.opt.indent != "" {
		return introspect.EncodeIndent(s.Prune(), s.opt.indent)
	}
	return introspect.Encode(s.Prune())
}

// PruneSDL is Prune with the result in the GraphQL schema definition language
func (s *Session) PruneSDL() string {
	return introspect.ToSDL(s.Prune())
}

// Usage returns what has been recorded so far, as an object with a "Type" or "Type.field"
// key per entry (in name order) and a sorted list of names for each key
func (s *Session) Usage() jsonmap.Ordered {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage.Report()
}

// Schema returns the session's copy of the unpruned schema, which must not be modified
func (s *Session) Schema() *Schema {
	return s.index.Schema()
}

// QueryError identifies the query of a ProcessAll batch that failed
type QueryError struct {
	Index int
	Err   error
}

func (e *QueryError) Error() string {
	return "query " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsParseError reports whether err came from a query that could not be parsed
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}
