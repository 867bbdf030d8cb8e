package upstream

// fetch.go sends the introspection query to a GraphQL server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/rs/zerolog"
)

// Fetcher is a Loader that gets the schema from a GraphQL server
type Fetcher struct {
	url     string
	timeout time.Duration
	headers map[string]string
	log     zerolog.Logger

	client *graphql.Client
}

// NewFetcher creates a Fetcher for the GraphQL endpoint at url
func NewFetcher(url string, options ...func(*Fetcher)) *Fetcher {
	f := &Fetcher{url: url, timeout: 30 * time.Second, log: zerolog.Nop()}
	for _, option := range options {
		option(f)
	}

	f.client = graphql.NewClient(url, &http.Client{Timeout: f.timeout})
	if len(f.headers) > 0 {
		f.client = f.client.WithRequestModifier(func(r *http.Request) {
			for k, v := range f.headers {
				r.Header.Set(k, v)
			}
		})
	}
	return f
}

// Timeout limits how long the introspection request can take
func Timeout(timeout time.Duration) func(*Fetcher) {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// Headers are added to the introspection request (eg Authorization)
func Headers(headers map[string]string) func(*Fetcher) {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithLogger sets the logger for request timings and failures
func WithLogger(log zerolog.Logger) func(*Fetcher) {
	return func(f *Fetcher) {
		f.log = log
	}
}

// Load runs the introspection query and returns the result in the {"data": ...} envelope
func (f *Fetcher) Load(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := f.client.ExecRaw(ctx, IntrospectionQuery, nil)
	if err != nil {
		f.log.Error().Err(err).Str("url", f.url).Msg("introspection failed")
		return nil, fmt.Errorf("introspection of %s: %w", f.url, err)
	}
	f.log.Info().Str("url", f.url).Dur("took", time.Since(start)).Int("bytes", len(data)).Msg("schema fetched")

	r := make([]byte, 0, len(data)+9)
	r = append(r, `{"data":`...)
	r = append(r, data...)
	return append(r, '}'), nil
}
