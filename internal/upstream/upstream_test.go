package upstream_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diconium/schemapruner/internal/introspect"
	"github.com/diconium/schemapruner/internal/upstream"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSchema = `{"__schema":{"queryType":{"name":"Query"},"types":[` +
	`{"kind":"OBJECT","name":"Query","fields":[{"name":"hello","args":[],"type":{"kind":"SCALAR","name":"String"},"isDeprecated":false}],"interfaces":[]},` +
	`{"kind":"SCALAR","name":"String"}],"directives":[]}}`

func TestFetcher(t *testing.T) {
	var got struct {
		query, auth string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.query = string(body)
		got.auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + minimalSchema + `}`))
	}))
	defer server.Close()

	f := upstream.NewFetcher(server.URL,
		upstream.Timeout(time.Second),
		upstream.Headers(map[string]string{"Authorization": "Bearer abc"}),
		upstream.WithLogger(zerolog.Nop()),
	)
	data, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got.query, "IntrospectionQuery")
	assert.Equal(t, "Bearer abc", got.auth)

	s, err := introspect.Decode(data)
	require.NoError(t, err)
	require.Len(t, s.Types, 2)
	assert.Equal(t, "hello", s.Types[0].Fields[0].Name)
}

func TestFetcherErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"introspection disabled"}]}`))
	}))
	defer server.Close()

	_, err := upstream.NewFetcher(server.URL).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "introspection disabled")
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(minimalSchema), 0o600))
	sdlPath := filepath.Join(dir, "schema.graphqls")
	require.NoError(t, os.WriteFile(sdlPath, []byte(`type Query { hello: String }`), 0o600))

	for _, path := range []string{jsonPath, sdlPath} {
		data, err := upstream.FileLoader{Path: path}.Load(context.Background())
		require.NoError(t, err, path)
		s, err := introspect.Decode(data)
		require.NoError(t, err, path)
		query := s.Types[0]
		for _, typ := range s.Types {
			if typ.Name == "Query" {
				query = typ
			}
		}
		assert.Equal(t, "hello", query.Fields[0].Name, path)
	}

	_, err := upstream.FileLoader{Path: filepath.Join(dir, "missing.json")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.gql")
	require.NoError(t, os.WriteFile(bad, []byte(`type Query { hello: Nope }`), 0o600))
	_, err = upstream.FileLoader{Path: bad}.Load(context.Background())
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	var calls atomic.Int32
	fail := atomic.Bool{}
	loader := upstream.LoaderFunc(func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		if fail.Load() {
			return nil, errors.New("upstream down")
		}
		return []byte(minimalSchema), nil
	})

	c, err := upstream.NewCache(context.Background(), loader, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Load(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := c.Load(context.Background())
			assert.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), `{"__schema"`))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate()
	fail.Store(true)
	_, err = c.Load(context.Background())
	assert.Error(t, err)
	_, err = c.Load(context.Background())
	assert.Error(t, err, "errors are not cached")
	assert.Equal(t, int32(3), calls.Load())
}

func TestCacheCancelledCaller(t *testing.T) {
	var calls atomic.Int32
	started, release := make(chan struct{}), make(chan struct{})
	loaderErr := make(chan error, 1)
	loader := upstream.LoaderFunc(func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		close(started)
		<-release
		loaderErr <- ctx.Err()
		return []byte(minimalSchema), nil
	})

	c, err := upstream.NewCache(context.Background(), loader, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		first <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	// the load started for the first caller is still running and is shared
	second := make(chan error, 1)
	go func() {
		data, err := c.Load(context.Background())
		if err == nil {
			assert.True(t, strings.HasPrefix(string(data), `{"__schema"`))
		}
		second <- err
	}()
	close(release)
	assert.NoError(t, <-second)
	assert.NoError(t, <-loaderErr, "the shared load is not cancelled with its first caller")
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "the result was cached")
}

func TestStatic(t *testing.T) {
	data, err := upstream.Static(minimalSchema).Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, minimalSchema, string(data))
}
