// Package server implements an HTTP handler that prunes a schema to the queries posted to it,
// plus a websocket protocol where a client builds up the usage of a session one query at a time.
package server

// handler.go implements the handler and the HTTP (non-websocket) endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diconium/schemapruner"
	"github.com/dolmen-go/jsonmap"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Loader supplies the introspection result of the schema to prune when a request does not include one
	Loader interface {
		Load(ctx context.Context) ([]byte, error)
	}

	// Handler stores the settings used for all requests
	Handler struct {
		loader Loader
		mux    *http.ServeMux

		log            zerolog.Logger
		maxBody        int64
		readLimit      int64
		initialTimeout time.Duration
		noInlineSchema bool
	}

	// pruneRequest is decoded from the body of a POST to /prune or /usage
	pruneRequest struct {
		Queries []string            `json:"queries"`
		Schema  jsoniter.RawMessage `json:"schema,omitempty"` // introspection result, overrides the Loader
		Format  string              `json:"format,omitempty"` // "json" (default) or "sdl"
	}

	// result is the response body. As for a GraphQL response, data is null if there are errors.
	result struct {
		Data   interface{}   `json:"data"`
		Errors gqlerror.List `json:"errors,omitempty"`
	}
)

// New returns an HTTP handler with these endpoints:
//
//	POST /prune - returns the schema pruned to the posted queries
//	POST /usage - returns what the posted queries use
//	GET  /ws    - websocket protocol for a long-lived pruning session (see wshandler.go)
//
// loader may be nil, in which case every request must include its schema.
func New(loader Loader, options ...func(*Handler)) *Handler {
	h := &Handler{loader: loader, mux: http.NewServeMux()}
	h.SetOptions(options...)

	h.mux.HandleFunc("POST /prune", h.servePrune)
	h.mux.HandleFunc("POST /usage", h.serveUsage)
	h.mux.HandleFunc("GET /ws", h.serveWS)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePrune(w http.ResponseWriter, r *http.Request) {
	req, s, ok := h.start(w, r)
	if !ok {
		return
	}
	data, err := prunedData(s, req.Format)
	if err != nil {
		h.write(w, http.StatusBadRequest, result{Errors: gqlerror.List{gqlerror.Errorf("%s", err)}})
		return
	}
	h.write(w, http.StatusOK, result{Data: data})
}

func (h *Handler) serveUsage(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.start(w, r)
	if !ok {
		return
	}
	h.write(w, http.StatusOK, result{Data: jsonmap.Ordered{
		Order: []string{"usage"},
		Data:  map[string]interface{}{"usage": s.Usage()},
	}})
}

// start decodes the request, creates a session and processes the queries. If anything goes
// wrong the error response has been written and ok is false.
func (h *Handler) start(w http.ResponseWriter, r *http.Request) (req pruneRequest, s *schemapruner.Session, ok bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		h.write(w, status, result{Errors: gqlerror.List{gqlerror.Errorf("error decoding JSON request: %s", err)}})
		return
	}

	s, status, err := h.session(r.Context(), req.Schema)
	if err != nil {
		h.write(w, status, result{Errors: gqlerror.List{gqlerror.Errorf("%s", err)}})
		return
	}
	if err := s.ProcessAll(r.Context(), req.Queries); err != nil {
		h.write(w, http.StatusBadRequest, result{Errors: queryErrors(err)})
		return
	}
	h.log.Debug().Int("queries", len(req.Queries)).Str("path", r.URL.Path).Msg("request processed")
	return req, s, true
}

// session creates a pruning session for the schema in a request, or the loader's schema if
// the request has none. The returned status is for an error.
func (h *Handler) session(ctx context.Context, schema jsoniter.RawMessage) (*schemapruner.Session, int, error) {
	if len(schema) > 0 && string(schema) != "null" {
		if h.noInlineSchema {
			return nil, http.StatusForbidden, errors.New("schema may not be supplied with the request")
		}
		s, err := schemapruner.NewFromJSON(schema, schemapruner.Logger(h.log))
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid schema: %w", err)
		}
		return s, 0, nil
	}

	if h.loader == nil {
		return nil, http.StatusBadRequest, errors.New("no schema supplied")
	}
	data, err := h.loader.Load(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("loading schema")
		return nil, http.StatusBadGateway, fmt.Errorf("loading schema: %w", err)
	}
	s, err := schemapruner.NewFromJSON(data, schemapruner.Logger(h.log))
	if err != nil {
		h.log.Error().Err(err).Msg("decoding upstream schema")
		return nil, http.StatusBadGateway, fmt.Errorf("upstream schema: %w", err)
	}
	return s, 0, nil
}

// prunedData returns the "data" part of the response for a pruned schema: {"__schema": ...}
// (so the whole response is itself an introspection result) or {"sdl": "..."}
func prunedData(s *schemapruner.Session, format string) (jsonmap.Ordered, error) {
	switch format {
	case "", "json":
		return jsonmap.Ordered{
			Order: []string{"__schema"},
			Data:  map[string]interface{}{"__schema": s.Prune()},
		}, nil
	case "sdl":
		return jsonmap.Ordered{
			Order: []string{"sdl"},
			Data:  map[string]interface{}{"sdl": s.PruneSDL()},
		}, nil
	}
	return jsonmap.Ordered{}, fmt.Errorf("unknown format %q (expected json or sdl)", format)
}

// queryErrors converts an error from processing queries, keeping the position of a syntax error
// and which query of the batch it was in
func queryErrors(err error) gqlerror.List {
	e := &gqlerror.Error{Message: err.Error()}
	var parseErr *gqlerror.Error
	if errors.As(err, &parseErr) {
		e.Message = parseErr.Message
		e.Locations = parseErr.Locations
	}
	var qe *schemapruner.QueryError
	if errors.As(err, &qe) {
		e.Extensions = map[string]interface{}{"query": qe.Index}
	}
	return gqlerror.List{e}
}

func (h *Handler) write(w http.ResponseWriter, status int, r result) {
	buf, err := json.Marshal(r)
	if err != nil {
		h.log.Error().Err(err).Msg("encoding response")
		status = http.StatusInternalServerError
		buf = []byte(`{"data": null,"errors": [{"message": "error encoding JSON response"}]}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		h.log.Debug().Err(err).Msg("writing response")
	}
}
