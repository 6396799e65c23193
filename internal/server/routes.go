package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/pkg/cache"
	"github.com/dmitrymomot/apc/pkg/health"
)

// maxBodySize caps PUT payloads.
const maxBodySize = 1 << 20

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(timeout(s.cfg.RequestTimeout))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", s.checker.ReadinessHandler())

	r.Get("/entries/{key}", s.getEntry)
	r.Head("/entries/{key}", s.headEntry)
	r.Put("/entries/{key}", s.putEntry)
	r.Delete("/entries/{key}", s.deleteEntry)
	r.Post("/clear/{scope}", s.clear)

	return r
}

// entryResponse is the GET /entries/{key} body.
type entryResponse struct {
	Key   string `json:"key"`
	ID    string `json:"id"`
	Value any    `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// entry binds the {key} path parameter to the backend. A PUT carries the
// TTL in ?ttl=; reads and deletes ignore TTL.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*apc.Entry[backend.Value], bool) {
	key, err := keyParam(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return nil, false
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" && r.Method == http.MethodPut {
		if ttl, err = apc.ParseTTL(raw); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return nil, false
		}
	}

	e, err := apc.New(s.handle.Backend, key, ttl, apc.WithLogger(s.log))
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return nil, false
	}
	return e, true
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "text" {
		out, err := e.Render(r.Context())
		if err != nil {
			s.fail(w, r, statusFor(err), err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, out)
		return
	}

	v, err := e.Get(r.Context())
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}

	key, _ := keyParam(r)
	writeJSON(w, http.StatusOK, entryResponse{Key: key, ID: e.ID(), Value: v})
}

func (s *Server) headEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	exists, err := e.Exists(r.Context())
	switch {
	case err != nil:
		s.log.ErrorContext(r.Context(), "exists check failed", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	case exists:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) putEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var v any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&v); err != nil {
		s.fail(w, r, http.StatusBadRequest, errors.Join(apc.ErrInvalidArgument, err))
		return
	}

	if err := e.Set(r.Context(), v); err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	if err := e.Delete(r.Context()); err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	if err := apc.Clear(r.Context(), s.handle.Backend, scope, s.clearOptions()...); err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.log.InfoContext(r.Context(), "cache cleared", slog.String("scope", scope))
	w.WriteHeader(http.StatusNoContent)
}

// keyParam returns the decoded {key}. chi matches on the raw path when the
// request has escapes, so the parameter is unescaped only then.
func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	unescaped, err := url.PathUnescape(key)
	if err != nil {
		return "", errors.Join(apc.ErrInvalidArgument, err)
	}
	return unescaped, nil
}

// statusFor maps package errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apc.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, cache.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
