package apc_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/apc/pkg/cache"
)

var errBackend = errors.New("backend unavailable")

// stubBackend fails every operation with err unless a hook overrides it.
type stubBackend struct {
	err     error
	exists  bool
	added   bool
	adds    atomic.Int32
	stores  atomic.Int32
	cleared []cache.Segment
}

func (s *stubBackend) Add(context.Context, string, string, time.Duration) (bool, error) {
	s.adds.Add(1)
	return s.added, s.err
}

func (s *stubBackend) Store(context.Context, string, string, time.Duration) error {
	s.stores.Add(1)
	return s.err
}

func (s *stubBackend) Exists(context.Context, string) (bool, error) {
	return s.exists, s.err
}

func (s *stubBackend) Fetch(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "", cache.ErrNotFound
}

func (s *stubBackend) Delete(context.Context, string) error {
	return s.err
}

func (s *stubBackend) Clear(_ context.Context, seg cache.Segment) error {
	s.cleared = append(s.cleared, seg)
	return s.err
}

func (s *stubBackend) Close() error { return nil }
