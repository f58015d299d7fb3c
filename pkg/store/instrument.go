package store

import (
	"context"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/observability"
)

// instrumented reports every call to the store hooks and retries calls that
// fail with a retryable error.
type instrumented struct {
	inner   Store
	backend string
}

// Instrument wraps s so its operations are retried with backoff and reported
// to observability.Store() under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{inner: s, backend: backend}
}

func (s *instrumented) retry(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, fn, func(attempt int, err error) {
		observability.Store().OnStoreRetry(ctx, s.backend, attempt, err)
	})
}

func (s *instrumented) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	var snap Snapshot
	err := s.retry(ctx, func() error {
		var err error
		snap, err = s.inner.Put(ctx, name, data)
		return err
	})
	if err == nil {
		observability.Store().OnStorePut(ctx, s.backend, len(data))
	}
	return snap, err
}

func (s *instrumented) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	var (
		snap Snapshot
		data []byte
	)
	err := s.retry(ctx, func() error {
		var err error
		snap, data, err = s.inner.Get(ctx, name)
		return err
	})
	switch {
	case err == nil:
		observability.Store().OnStoreHit(ctx, s.backend, len(data))
	case errors.Is(err, errors.ErrCodeNotFound):
		observability.Store().OnStoreMiss(ctx, s.backend)
	}
	return snap, data, err
}

func (s *instrumented) List(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	err := s.retry(ctx, func() error {
		var err error
		out, err = s.inner.List(ctx)
		return err
	})
	return out, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	return s.retry(ctx, func() error { return s.inner.Delete(ctx, name) })
}

func (s *instrumented) Close() error { return s.inner.Close() }
