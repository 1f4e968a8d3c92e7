package kv

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/go-kv-crud/internal/metrics"
	"github.com/deppfellow/go-kv-crud/internal/storeerr"
)

var _ Store = (*InstrumentedStore)(nil)

// InstrumentedStore decorates a Store with Prometheus metrics and a slow
// operation log.
type InstrumentedStore struct {
	next    Store
	driver  string
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	slow    time.Duration
}

// Instrument wraps store. A nil metrics or logger disables that half; a
// zero slow threshold disables the slow operation warning.
func Instrument(store Store, driver string, m *metrics.Metrics, logger *zerolog.Logger, slow time.Duration) *InstrumentedStore {
	return &InstrumentedStore{
		next:    store,
		driver:  driver,
		metrics: m,
		logger:  logger,
		slow:    slow,
	}
}

// Unwrap returns the decorated store.
func (s *InstrumentedStore) Unwrap() Store {
	return s.next
}

// Get implements Store.
func (s *InstrumentedStore) Get(ctx context.Context, key Key) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.observe(ctx, "get", key.String(), start, err)
	return value, err
}

// Set implements Store.
func (s *InstrumentedStore) Set(ctx context.Context, key Key, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe(ctx, "set", key.String(), start, err)
	return err
}

// Delete implements Store.
func (s *InstrumentedStore) Delete(ctx context.Context, key Key) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe(ctx, "delete", key.String(), start, err)
	return err
}

// List implements Store. The logged key is the encoded prefix.
func (s *InstrumentedStore) List(ctx context.Context, prefix Key) ([]Entry, error) {
	start := time.Now()
	entries, err := s.next.List(ctx, prefix)
	s.observe(ctx, "list", prefix.Prefix(), start, err)
	return entries, err
}

// Ping implements Store.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe(ctx, "ping", "", start, err)
	return err
}

// Close closes the wrapped store. Nothing is recorded.
func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}

// observe prefers the request logger carried by ctx so log lines keep the
// request id.
func (s *InstrumentedStore) observe(ctx context.Context, op, key string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := storeerr.Classify(err)

	s.metrics.ObserveStore(s.driver, op, string(outcome), elapsed)

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = s.logger
	}
	if logger == nil {
		return
	}

	if s.slow > 0 && elapsed >= s.slow {
		logger.Warn().
			Str("driver", s.driver).
			Str("operation", op).
			Str("key", key).
			Dur("duration", elapsed).
			Msg("slow store operation")
	}

	if outcome != storeerr.OK && outcome != storeerr.NotFound {
		logger.Debug().
			Err(err).
			Str("driver", s.driver).
			Str("operation", op).
			Str("outcome", string(outcome)).
			Msg("store operation failed")
	}
}
