package storeerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/deppfellow/go-kv-crud/internal/errs"
)

type sqliteError struct{ code int }

func (e *sqliteError) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e *sqliteError) Code() int     { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"not found", fmt.Errorf("get tasks:1: %w", ErrNotFound), NotFound},
		{"redis nil", redis.Nil, NotFound},
		{"deadline", context.DeadlineExceeded, Timeout},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), Canceled},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, Unavailable},
		{"pg statement timeout", &pgconn.PgError{Code: "57014"}, Timeout},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, Other},
		{"sqlite busy", &sqliteError{code: 5}, Timeout},
		{"sqlite extended locked", &sqliteError{code: 6 | (1 << 8)}, Timeout},
		{"sqlite constraint", &sqliteError{code: 19}, Other},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, Unavailable},
		{"redis closed", redis.ErrClosed, Unavailable},
		{"unknown", errors.New("boom"), Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"passthrough", errs.NewBadRequestError("bad", nil, nil), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			if !errors.As(HandleError(tt.err), &httpErr) {
				t.Fatal("expected an HTTPError")
			}
			if httpErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, httpErr.Status)
			}
		})
	}
}
