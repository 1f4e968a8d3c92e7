// Package storeerr classifies key-value backend errors.
//
// Each driver (redis, postgres, sqlite) fails in its own vocabulary. This
// package maps those failures onto a small set of codes that metrics can
// label with and that the HTTP layer can turn into a status.
package storeerr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by every store when a key does not exist.
var ErrNotFound = errors.New("key not found")

// Code is a driver-independent failure category.
type Code string

const (
	OK          Code = "ok"
	NotFound    Code = "not_found"
	Timeout     Code = "timeout"
	Canceled    Code = "canceled"
	Unavailable Code = "unavailable"
	Other       Code = "error"
)

// sqlite result codes (primary code is the low byte of the extended code).
const (
	sqliteBusy   = 5
	sqliteLocked = 6
	sqliteIOErr  = 10
	sqliteFull   = 13
)

// Classify reports the Code for err. A nil error is OK.
func Classify(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrNotFound), errors.Is(err, redis.Nil):
		return NotFound
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Canceled
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapSQLState(pgErr.Code)
	}

	// modernc.org/sqlite errors expose the result code this way.
	var sqliteErr interface{ Code() int }
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return Timeout
		case sqliteIOErr, sqliteFull:
			return Unavailable
		}
		return Other
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Timeout
		}
		return Unavailable
	}

	if errors.Is(err, redis.ErrClosed) || pgconn.SafeToRetry(err) {
		return Unavailable
	}

	return Other
}

// MapSQLState maps a Postgres SQLSTATE to a Code.
//
// Class 08 is connection failure, 53 insufficient resources, 57 operator
// intervention (57014 is a cancelled statement, usually a timeout).
func MapSQLState(state string) Code {
	switch {
	case state == "57014":
		return Timeout
	case strings.HasPrefix(state, "08"),
		strings.HasPrefix(state, "53"),
		strings.HasPrefix(state, "57"):
		return Unavailable
	default:
		return Other
	}
}
