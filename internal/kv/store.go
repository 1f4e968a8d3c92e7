// Package kv is the key-value persistence layer.
//
// Every backend implements Store: atomic single-key get, set and delete,
// plus an ordered prefix scan. Keys are hierarchical; the first part is
// the resource namespace and the second the item id.
package kv

import (
	"context"
	"strings"

	"github.com/deppfellow/go-kv-crud/internal/storeerr"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = storeerr.ErrNotFound

// Separator joins key parts in the encoded form.
const Separator = ":"

// Key addresses a value, e.g. Key{"tasks", "6f1c..."}.
type Key []string

// String returns the encoded key ("tasks:6f1c...").
func (k Key) String() string {
	return strings.Join(k, Separator)
}

// Prefix returns the encoded form used to scan everything below k.
// The trailing separator keeps "tasks" from matching "tasksarchive:...".
func (k Key) Prefix() string {
	return k.String() + Separator
}

// Entry is one key-value pair returned by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the capability handed to the rest of the application.
//
// Implementations must be safe for concurrent use. Each method touches
// a single key (List reads many but makes no consistency promise across
// them).
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set writes value at key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// List returns every entry below prefix in ascending key order.
	List(ctx context.Context, prefix Key) ([]Entry, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources the store owns.
	Close() error
}
