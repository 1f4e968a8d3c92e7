package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// testStore runs the behavior every backend must share.
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), Key{"tasks", "missing"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := Key{"tasks", "a"}

		if err := s.Set(ctx, key, []byte(`{"id":"a"}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, []byte(`{"id":"a"}`)) {
			t.Errorf("unexpected value %s", got)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := Key{"tasks", "a"}

		_ = s.Set(ctx, key, []byte(`{"v":1}`))
		if err := s.Set(ctx, key, []byte(`{"v":2}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, _ := s.Get(ctx, key)
		if !bytes.Equal(got, []byte(`{"v":2}`)) {
			t.Errorf("expected last write to win, got %s", got)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := Key{"tasks", "a"}

		_ = s.Set(ctx, key, []byte(`{}`))
		for i := 0; i < 2; i++ {
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete #%d failed: %v", i+1, err)
			}
		}
		if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected key to be gone, got %v", err)
		}
	})

	t.Run("list is ordered and scoped to the prefix", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, k := range []Key{
			{"tasks", "c"},
			{"tasks", "a"},
			{"tasks", "b"},
			{"todos", "a"},
			{"tasksarchive", "z"},
		} {
			if err := s.Set(ctx, k, []byte(fmt.Sprintf(`{"k":%q}`, k.String()))); err != nil {
				t.Fatalf("Set %s failed: %v", k, err)
			}
		}

		entries, err := s.List(ctx, Key{"tasks"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []string{"tasks:a", "tasks:b", "tasks:c"}
		if len(entries) != len(want) {
			t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
		}
		for i, e := range entries {
			if e.Key != want[i] {
				t.Errorf("entry %d: expected key %s, got %s", i, want[i], e.Key)
			}
			if !bytes.Equal(e.Value, []byte(fmt.Sprintf(`{"k":%q}`, want[i]))) {
				t.Errorf("entry %d: unexpected value %s", i, e.Value)
			}
		}
	})

	t.Run("list of empty namespace is empty not nil", func(t *testing.T) {
		s := newStore(t)
		entries, err := s.List(context.Background(), Key{"nothing"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if entries == nil || len(entries) != 0 {
			t.Errorf("expected empty slice, got %#v", entries)
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := Key{"tasks", fmt.Sprintf("%02d", i)}
				if err := s.Set(ctx, key, []byte(`{}`)); err != nil {
					t.Errorf("Set %s failed: %v", key, err)
				}
			}(i)
		}
		wg.Wait()

		entries, err := s.List(ctx, Key{"tasks"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 16 {
			t.Errorf("expected 16 entries, got %d", len(entries))
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestKey(t *testing.T) {
	k := Key{"tasks", "123"}
	if k.String() != "tasks:123" {
		t.Errorf("unexpected encoding %q", k.String())
	}
	if (Key{"tasks"}).Prefix() != "tasks:" {
		t.Errorf("unexpected prefix %q", Key{"tasks"}.Prefix())
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")

	_ = s.Set(ctx, Key{"k"}, value)
	value[0] = 'x'

	got, _ := s.Get(ctx, Key{"k"})
	if string(got) != "abc" {
		t.Errorf("stored value changed with caller's slice: %s", got)
	}
	got[1] = 'y'
	again, _ := s.Get(ctx, Key{"k"})
	if string(again) != "abc" {
		t.Errorf("stored value changed with returned slice: %s", again)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, Key{"k"}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected no writes, got %d keys", s.Len())
	}
}
