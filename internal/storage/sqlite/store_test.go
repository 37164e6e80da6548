package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/persistval/internal/storage"
)

func openTestStore(t *testing.T, dir, namespace string) *Store {
	t.Helper()
	s, err := Open(dir, namespace)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresDir(t *testing.T) {
	if _, err := Open("  ", "default"); err == nil {
		t.Error("Open() with blank dir should fail")
	}
	if _, err := OpenPath("", "default"); err == nil {
		t.Error("OpenPath() with blank path should fail")
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	s := openTestStore(t, t.TempDir(), "default")
	ctx := context.Background()

	if _, err := s.Get(ctx, "theme"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("Get() = %v, want ErrKeyNotFound", err)
	}
	if err := s.Set(ctx, "theme", []byte(`"dark"`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "theme", []byte(`"light"`)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "theme")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `"light"` {
		t.Errorf("Get() = %s, want \"light\"", got)
	}

	if err := s.Delete(ctx, "theme"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "theme"); err != nil {
		t.Errorf("Delete() of absent key = %v", err)
	}
	if _, err := s.Get(ctx, "theme"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get() after Delete = %v", err)
	}
	if err := s.Set(ctx, "", nil); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("Set(\"\") = %v, want ErrEmptyKey", err)
	}
}

func TestStore_EmptyValue(t *testing.T) {
	s := openTestStore(t, t.TempDir(), "default")
	ctx := context.Background()

	if err := s.Set(ctx, "empty", nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Get() = %v, want empty non-nil slice", got)
	}
}

func TestStore_KeysAndNamespaces(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	a := openTestStore(t, dir, "a")
	b := openTestStore(t, dir, "b")

	for _, k := range []string{"app.b", "app.a", "other", "app%"} {
		if err := a.Set(ctx, k, []byte("1")); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Set(ctx, "app.c", []byte("1")); err != nil {
		t.Fatal(err)
	}

	keys, err := a.Keys(ctx, "app.")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "app.a" || keys[1] != "app.b" {
		t.Errorf("Keys(app.) = %v, want [app.a app.b]", keys)
	}

	all, err := a.Keys(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("Keys(\"\") = %v, want 4 keys", all)
	}

	if _, err := b.Get(ctx, "other"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("namespace b sees key from a: %v", err)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, "default")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "count", []byte("3")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openTestStore(t, dir, "default")
	got, err := reopened.Get(ctx, "count")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "3" {
		t.Errorf("Get() = %s, want 3", got)
	}
}

func TestStore_Stats(t *testing.T) {
	s := openTestStore(t, t.TempDir(), "default")
	ctx := context.Background()

	if err := s.Set(ctx, "ab", []byte("123")); err != nil {
		t.Fatal(err)
	}
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Keys != 1 || st.Bytes != 5 {
		t.Errorf("Stats() = %+v, want 1 key and 5 bytes", st)
	}
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(t.TempDir(), "default")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Get() after Close = %v, want ErrClosed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	live := openTestStore(t, t.TempDir(), "default")
	if err := live.Set(ctx, "k", []byte("1")); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() with canceled ctx = %v", err)
	}
}
