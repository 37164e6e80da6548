package metric

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()

	r.ObserveRead("memory", ResultOK)
	r.ObserveRead("memory", ResultAbsent)
	r.ObserveRead("memory", ResultAbsent)
	r.ObserveWrite("memory", nil, time.Millisecond)
	r.ObserveWrite("memory", errors.New("quota"), time.Millisecond)
	r.ObserveRehydration(SourceOpen)

	if got := testutil.ToFloat64(r.Reads.WithLabelValues("memory", ResultAbsent)); got != 2 {
		t.Errorf("absent reads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.Writes.WithLabelValues("memory", ResultError)); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Rehydrations.WithLabelValues(SourceOpen)); got != 1 {
		t.Errorf("rehydrations = %v, want 1", got)
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	r.ObserveRead("memory", ResultOK)
	r.ObserveWrite("memory", nil, 0)
	r.ObserveRehydration(SourceExternal)
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveWrite("sqlite", nil, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		"persistval_store_writes_total",
		"persistval_store_write_duration_seconds",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestBackendCollector(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewBackendCollector("memory", func(context.Context) (uint64, uint64, error) {
		return 3, 42, nil
	}))

	expected := `
# HELP persistval_backend_keys Number of keys held by the backend
# TYPE persistval_backend_keys gauge
persistval_backend_keys{engine="memory"} 3
# HELP persistval_backend_size_bytes Bytes held by the backend
# TYPE persistval_backend_size_bytes gauge
persistval_backend_size_bytes{engine="memory"} 42
# HELP persistval_backend_up Whether the last stats call succeeded
# TYPE persistval_backend_up gauge
persistval_backend_up{engine="memory"} 1
`
	if err := testutil.GatherAndCompare(r.Prometheus(), strings.NewReader(expected),
		"persistval_backend_keys", "persistval_backend_size_bytes", "persistval_backend_up"); err != nil {
		t.Error(err)
	}
}

func TestBackendCollector_Down(t *testing.T) {
	c := NewBackendCollector("badger", func(context.Context) (uint64, uint64, error) {
		return 0, 0, errors.New("closed")
	})

	if got := testutil.CollectAndCount(c); got != 1 {
		t.Errorf("collected %d metrics, want only the up gauge", got)
	}
}
