package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5 * time.Second)
	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func recordHooks(h *Handler, n int) *[]int {
	var mu sync.Mutex
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		i := i
		h.OnShutdown(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	return &order
}

func TestHandler_Wait_Trigger(t *testing.T) {
	h := NewHandler(5 * time.Second)
	order := recordHooks(h, 3)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	h.Trigger()
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return")
	}

	want := []int{3, 2, 1}
	if len(*order) != 3 {
		t.Fatalf("hooks ran %v, want %v", *order, want)
	}
	for i := range want {
		if (*order)[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, (*order)[i], want[i])
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait")
	}
}

func TestHandler_Wait_Context(t *testing.T) {
	h := NewHandler(time.Second)
	order := recordHooks(h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Wait(ctx); err != nil {
		t.Errorf("Wait() = %v", err)
	}
	if len(*order) != 1 {
		t.Errorf("hooks ran %d times, want 1", len(*order))
	}
}

func TestHandler_Wait_Signal(t *testing.T) {
	h := NewHandler(5 * time.Second)
	order := recordHooks(h, 2)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install the signal handler.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return after SIGINT")
	}
	if len(*order) != 2 {
		t.Errorf("hooks ran %d times, want 2", len(*order))
	}
}

func TestHandler_Wait_HookErrors(t *testing.T) {
	h := NewHandler(time.Second)
	errA := errors.New("a")
	errB := errors.New("b")
	h.OnShutdown(func(context.Context) error { return errA })
	h.OnShutdown(func(context.Context) error { return nil })
	h.OnShutdown(func(context.Context) error { return errB })

	h.Trigger()
	err := h.Wait(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() = %v, want both hook errors", err)
	}
}

func TestHandler_HookTimeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger()
	if err := h.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
}
