// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return store.Close() })
//	err := h.Wait(ctx) // SIGINT, SIGTERM, Trigger or ctx cancellation
package shutdown
