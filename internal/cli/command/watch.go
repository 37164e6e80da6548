package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/infra/shutdown"
	"github.com/yndnr/persistval/internal/persist"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Print a value every time it changes",
		ArgsUsage: "KEY",
		Description: "Opens the store with cross-handle sync and prints the current value,\n" +
			"then every value written by other handles or processes. Stops on\n" +
			"SIGINT or SIGTERM, or after --count values.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "initial",
				Usage: "initial value as JSON",
				Value: "null",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "stop after printing `N` values (0 = no limit)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve Prometheus metrics on `ADDR` while watching",
			},
		},
		Action: watchValue,
	}
}

func watchValue(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: watch KEY")
	}
	key := c.Args().First()

	env, err := getEnv(c)
	if err != nil {
		return err
	}
	initial, err := parseJSON(c.String("initial"))
	if err != nil {
		return err
	}

	s, err := openStore(c, env, key, initial, persist.WithSync())
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(5 * time.Second)
	h.OnShutdown(func(context.Context) error { return s.Close() })

	addr := c.String("metrics-addr")
	if addr == "" {
		addr = env.Config.Metrics.Addr
	}
	if addr != "" {
		srv, err := serveMetrics(env, addr)
		if err != nil {
			s.Close()
			return err
		}
		h.OnShutdown(srv.Shutdown)
	}

	limit := c.Int("count")
	printed := 0
	// Subscribers run one at a time, so printed needs no lock.
	unsubscribe := s.Subscribe(func(v any) {
		if err := env.Print(c, v); err != nil {
			commandLogger(c).Warn("print failed", "key", key, "error", err)
		}
		printed++
		if limit > 0 && printed >= limit {
			h.Trigger()
		}
	})
	h.OnShutdown(func(context.Context) error {
		unsubscribe()
		return nil
	})

	return h.Wait(c.Context)
}

func serveMetrics(env *Env, addr string) (*http.Server, error) {
	b, err := env.Backend()
	if err != nil {
		return nil, err
	}
	env.registerBackendMetrics(b)

	mux := http.NewServeMux()
	mux.Handle("/metrics", env.Metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	env.Logger.Info("serving metrics", "addr", addr)
	return srv, nil
}
