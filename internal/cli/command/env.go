package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/codec"
	"github.com/yndnr/persistval/internal/config"
	"github.com/yndnr/persistval/internal/cli/output"
	"github.com/yndnr/persistval/internal/persist"
	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/storage/badgerstore"
	"github.com/yndnr/persistval/internal/storage/backends"
	"github.com/yndnr/persistval/internal/telemetry/logger"
	"github.com/yndnr/persistval/internal/telemetry/metric"
	"github.com/yndnr/persistval/pkg/crypto/adaptive"
)

const envKey = "env"

// Env is the state shared by the commands of one run, or of one shell
// session.
type Env struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metric.Registry
	Format  output.Format

	mu      sync.Mutex
	backend storage.Backend
	cipher  adaptive.Cipher

	metricsOnce sync.Once
}

func newEnv(cfg *config.Config, log logger.Logger, format string) (*Env, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:  cfg,
		Logger:  log,
		Metrics: metric.NewRegistry(),
		Format:  f,
	}, nil
}

func getEnv(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, errors.New("command environment is not initialized")
}

// Backend opens the configured backend on first use.
func (e *Env) Backend() (storage.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend != nil {
		return e.backend, nil
	}
	b, err := backends.Open(e.Config.Storage, e.Logger)
	if err != nil {
		return nil, err
	}
	e.backend = b
	return b, nil
}

// Codec returns the codec for key, sealed when a passphrase is configured.
func (e *Env) Codec(key string) (codec.Codec, error) {
	base, err := codec.ByName(e.Config.Codec.Name)
	if err != nil {
		return nil, err
	}
	if e.Config.Codec.Passphrase == "" {
		return base, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cipher == nil {
		c, err := adaptive.New(adaptive.DeriveKey(e.Config.Codec.Passphrase, []byte(e.Config.Codec.Salt)))
		if err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
		e.cipher = c
	}
	return codec.Sealed(base, e.cipher, key), nil
}

// StoreOptions returns persist options matching the configuration.
func (e *Env) StoreOptions(key string) ([]persist.Option, error) {
	c, err := e.Codec(key)
	if err != nil {
		return nil, err
	}
	opts := []persist.Option{
		persist.WithCodec(c),
		persist.WithLogger(e.Logger),
		persist.WithMetrics(e.Metrics),
	}
	if !e.Config.Store.FalsyFallback {
		opts = append(opts, persist.WithPresenceCheck())
	}
	if e.Config.Store.CorruptFallback {
		opts = append(opts, persist.WithCorruptFallback())
	}
	return opts, nil
}

// Print writes data in the selected output format. A per-command
// --output overrides the session format.
func (e *Env) Print(c *cli.Context, data any) error {
	format := e.Format
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		format = f
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

// registerBackendMetrics exposes backend size through the metrics
// registry. Only the first call registers.
func (e *Env) registerBackendMetrics(b storage.Backend) {
	e.metricsOnce.Do(func() {
		if st, ok := b.(storage.Statser); ok {
			e.Metrics.MustRegister(metric.NewBackendCollector(b.Name(),
				func(ctx context.Context) (uint64, uint64, error) {
					s, err := st.Stats(ctx)
					if err != nil {
						return 0, 0, err
					}
					return s.Keys, s.Bytes, nil
				}))
		}
		if be, ok := b.(*badgerstore.Engine); ok {
			be.RegisterMetrics(e.Metrics.Prometheus())
		}
	})
}

// Close closes the backend if it was opened.
func (e *Env) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return nil
	}
	err := e.backend.Close()
	e.backend = nil
	return err
}

// commandLogger returns the run's logger tagged with the command name.
func commandLogger(c *cli.Context) logger.Logger {
	return logger.L(logger.WithCommand(c.Context, c.Command.Name))
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}
