package backends

import (
	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Open validates cfg and opens the selected engine.
func Open(cfg storage.Config, log logger.Logger) (storage.Backend, error) {
	if log == nil {
		log = logger.Default()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := openEngine(cfg, log)
	if err != nil {
		log.Error("failed to open backend", "engine", cfg.Engine, "error", err)
		return nil, err
	}

	log.Info("backend opened", "engine", b.Name(), "namespace", cfg.Namespace)
	return b, nil
}
