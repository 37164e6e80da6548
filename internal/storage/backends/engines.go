//go:build !js

package backends

import (
	"fmt"
	"path/filepath"

	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/storage/badgerstore"
	"github.com/yndnr/persistval/internal/storage/filestore"
	"github.com/yndnr/persistval/internal/storage/memory"
	"github.com/yndnr/persistval/internal/storage/sqlite"
	"github.com/yndnr/persistval/internal/storage/webstorage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Engines lists the engine names this build can open.
var Engines = []string{"memory", "badger", "sqlite", "file", "webstorage"}

func openEngine(cfg storage.Config, log logger.Logger) (storage.Backend, error) {
	switch cfg.Engine {
	case "memory":
		return memory.New(memory.WithQuota(cfg.QuotaBytes)), nil
	case "badger":
		bcfg := cfg
		bcfg.Dir = filepath.Join(cfg.Dir, "badger", cfg.Namespace)
		return badgerstore.New(bcfg, log)
	case "sqlite":
		return sqlite.Open(cfg.Dir, cfg.Namespace)
	case "file":
		return filestore.Open(cfg.Dir, cfg.Namespace, log)
	case "webstorage":
		return webstorage.Open(cfg.Namespace)
	}
	return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
}
