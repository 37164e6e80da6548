//go:build js

package backends

import (
	"fmt"

	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/storage/memory"
	"github.com/yndnr/persistval/internal/storage/webstorage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Engines lists the engine names this build can open. The on-disk engines
// need a filesystem and mmap, which a browser does not have.
var Engines = []string{"memory", "webstorage"}

func openEngine(cfg storage.Config, log logger.Logger) (storage.Backend, error) {
	switch cfg.Engine {
	case "memory":
		return memory.New(memory.WithQuota(cfg.QuotaBytes)), nil
	case "webstorage":
		return webstorage.Open(cfg.Namespace)
	}
	return nil, fmt.Errorf("storage: engine %q is not available in the browser", cfg.Engine)
}
