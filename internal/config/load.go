package config

import (
	"github.com/yndnr/persistval/internal/infra/confloader"
)

// Load merges defaults, the optional file at path, environment variables
// and overrides, then verifies the result. An empty path skips the file.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
