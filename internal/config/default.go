package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/persistval/internal/storage"
)

// Default configuration values.
const (
	DefaultEngine    = "file"
	DefaultNamespace = "default"
	DefaultCodec     = "json"
	DefaultSalt      = "persistval.v1"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultDataDir returns ~/.persistval, or .persistval when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".persistval"
	}
	return filepath.Join(home, ".persistval")
}

// Default returns the default configuration.
func Default() *Config {
	st := storage.DefaultConfig(DefaultDataDir())
	st.Engine = DefaultEngine
	st.Namespace = DefaultNamespace

	return &Config{
		Storage: st,
		Codec: CodecSection{
			Name: DefaultCodec,
			Salt: DefaultSalt,
		},
		Store: StoreSection{
			FalsyFallback: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
