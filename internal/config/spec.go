package config

import "github.com/yndnr/persistval/internal/storage"

// Config is the root configuration.
type Config struct {
	Storage storage.Config `koanf:"storage"`
	Codec   CodecSection   `koanf:"codec"`
	Store   StoreSection   `koanf:"store"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// CodecSection selects how values are serialized.
type CodecSection struct {
	// Name is "json", "cbor" or "yaml".
	Name string `koanf:"name"`

	// Passphrase enables sealed values when non-empty. The encryption key
	// is derived from Passphrase and Salt with argon2id.
	Passphrase string `koanf:"passphrase"`
	Salt       string `koanf:"salt"`
}

// StoreSection sets rehydration policies.
type StoreSection struct {
	// FalsyFallback treats stored false, 0, "" and null as absent.
	FalsyFallback bool `koanf:"falsy_fallback"`

	// CorruptFallback uses the initial value instead of failing when the
	// stored bytes cannot be decoded.
	CorruptFallback bool `koanf:"corrupt_fallback"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string `koanf:"addr"`
}
