package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Engine != DefaultEngine {
		t.Errorf("Storage.Engine = %q, want %q", cfg.Storage.Engine, DefaultEngine)
	}
	if cfg.Storage.Namespace != DefaultNamespace {
		t.Errorf("Storage.Namespace = %q, want %q", cfg.Storage.Namespace, DefaultNamespace)
	}
	if cfg.Storage.Dir == "" {
		t.Error("Storage.Dir should not be empty")
	}
	if cfg.Codec.Name != DefaultCodec {
		t.Errorf("Codec.Name = %q, want %q", cfg.Codec.Name, DefaultCodec)
	}
	if !cfg.Store.FalsyFallback {
		t.Error("FalsyFallback should be on by default")
	}
	if cfg.Store.CorruptFallback {
		t.Error("CorruptFallback should be off by default")
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown engine", func(c *Config) { c.Storage.Engine = "redis" }, "unknown engine"},
		{"missing dir", func(c *Config) { c.Storage.Dir = "" }, "dir is required"},
		{"memory needs no dir", func(c *Config) { c.Storage.Engine = "memory"; c.Storage.Dir = "" }, ""},
		{"unknown codec", func(c *Config) { c.Codec.Name = "xml" }, "codec.name"},
		{"short salt", func(c *Config) { c.Codec.Passphrase = "pw"; c.Codec.Salt = "abc" }, "codec.salt"},
		{"passphrase with salt", func(c *Config) { c.Codec.Passphrase = "pw" }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "nohostport" }, "metrics.addr"},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = "127.0.0.1:9090" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	if err := Verify(nil); err == nil {
		t.Error("Verify(nil) should fail")
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Codec.Passphrase = "correct-horse-battery"

	sanitized := Sanitize(cfg)
	if cfg.Codec.Passphrase != "correct-horse-battery" {
		t.Error("original config should not be modified")
	}
	if sanitized.Codec.Passphrase == cfg.Codec.Passphrase {
		t.Error("passphrase should be masked")
	}
	if len(sanitized.Codec.Passphrase) != len(cfg.Codec.Passphrase) {
		t.Errorf("masked length = %d, want %d", len(sanitized.Codec.Passphrase), len(cfg.Codec.Passphrase))
	}

	short := Default()
	short.Codec.Passphrase = "abc"
	if got := Sanitize(short).Codec.Passphrase; got != "****" {
		t.Errorf("short passphrase masked as %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persistval.yaml")
	content := `
storage:
  engine: sqlite
  dir: ` + dir + `
store:
  falsy_fallback: false
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PERSISTVAL_CODEC__NAME", "cbor")

	cfg, err := Load(path, map[string]any{"storage.namespace": "app"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Engine != "sqlite" || cfg.Storage.Dir != dir {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Namespace != "app" {
		t.Errorf("Namespace = %q, want app", cfg.Storage.Namespace)
	}
	if cfg.Store.FalsyFallback {
		t.Error("FalsyFallback should be false from file")
	}
	if cfg.Codec.Name != "cbor" {
		t.Errorf("Codec.Name = %q, want cbor from env", cfg.Codec.Name)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, default lost", cfg.Log.Format)
	}
	if cfg.Storage.Badger.GCInterval != "10m" {
		t.Errorf("Badger.GCInterval = %q, default lost", cfg.Storage.Badger.GCInterval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load("", map[string]any{"storage.engine": "redis"}); err == nil {
		t.Error("Load() should fail verification")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
