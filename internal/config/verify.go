package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/persistval/internal/codec"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Storage.Validate(); err != nil {
		return err
	}
	if err := verifyCodec(&cfg.Codec); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
	}
	return nil
}

func verifyCodec(cfg *CodecSection) error {
	if _, err := codec.ByName(cfg.Name); err != nil {
		return fmt.Errorf("codec.name: %w", err)
	}
	if cfg.Passphrase != "" && len(cfg.Salt) < 8 {
		return errors.New("codec.salt must be at least 8 bytes when codec.passphrase is set")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}
