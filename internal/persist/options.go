package persist

import (
	"github.com/yndnr/persistval/internal/codec"
	"github.com/yndnr/persistval/internal/telemetry/logger"
	"github.com/yndnr/persistval/internal/telemetry/metric"
)

// Policy decides which stored values replace the initial value.
type Policy int

const (
	// FalsyFallback treats falsy stored values as absent.
	FalsyFallback Policy = iota
	// PresenceCheck keeps any stored value that decodes.
	PresenceCheck
)

func (p Policy) String() string {
	switch p {
	case FalsyFallback:
		return "falsy-fallback"
	case PresenceCheck:
		return "presence-check"
	default:
		return "unknown"
	}
}

type options struct {
	codec           codec.Codec
	policy          Policy
	corruptFallback bool
	sync            bool
	logger          logger.Logger
	metrics         *metric.Registry
}

func defaultOptions() options {
	return options{
		codec:  codec.JSON,
		policy: FalsyFallback,
		logger: logger.Default(),
	}
}

// Option configures a Store.
type Option func(*options)

// WithCodec sets the codec. Default: codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithPresenceCheck keeps any stored value that decodes, including false,
// 0 and "".
func WithPresenceCheck() Option {
	return func(o *options) {
		o.policy = PresenceCheck
	}
}

// WithPolicy sets the rehydration policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithCorruptFallback makes Open log and use the initial value when the
// stored bytes cannot be decoded, instead of failing.
func WithCorruptFallback() Option {
	return func(o *options) {
		o.corruptFallback = true
	}
}

// WithSync applies writes made to the key by other handles or processes,
// when the backend implements storage.Notifier.
func WithSync() Option {
	return func(o *options) {
		o.sync = true
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records reads, writes and rehydrations in r.
func WithMetrics(r *metric.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}
