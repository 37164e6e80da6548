// Package buildinfo exposes version information injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/persistval/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/persistval/internal/infra/buildinfo.Commit=abc123"
//
// Fields left unset are filled from runtime/debug build information when
// the binary carries it.
package buildinfo
