// Package config defines the persistval configuration structure, its
// defaults and its validation.
//
// Configuration is read by infra/confloader, lowest priority first: the
// defaults from Default, a YAML file, PERSISTVAL_ environment variables and
// command-line flags. Verify checks the merged result.
package config
