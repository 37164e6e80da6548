// Package command defines the persistval CLI using urfave/cli/v2.
//
//   - root.go: application, global flags, configuration loading
//   - env.go: per-run environment (config, logger, backend, output)
//   - value.go: get, set, keys, delete
//   - watch.go: follow a key until interrupted
//   - admin.go: stats, gc, backup, restore, version
//   - shell.go: interactive shell
package command
