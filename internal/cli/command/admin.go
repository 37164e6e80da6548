package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/infra/buildinfo"
	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/storage/badgerstore"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show backend statistics",
		Action: showStats,
	}
}

// GCCommand returns the gc command.
func GCCommand() *cli.Command {
	return &cli.Command{
		Name:   "gc",
		Usage:  "Run value-log garbage collection (badger)",
		Action: runGC,
	}
}

// BackupCommand returns the backup command.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:      "backup",
		Usage:     "Write a full backup to FILE (badger)",
		ArgsUsage: "FILE",
		Action:    backup,
	}
}

// RestoreCommand returns the restore command.
func RestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Load a backup written by the backup command (badger)",
		ArgsUsage: "FILE",
		Action:    restore,
	}
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			env, err := getEnv(c)
			if err != nil {
				return err
			}
			return env.Print(c, buildinfo.Get())
		},
	}
}

type statsView struct {
	Engine       string `json:"engine" yaml:"engine"`
	Keys         uint64 `json:"keys" yaml:"keys"`
	Bytes        uint64 `json:"bytes" yaml:"bytes"`
	LSMSize      uint64 `json:"lsm_size,omitempty" yaml:"lsm_size,omitempty"`
	ValueLogSize uint64 `json:"value_log_size,omitempty" yaml:"value_log_size,omitempty"`
	LastGCTime   int64  `json:"last_gc_time,omitempty" yaml:"last_gc_time,omitempty"`
	GCRuns       uint64 `json:"gc_runs,omitempty" yaml:"gc_runs,omitempty"`
}

func showStats(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	b, err := env.Backend()
	if err != nil {
		return err
	}
	st, ok := b.(storage.Statser)
	if !ok {
		return fmt.Errorf("engine %q does not report statistics", b.Name())
	}
	stats, err := st.Stats(c.Context)
	if err != nil {
		return err
	}
	return env.Print(c, statsView{
		Engine:       b.Name(),
		Keys:         stats.Keys,
		Bytes:        stats.Bytes,
		LSMSize:      stats.LSMSize,
		ValueLogSize: stats.ValueLogSize,
		LastGCTime:   stats.LastGCTime,
		GCRuns:       stats.GCRuns,
	})
}

func badgerEngine(c *cli.Context) (*Env, *badgerstore.Engine, error) {
	env, err := getEnv(c)
	if err != nil {
		return nil, nil, err
	}
	b, err := env.Backend()
	if err != nil {
		return nil, nil, err
	}
	be, ok := b.(*badgerstore.Engine)
	if !ok {
		return nil, nil, fmt.Errorf("%s requires the badger engine, have %q", c.Command.Name, b.Name())
	}
	return env, be, nil
}

func runGC(c *cli.Context) error {
	env, be, err := badgerEngine(c)
	if err != nil {
		return err
	}
	rewrites, err := be.GC(c.Context)
	if err != nil {
		return err
	}
	return env.Print(c, map[string]int{"rewrites": rewrites})
}

func backup(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: backup FILE")
	}
	_, be, err := badgerEngine(c)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(c.Args().First(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := be.Backup(c.Context, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func restore(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: restore FILE")
	}
	_, be, err := badgerEngine(c)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()
	return be.Restore(c.Context, f)
}
