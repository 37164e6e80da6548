package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/config"
	"github.com/yndnr/persistval/internal/core/domain"
	"github.com/yndnr/persistval/internal/infra/buildinfo"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	app := newApp()
	app.Before = setup
	app.After = teardown
	return app
}

// newApp builds the application without configuration hooks. The shell
// runs lines through it with an environment that is already set up.
func newApp() *cli.App {
	return &cli.App{
		Name:                 "persistval",
		Usage:                "inspect and edit values persisted under string keys",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			KeysCommand(),
			DeleteCommand(),
			WatchCommand(),
			StatsCommand(),
			GCCommand(),
			BackupCommand(),
			RestoreCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Metadata: map[string]any{},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"PERSISTVAL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "storage engine: memory, file, sqlite, badger, webstorage",
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "data directory",
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   "key namespace",
		},
		&cli.StringFlag{
			Name:  "codec",
			Usage: "value codec: json, cbor, yaml",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   "table",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:  "presence-check",
			Usage: "keep stored false, 0 and \"\" instead of falling back to the initial value",
		},
		&cli.BoolFlag{
			Name:  "corrupt-fallback",
			Usage: "use the initial value when the stored value cannot be decoded",
		},
	}
}

// flagOverrides maps explicitly set global flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"engine":    "storage.engine",
		"dir":       "storage.dir",
		"namespace": "storage.namespace",
		"codec":     "codec.name",
		"log-level": "log.level",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	if c.IsSet("presence-check") {
		overrides["store.falsy_fallback"] = !c.Bool("presence-check")
	}
	if c.IsSet("corrupt-fallback") {
		overrides["store.corrupt_fallback"] = c.Bool("corrupt-fallback")
	}
	return overrides
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	errw := c.App.ErrWriter
	if errw == nil {
		errw = os.Stderr
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errw,
	})
	if err != nil {
		return err
	}
	logger.SetDefault(log)
	c.Context = logger.WithLogger(c.Context, log)

	env, err := newEnv(cfg, log, c.String("output"))
	if err != nil {
		return err
	}
	c.App.Metadata[envKey] = env
	return nil
}

func teardown(c *cli.Context) error {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env.Close()
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// Exit codes follow sysexits(3) for domain errors.
const (
	ExitFailure = 1
	ExitUsage   = 64
	ExitData    = 65
	ExitIO      = 74
)

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	switch domain.CategoryOf(err) {
	case domain.CategoryArgs:
		return ExitUsage
	case domain.CategoryData:
		return ExitData
	case domain.CategoryStorage:
		return ExitIO
	}
	return ExitFailure
}
