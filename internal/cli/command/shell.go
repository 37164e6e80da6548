package command

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/cli/repl"
)

// ShellCommand returns the shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively against one open backend",
		Description: "Each line is a command as it would be given to persistval, without\n" +
			"the program name. The backend stays open for the whole session, so\n" +
			"global flags on a line only affect output.",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	var names []string
	for _, cmd := range newApp().Commands {
		if cmd.Name != "shell" {
			names = append(names, cmd.Name)
		}
	}

	exec := func(args []string) error {
		if len(args) > 0 && args[0] == "shell" {
			return errors.New("already in a shell")
		}
		sub := newApp()
		sub.Metadata = c.App.Metadata
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		sub.ExitErrHandler = func(*cli.Context, error) {}
		return sub.RunContext(c.Context, append([]string{c.App.Name}, args...))
	}

	var opts []repl.Option
	if c.App.Reader != nil && c.App.Reader != os.Stdin {
		opts = append(opts, repl.WithReader(repl.NewScannerReader(c.App.Reader)), repl.WithOutput(writer(c)))
	} else if dir := env.Config.Storage.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0o700); err == nil {
			opts = append(opts, repl.WithHistoryFile(filepath.Join(dir, "history")))
		}
	}

	r, err := repl.New(exec, names, opts...)
	if err != nil {
		return err
	}
	return r.Run(c.Context)
}
