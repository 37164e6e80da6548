package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Prompt is the shell prompt.
const Prompt = "persistval> "

// Executor runs one command line, already split into arguments.
type Executor func(args []string) error

// LineReader reads input lines. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// REPL is the read-eval-print loop.
type REPL struct {
	reader      LineReader
	output      io.Writer
	exec        Executor
	completer   *Completer
	historyFile string
}

// Option configures a REPL.
type Option func(*REPL)

// WithReader replaces the terminal line reader, for piped input and tests.
func WithReader(r LineReader) Option {
	return func(repl *REPL) {
		repl.reader = r
	}
}

// WithOutput sets where the shell writes its own messages.
func WithOutput(w io.Writer) Option {
	return func(repl *REPL) {
		repl.output = w
	}
}

// WithHistoryFile keeps line history in path.
func WithHistoryFile(path string) Option {
	return func(repl *REPL) {
		repl.historyFile = path
	}
}

// New creates a REPL that hands each line to exec. commands feed
// completion.
func New(exec Executor, commands []string, opts ...Option) (*REPL, error) {
	r := &REPL{
		exec:      exec,
		completer: NewCompleter(commands...),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.reader == nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          Prompt,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			HistoryFile:     r.historyFile,
			AutoComplete:    r.completer.AutoCompleter(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create readline: %w", err)
		}
		r.reader = rl
		if r.output == nil {
			r.output = rl.Stdout()
		}
	}
	if r.output == nil {
		r.output = io.Discard
	}
	return r, nil
}

// Run reads lines until exit, EOF or cancellation of ctx. Command errors
// are printed and do not end the loop.
func (r *REPL) Run(ctx context.Context) error {
	defer r.reader.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit":
			return nil
		case "help", "?":
			r.printHelp()
			continue
		}

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
			continue
		}
		if err := r.exec(args); err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, "Commands:")
	for _, cmd := range r.completer.commands {
		fmt.Fprintf(r.output, "  %s\n", cmd)
	}
	fmt.Fprintln(r.output, "Quote JSON arguments: set theme '\"dark\"'")
}

// scannerReader reads lines from a plain io.Reader.
type scannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader returns a LineReader over r without line editing. Close
// does not close r.
func NewScannerReader(r io.Reader) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r)}
}

func (s *scannerReader) Readline() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scannerReader) Close() error {
	return nil
}
