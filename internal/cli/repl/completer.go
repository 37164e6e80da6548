package repl

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

// Completer completes command names.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer for the given commands plus the shell
// built-ins.
func NewCompleter(commands ...string) *Completer {
	all := append([]string{"help", "exit", "quit"}, commands...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// AutoCompleter adapts the completer for readline.
func (c *Completer) AutoCompleter() readline.AutoCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(c.commands))
	for _, cmd := range c.commands {
		items = append(items, readline.PcItem(cmd))
	}
	return readline.NewPrefixCompleter(items...)
}
