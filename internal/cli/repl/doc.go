// Package repl runs the interactive shell of persistval.
//
// Each input line is split into arguments, shell style, and handed to an
// Executor, normally the CLI application itself. Line editing, history and
// completion come from chzyer/readline.
package repl
