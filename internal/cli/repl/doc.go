// Package repl provides interactive mode for issuemesh-cli.
//
//   - repl.go: read-eval-print loop and argument splitting
//   - commands.go: command path lookup for help and suggestions
//   - history.go: command history persisted across sessions
//
// Each line is split shell-style and handed to an Executor, so the same
// commands and flags work inside the shell and on the command line.
package repl
