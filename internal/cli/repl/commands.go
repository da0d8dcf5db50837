// Package repl provides the interactive REPL mode for issuemesh-cli.
package repl

import (
	"slices"
	"strings"
)

// builtins are answered by the shell without reaching the Executor.
var builtins = []string{"exit", "help", "history", "quit"}

// Commands is the sorted set of command paths the shell accepts, such as
// "issue list", plus the builtins.
type Commands []string

// NewCommands builds the set from full command paths.
func NewCommands(paths []string) Commands {
	all := slices.Concat(builtins, paths)
	slices.Sort(all)
	return slices.Compact(all)
}

// Matching returns the paths that start with prefix.
func (c Commands) Matching(prefix string) []string {
	var out []string
	for _, p := range c {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether word is the first word of some path.
func (c Commands) Has(word string) bool {
	return slices.ContainsFunc(c, func(p string) bool {
		first, _, _ := strings.Cut(p, " ")
		return first == word
	})
}
