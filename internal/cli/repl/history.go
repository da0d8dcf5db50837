// Package repl provides the interactive REPL mode for issuemesh-cli.
package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultHistorySize is the number of lines kept.
const DefaultHistorySize = 1000

// DefaultHistoryFile returns ~/.issuemesh/history.
func DefaultHistoryFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".issuemesh", "history")
}

// History holds the lines entered in the shell, oldest first. With a path
// it survives between sessions.
type History struct {
	path  string
	limit int
	lines []string
}

// NewHistory returns an empty history stored at path. An empty path
// keeps it in memory.
func NewHistory(path string, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &History{path: path, limit: limit}
}

// Add appends line unless it repeats the previous one. The oldest lines
// are dropped past the limit.
func (h *History) Add(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
	if extra := len(h.lines) - h.limit; extra > 0 {
		h.lines = slices.Delete(h.lines, 0, extra)
	}
}

// Lines returns a copy of the history, oldest first.
func (h *History) Lines() []string {
	return slices.Clone(h.lines)
}

// Len returns the number of lines.
func (h *History) Len() int {
	return len(h.lines)
}

// Load appends the lines saved in the history file. A missing file is not
// an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			h.Add(line)
		}
	}
	return nil
}

// Save writes the history file, readable by the owner only.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return err
	}
	var data []byte
	for _, line := range h.lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	return os.WriteFile(h.path, data, 0600)
}
