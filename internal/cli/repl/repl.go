// Package repl provides the interactive REPL mode for issuemesh-cli.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "issuemesh> "

// Executor runs one command line, already split into arguments.
type Executor func(args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input    io.Reader
	output   io.Writer
	prompt   string
	exec     Executor
	commands Commands
	history  *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory replaces the default history file.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCommands sets the command names offered by help and suggestions.
func WithCommands(commands []string) Option {
	return func(r *REPL) {
		r.commands = NewCommands(commands)
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:    os.Stdin,
		output:   os.Stdout,
		prompt:   DefaultPrompt,
		exec:     exec,
		commands: NewCommands(nil),
		history:  NewHistory(DefaultHistoryFile(), DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns on exit, quit or end of input;
// history is saved on the way out.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}

	err := r.loop()
	if serr := r.history.Save(); serr != nil && err == nil {
		err = fmt.Errorf("save history: %w", serr)
	}
	return err
}

func (r *REPL) loop() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) execute(line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}

	switch args[0] {
	case "help":
		prefix := strings.Join(args[1:], " ")
		for _, cmd := range r.commands.Matching(prefix) {
			fmt.Fprintln(r.output, "  "+cmd)
		}
		fmt.Fprintln(r.output, "  exit")
		return nil
	case "history":
		for i, line := range r.history.Lines() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, line)
		}
		return nil
	}

	if !r.commands.Has(args[0]) {
		if s := r.commands.Matching(args[0]); len(s) > 0 {
			return fmt.Errorf("unknown command %q, did you mean: %s", args[0], strings.Join(s, ", "))
		}
		return fmt.Errorf("unknown command %q, type help for a list", args[0])
	}
	return r.exec(args)
}

// SplitArgs splits a line into arguments the way a POSIX shell would for
// plain words, single quotes, double quotes and backslash escapes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case quote == '\'':
			if ch == '\'' {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '\\':
			escaped = true
			inWord = true
		case quote == '"':
			if ch == '"' {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inWord = true
		case ch == ' ' || ch == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(ch)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
