package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the value of --output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts a format name in any case. Empty selects table.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// Printer writes command results in one format.
type Printer struct {
	Format    Format
	Wide      bool
	NoHeaders bool
}

// Print writes data. In table format, values that are neither a *Table
// nor Tabular are printed as indented JSON.
func (p Printer) Print(w io.Writer, data any) error {
	switch p.Format {
	case FormatJSON:
		return writeJSON(w, data, true)
	case FormatYAML:
		return writeYAML(w, data)
	}

	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.Write(w, !p.NoHeaders)
	case Tabular:
		return v.Table(p.Wide).Write(w, !p.NoHeaders)
	}
	return writeJSON(w, data, true)
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// writeYAML goes through the JSON encoding so keys follow the json tags
// and their order (nextId before issues).
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	clearStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return enc.Close()
}

// clearStyle drops the flow style and quoting that JSON input leaves on
// every node.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
