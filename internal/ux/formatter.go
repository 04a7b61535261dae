package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// maxCellWidth is the widest a table cell may render, in terminal columns.
const maxCellWidth = 60

// Formatter writes one command result.
type Formatter interface {
	Format(data any) error
}

// FormatterOptions configures a Formatter.
type FormatterOptions struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// NoColor disables styling in text output.
	NoColor bool
	// Compact drops indentation from JSON output.
	Compact bool
}

// Table is a column layout for text output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabular is implemented by values that know how to lay themselves out as a
// table in text mode. JSON and YAML output ignore it.
type Tabular interface {
	Table() Table
}

// NewFormatter returns the formatter for format. An empty format means text.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	o := FormatterOptions{Writer: os.Stdout}
	if opts != nil {
		o = *opts
		if o.Writer == nil {
			o.Writer = os.Stdout
		}
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSONFormatter{opts: o}, nil
	case FormatYAML:
		return &YAMLFormatter{opts: o}, nil
	case FormatText, "":
		return &TextFormatter{opts: o}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter writes data as JSON using its json tags.
type JSONFormatter struct {
	opts FormatterOptions
}

func (f *JSONFormatter) Format(data any) error {
	enc := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

// YAMLFormatter writes data as YAML. Values go through their JSON encoding
// first, so keys and field order match the json output and raw payloads from
// the server render as documents rather than byte lists.
type YAMLFormatter struct {
	opts FormatterOptions
}

func (f *YAMLFormatter) Format(data any) error {
	enc := yaml.NewEncoder(f.opts.Writer)
	enc.SetIndent(2)
	defer enc.Close()

	node, err := toYAMLNode(data)
	if err != nil {
		return enc.Encode(data)
	}
	return enc.Encode(node)
}

func toYAMLNode(data any) (*yaml.Node, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	clearStyle(&doc)
	return &doc, nil
}

// clearStyle drops the flow and quoting styles JSON input decodes with so the
// encoder picks block style.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// TextFormatter writes data for people.
type TextFormatter struct {
	opts FormatterOptions
}

// Format lays out tables in columns and prints strings and Stringers as-is.
// Anything else falls back to YAML, which reads well enough for single
// records.
func (f *TextFormatter) Format(data any) error {
	switch v := data.(type) {
	case Tabular:
		return f.writeTable(v.Table())
	case Table:
		return f.writeTable(v)
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	default:
		return (&YAMLFormatter{opts: f.opts}).Format(data)
	}
}

// writeTable pads by display width, so double-width CJK titles line up.
func (f *TextFormatter) writeTable(t Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(f.opts.Writer, "No results.")
		return err
	}

	lines := make([][]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		lines = append(lines, t.Headers)
	}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = sanitizeCell(c)
		}
		lines = append(lines, cells)
	}

	var widths []int
	for _, line := range lines {
		for i, c := range line {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	for _, line := range lines {
		for i, c := range line {
			if i == len(line)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(f.opts.Writer, b.String())
	return err
}

// sanitizeCell keeps multi-line poem text from breaking the column layout.
func sanitizeCell(s string) string {
	s = strings.NewReplacer("\r\n", " / ", "\n", " / ", "\t", " ").Replace(s)
	return runewidth.Truncate(s, maxCellWidth, "...")
}
