// Package export writes the flat command list as CSV, JSON or YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"psbrowse/pkg/pstypes"
)

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a file extension ("yml" is YAML).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv, json or yaml)", s)
	}
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format Format, commands []pstypes.CommandSummary) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, commands)
	case FormatJSON:
		return WriteJSON(w, commands)
	case FormatYAML:
		return WriteYAML(w, commands)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// csvHeader is the fixed column order of the CSV export.
const csvHeader = "Name,ModuleName,CommandType,Source"

// WriteCSV writes a header row and one row per command. A field is quoted only
// when it contains a comma, a double quote or a newline; embedded quotes are doubled.
func WriteCSV(w io.Writer, commands []pstypes.CommandSummary) error {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")
	for _, c := range commands {
		b.WriteString(EscapeCSV(c.Name))
		b.WriteString(",")
		b.WriteString(EscapeCSV(c.ModuleName))
		b.WriteString(",")
		b.WriteString(EscapeCSV(c.CommandType.String()))
		b.WriteString(",")
		b.WriteString(EscapeCSV(c.Source))
		b.WriteString("\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// EscapeCSV quotes a single field if needed.
func EscapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteJSON writes the commands as an indented JSON array.
func WriteJSON(w io.Writer, commands []pstypes.CommandSummary) error {
	if commands == nil {
		commands = []pstypes.CommandSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(commands); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

// WriteYAML writes the commands as a YAML sequence.
func WriteYAML(w io.Writer, commands []pstypes.CommandSummary) error {
	if commands == nil {
		commands = []pstypes.CommandSummary{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(commands); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	return nil
}
