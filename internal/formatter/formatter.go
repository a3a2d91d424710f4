// Package formatter renders a header/row table to the supported output
// formats for the non-interactive CLI path.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

// Format identifies an output format.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatRaw   Format = "raw"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatAuto, FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatTOML, FormatRaw:
		return f, nil
	case "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown output format %q (want auto|table|csv|json|yaml|toml|raw)", s)
}

// Options configures rendering.
type Options struct {
	NoColor  bool
	MaxWidth int // 0 = no width clamp (table format only)
}

// Render writes headers+rows to w in the given format. FormatAuto must be
// resolved by the caller (it depends on whether stdout is a terminal).
func Render(w io.Writer, f Format, headers []string, rows []dataset.Row, opts Options) error {
	switch f {
	case FormatTable:
		return renderTable(w, headers, rows, opts)
	case FormatCSV:
		return dataset.Dataset{Headers: headers, Rows: rows}.WriteCSV(w)
	case FormatJSON:
		return renderJSON(w, headers, rows)
	case FormatYAML:
		return renderYAML(w, headers, rows)
	case FormatTOML:
		return renderTOML(w, headers, rows)
	case FormatRaw:
		return renderRaw(w, headers, rows)
	default:
		return fmt.Errorf("cannot render format %q", f)
	}
}

// orderedMaps converts rows to plain maps in header order for the structured
// encoders. Encoders sort keys themselves; values are copied so the encoders
// never alias engine state.
func orderedMaps(headers []string, rows []dataset.Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		m := make(map[string]string, len(headers))
		for _, h := range headers {
			m[h] = row[h]
		}
		out[i] = m
	}
	return out
}

func renderJSON(w io.Writer, headers []string, rows []dataset.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(orderedMaps(headers, rows))
}

func renderYAML(w io.Writer, headers []string, rows []dataset.Row) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(orderedMaps(headers, rows))
}

func renderTOML(w io.Writer, headers []string, rows []dataset.Row) error {
	// TOML has no top-level array, so rows become an array of tables.
	doc := struct {
		Rows []map[string]string `toml:"rows"`
	}{Rows: orderedMaps(headers, rows)}
	return toml.NewEncoder(w).Encode(doc)
}

// renderRaw prints tab-separated values with no quoting or alignment, for
// piping into cut/awk style tooling.
func renderRaw(w io.Writer, headers []string, rows []dataset.Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = row[h]
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, "\t")); err != nil {
			return err
		}
	}
	return nil
}
