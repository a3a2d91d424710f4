// Package dataset turns raw CSV text into an in-memory table: an ordered,
// de-duplicated header sequence plus rows keyed by header name. It is the
// sole producer of the shape consumed by the table engine.
package dataset

import (
	"io"
	"strings"
)

// Row maps a header name to the field value for that column. Every row in a
// Dataset carries a value (possibly "") for every header.
type Row map[string]string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is the canonical in-memory table for one loaded file. Header order
// is column display order; row order is record order in the source text.
type Dataset struct {
	Headers []string
	Rows    []Row
}

// Empty reports whether the dataset has no headers. A headerless parse result
// signals "no data" to the caller; it is not an error.
func (d Dataset) Empty() bool {
	return len(d.Headers) == 0
}

// WriteCSV serializes the dataset back to CSV text. Fields containing the
// delimiter, quotes, line breaks, or surrounding whitespace are quoted so a
// subsequent Parse reproduces the same values.
func (d Dataset) WriteCSV(w io.Writer) error {
	var sb strings.Builder
	writeRecord(&sb, d.Headers)
	for _, row := range d.Rows {
		values := make([]string, len(d.Headers))
		for i, h := range d.Headers {
			values[i] = row[h]
		}
		writeRecord(&sb, values)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the dataset serialized as CSV text.
func (d Dataset) String() string {
	var sb strings.Builder
	_ = d.WriteCSV(&sb)
	return sb.String()
}

func writeRecord(sb *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(encodeField(v))
	}
	sb.WriteByte('\n')
}

// encodeField quotes a value when leaving it bare would change its meaning on
// re-parse: embedded delimiters, quotes, or line breaks, and surrounding
// whitespace (the parser trims unquoted fields).
func encodeField(v string) string {
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, ",\"\n\r") || v != strings.TrimSpace(v) {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
