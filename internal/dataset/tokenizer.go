package dataset

import "strings"

// ParseLine splits one CSV record into field values.
//
// The scan walks the line once with a single character of lookahead: an
// unquoted comma closes the current field, a quote toggles quoted state, and
// a doubled quote inside a quoted region stays part of the field. The raw
// fields are then decoded: a field wrapped in quotes loses exactly one
// leading and one trailing quote and collapses "" to ", while an unquoted
// field is trimmed of surrounding whitespace. A line always yields at least
// one field; an empty line yields one empty field.
//
// Malformed quoting is tolerated: an unterminated quote consumes the rest of
// the line as quoted content rather than failing.
func ParseLine(line string) []string {
	raw := splitRawFields(line)
	fields := make([]string, len(raw))
	for i, f := range raw {
		fields[i] = decodeField(f)
	}
	return fields
}

// splitRawFields splits on commas outside quoted regions, keeping quote
// characters in place for decodeField. Delimiters are ASCII, so byte-wise
// scanning leaves multi-byte runes untouched.
func splitRawFields(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				// Escaped quote: keep both characters, stay inside quotes.
				buf.WriteString(`""`)
				i++
				continue
			}
			inQuotes = !inQuotes
			buf.WriteByte('"')
		case c == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}

	return append(fields, buf.String())
}

// decodeField applies the post-processing rule to one raw field: strip the
// wrapping quotes and unescape doubled quotes when the field is quoted,
// otherwise trim surrounding whitespace. Interior content of a quoted field
// is preserved verbatim.
func decodeField(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		inner := raw[1 : len(raw)-1]
		return strings.ReplaceAll(inner, `""`, `"`)
	}
	return strings.TrimSpace(raw)
}
