package dataset

import (
	"fmt"
	"strings"
)

// UnnamedColumnPrefix is the base name assigned to empty header candidates.
const UnnamedColumnPrefix = "UnnamedColumn"

// Parse turns full document text into a Dataset. The text is trimmed and
// split into records on either line-ending convention; the first record
// supplies the header candidates and every following non-blank record
// becomes one row. Records shorter than the header sequence pad missing
// trailing fields with "", longer records drop the extras.
//
// Parse never fails on data shape: empty input yields an empty Dataset and
// the caller decides how to surface that.
func Parse(text string) Dataset {
	text = strings.TrimSpace(text)
	if text == "" {
		return Dataset{}
	}

	records := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	headers := uniqueHeaders(ParseLine(records[0]))

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		values := ParseLine(rec)
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}
}

// uniqueHeaders finalizes header candidates left to right. An empty candidate
// becomes UnnamedColumnN for the smallest N not already taken; a duplicate of
// an earlier-finalized header becomes h_1, h_2, ... until it no longer
// collides.
func uniqueHeaders(candidates []string) []string {
	headers := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		name := strings.TrimSpace(c)
		switch {
		case name == "":
			n := 1
			for seen[fmt.Sprintf("%s%d", UnnamedColumnPrefix, n)] {
				n++
			}
			name = fmt.Sprintf("%s%d", UnnamedColumnPrefix, n)
		case seen[name]:
			base := name
			n := 1
			for seen[fmt.Sprintf("%s_%d", base, n)] {
				n++
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		headers = append(headers, name)
	}

	return headers
}
