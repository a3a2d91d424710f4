// Package limiter trims the rendered row set for non-interactive output,
// mirroring the --limit/--offset/--tail flags.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many rows (0 = unlimited)
	Offset int // Skip the first N rows (0 = no skip)
	Tail   int // Show only the last N rows (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply returns the limited subset of rows. The slice aliases the input.
func (c Config) Apply(rows []dataset.Row) []dataset.Row {
	if !c.IsActive() {
		return rows
	}
	length := len(rows)

	if c.Tail > 0 {
		start := length - c.Tail
		if start < 0 {
			start = 0
		}
		return rows[start:]
	}

	start := c.Offset
	if start > length {
		start = length
	}

	end := length
	if c.Limit > 0 {
		end = start + c.Limit
		if end > length {
			end = length
		}
	}
	if start > end {
		start = end
	}

	return rows[start:end]
}
