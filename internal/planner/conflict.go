package planner

import (
	"fmt"
	"sort"

	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// ConflictChecker answers which annotated ranges an offset or span touches.
type ConflictChecker struct {
	ranges []locator.AnchoredRange
}

// NewConflictChecker creates a ConflictChecker over a copy of ranges sorted
// by start. The caller's order is not trusted.
func NewConflictChecker(ranges []locator.AnchoredRange) *ConflictChecker {
	sorted := make([]locator.AnchoredRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Range.Start != sorted[j].Range.Start {
			return sorted[i].Range.Start < sorted[j].Range.Start
		}
		return sorted[i].Range.End < sorted[j].Range.End
	})
	return &ConflictChecker{ranges: sorted}
}

// Validate checks that every range is non-empty and lies within a buffer of
// length n. A failure means the ranges were located against another buffer.
func (c *ConflictChecker) Validate(n int) error {
	for _, r := range c.ranges {
		if r.Range.IsEmpty() || !r.Range.Within(n) {
			return fmt.Errorf("%w: range %s of annotation %s in buffer of length %d", ErrOffsetOutOfRange, r.Range, r.ID, n)
		}
	}
	return nil
}

// CheckOffset returns the ranges that offset falls strictly inside.
// An offset on a range boundary does not split it.
func (c *ConflictChecker) CheckOffset(offset int) []Conflict {
	var conflicts []Conflict
	for _, r := range c.ranges {
		if r.Range.Start >= offset {
			break
		}
		if r.Range.Contains(offset) {
			conflicts = append(conflicts, Conflict{
				ID:     r.ID,
				Range:  r.Range,
				Reason: fmt.Sprintf("Offset %d would split annotation %s at %s", offset, r.ID, r.Range),
			})
		}
	}
	return conflicts
}

// Overlapping returns the ranges sharing at least one code unit with span.
func (c *ConflictChecker) Overlapping(span textbuf.Range) []locator.AnchoredRange {
	var out []locator.AnchoredRange
	for _, r := range c.ranges {
		if r.Range.Start >= span.End {
			break
		}
		if r.Range.Overlaps(span) {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the range of the given annotation id.
func (c *ConflictChecker) Find(id string) (locator.AnchoredRange, bool) {
	for _, r := range c.ranges {
		if r.ID == id {
			return r, true
		}
	}
	return locator.AnchoredRange{}, false
}

// Ranges returns the sorted ranges.
func (c *ConflictChecker) Ranges() []locator.AnchoredRange {
	return c.ranges
}
