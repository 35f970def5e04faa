package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

var (
	// ErrOffsetOutOfRange indicates ranges that do not fit the buffer.
	ErrOffsetOutOfRange = errors.New("range out of buffer bounds")

	// ErrInvalidMode indicates an unknown planning mode.
	ErrInvalidMode = errors.New("invalid planning mode")

	// ErrNoTarget indicates that update mode found no range to target.
	ErrNoTarget = errors.New("no annotated range at target")
)

// PlanSafeInsertion chooses where to insert new content near preferred.
//
// The preferred offset is clamped into [0, buf.Len()] and moved back off
// the middle of a surrogate pair. In ModeSafe an offset
// strictly inside a range is moved to that range's end, repeatedly, until it
// sits inside no range; it only ever moves forward. In ModeAsk the offset is
// left in place and NeedsDecision is set instead. In ModeUpdate nothing is
// adjusted: the first range containing preferred is returned as Target.
func PlanSafeInsertion(buf textbuf.Buffer, ranges []locator.AnchoredRange, preferred int, mode Mode) (*InsertionPoint, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	checker := NewConflictChecker(ranges)
	if err := checker.Validate(buf.Len()); err != nil {
		return nil, err
	}

	offset := buf.SnapBoundary(clamp(preferred, 0, buf.Len()))

	if mode == ModeUpdate {
		for _, r := range checker.Ranges() {
			if r.Range.Start <= offset && offset < r.Range.End {
				return planUpdate(checker, r), nil
			}
		}
		return nil, fmt.Errorf("%w: offset %d", ErrNoTarget, offset)
	}

	point := NewInsertionPoint(offset)
	for _, c := range checker.CheckOffset(offset) {
		point.AddConflict(c)
	}

	if !point.HasConflicts() {
		if offset == buf.Len() {
			point.Strategy = StrategyEndOfDocument
			point.Reason = "End of document is always safe"
		} else {
			point.Reason = fmt.Sprintf("Offset %d does not split any annotation", offset)
		}
		return point, nil
	}

	if mode == ModeAsk {
		point.NeedsDecision = true
		point.Options = []string{OptionInsertBefore, OptionInsertAfter, OptionUpdateWithPreservation}
		point.Reason = fmt.Sprintf("Offset %d falls inside %d annotation(s); choose how to proceed", offset, len(point.Conflicts))
		return point, nil
	}

	// Moving to one range's end can land inside a later, overlapping range.
	for {
		conflicts := checker.CheckOffset(offset)
		if len(conflicts) == 0 {
			break
		}
		for _, c := range conflicts {
			if c.Range.End > offset {
				offset = c.Range.End
			}
			point.addAffected(c.ID)
		}
	}

	point.Offset = offset
	point.Strategy = StrategyAfter
	point.Reason = fmt.Sprintf("Moved insertion from %d to %d to avoid splitting annotation(s) %s",
		point.Requested, offset, strings.Join(point.AffectedIDs, ", "))
	return point, nil
}

// PlanUpdateTarget returns the insertion point for a preserving replacement
// of the annotation id's range.
func PlanUpdateTarget(ranges []locator.AnchoredRange, id string) (*InsertionPoint, error) {
	checker := NewConflictChecker(ranges)
	r, ok := checker.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: annotation %s is not resolved", ErrNoTarget, id)
	}
	return planUpdate(checker, r), nil
}

func planUpdate(checker *ConflictChecker, target locator.AnchoredRange) *InsertionPoint {
	point := NewInsertionPoint(target.Range.Start)
	t := target.Range
	point.Target = &t
	point.Strategy = StrategyWithin
	point.addAffected(target.ID)
	for _, r := range checker.Overlapping(target.Range) {
		point.addAffected(r.ID)
	}
	point.Safe = len(point.AffectedIDs) == 1
	point.Reason = fmt.Sprintf("Replacing annotated text of %s at %s", target.ID, target.Range)
	return point
}

// FindSection returns the first section whose heading contains name,
// compared case-insensitively.
func FindSection(sections []document.Section, name string) (document.Section, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return document.Section{}, false
	}
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s.Heading), needle) {
			return s, true
		}
	}
	return document.Section{}, false
}

// PlanSectionInsertion plans an insertion at the end of the named section.
// An empty name means the end of the document. A name that matches no
// section also falls back to the end of the document and sets
// SectionNotFound; that condition is not an error.
func PlanSectionInsertion(buf textbuf.Buffer, sections []document.Section, name string, ranges []locator.AnchoredRange, mode Mode) (*InsertionPoint, error) {
	if mode == ModeUpdate {
		return nil, fmt.Errorf("%w: section insertion does not support %q", ErrInvalidMode, mode)
	}

	preferred := buf.Len()
	found := false
	var section document.Section
	if name != "" {
		section, found = FindSection(sections, name)
		if found {
			preferred = section.End
		}
	}

	point, err := PlanSafeInsertion(buf, ranges, preferred, mode)
	if err != nil {
		return nil, err
	}

	switch {
	case found:
		point.Section = section.Heading
	case name != "":
		point.SectionNotFound = true
		point.Reason = fmt.Sprintf("Section %q not found; inserting at end of document", name)
	}
	return point, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
