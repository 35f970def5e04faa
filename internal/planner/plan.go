package planner

import (
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Mode selects how the planner treats an offset that would split a range.
type Mode string

const (
	// ModeSafe relocates the offset past every range it would split.
	ModeSafe Mode = "safe"

	// ModeUpdate targets an annotated range deliberately, for a preserving
	// replacement.
	ModeUpdate Mode = "update"

	// ModeAsk leaves an unsafe offset in place and asks the caller to decide.
	ModeAsk Mode = "ask"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSafe, ModeUpdate, ModeAsk:
		return true
	}
	return false
}

// Strategy describes how the final offset was chosen.
type Strategy string

// Strategy constants
const (
	StrategyAsRequested   Strategy = "as_requested"
	StrategyAfter         Strategy = "after"
	StrategyWithin        Strategy = "within"
	StrategyEndOfDocument Strategy = "end_of_document"
)

// Decision options offered when ModeAsk hits an unsafe offset.
const (
	OptionInsertBefore           = "insert_before"
	OptionInsertAfter            = "insert_after"
	OptionUpdateWithPreservation = "update_with_preservation"
)

// InsertionPoint is the planner's answer for one insertion request.
type InsertionPoint struct {
	// Offset is where the content should be inserted
	Offset int `json:"offset"`

	// Requested is the clamped offset the caller asked for
	Requested int `json:"requested"`

	// Safe is false when the requested offset would have split a range
	Safe bool `json:"safe"`

	// AffectedIDs lists the annotations involved, in order of range start
	AffectedIDs []string `json:"affected_ids"`

	// Conflicts holds the ranges the requested offset would have split
	Conflicts []Conflict `json:"conflicts,omitempty"`

	// Target is the range to replace in update mode
	Target *textbuf.Range `json:"target,omitempty"`

	// Strategy and Reason explain the choice
	Strategy Strategy `json:"strategy"`
	Reason   string   `json:"reason"`

	// Section is the heading the insertion was aimed at, if any
	Section string `json:"section,omitempty"`

	// SectionNotFound is set when a named section did not exist and the
	// end of the document was used instead
	SectionNotFound bool `json:"section_not_found,omitempty"`

	// NeedsDecision is set in ask mode when the requested offset is unsafe
	NeedsDecision bool `json:"needs_decision,omitempty"`

	// Options are the choices offered when NeedsDecision is set
	Options []string `json:"options,omitempty"`
}

// Conflict is a range that an insertion offset falls strictly inside.
type Conflict struct {
	// ID is the annotation owning the range
	ID string `json:"id"`

	// Range is the annotation's resolved range
	Range textbuf.Range `json:"range"`

	// Reason is a human-readable explanation
	Reason string `json:"reason"`
}

// NewInsertionPoint creates an InsertionPoint at offset with no conflicts.
func NewInsertionPoint(offset int) *InsertionPoint {
	return &InsertionPoint{
		Offset:      offset,
		Requested:   offset,
		Safe:        true,
		AffectedIDs: []string{},
		Strategy:    StrategyAsRequested,
	}
}

// HasConflicts returns true if the requested offset would split a range.
func (p *InsertionPoint) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddConflict records a conflict and its annotation id.
func (p *InsertionPoint) AddConflict(c Conflict) {
	p.Conflicts = append(p.Conflicts, c)
	p.addAffected(c.ID)
	p.Safe = false
}

func (p *InsertionPoint) addAffected(id string) {
	for _, existing := range p.AffectedIDs {
		if existing == id {
			return
		}
	}
	p.AffectedIDs = append(p.AffectedIDs, id)
}
