// Package sequencer turns a replacement of annotated text into an ordered
// list of primitive edits that keeps the annotation attached.
//
// The document service applies a batch strictly in order, each op against
// the buffer left by the previous one. An annotation survives only while at
// least one of its original code units is present, so a plain delete of the
// old text followed by an insert of the new one orphans it. The sequencer
// instead inserts the replacement first, at a split point inside the range,
// and removes the old text around it afterwards.
package sequencer

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

var (
	// ErrInvalidRange indicates an empty or reversed target range.
	ErrInvalidRange = errors.New("invalid target range")

	// ErrAnnotationWillBeOrphaned is the warning carried by a plan whose
	// replacement text is empty. The plan is still valid.
	ErrAnnotationWillBeOrphaned = errors.New("annotation will be orphaned")
)

// AnchorSide selects the split point, and with it which end of the new text
// the surviving annotation attaches to.
type AnchorSide string

const (
	// AnchorStart splits at the start of the range.
	AnchorStart AnchorSide = "start"

	// AnchorEnd splits at the end of the range.
	AnchorEnd AnchorSide = "end"

	// AnchorMiddle splits halfway through the range.
	AnchorMiddle AnchorSide = "middle"
)

// ParseAnchorSide parses a side name. The empty string means AnchorStart.
func ParseAnchorSide(s string) (AnchorSide, error) {
	switch AnchorSide(s) {
	case "", AnchorStart:
		return AnchorStart, nil
	case AnchorEnd:
		return AnchorEnd, nil
	case AnchorMiddle:
		return AnchorMiddle, nil
	}
	return "", fmt.Errorf("unknown anchor side %q (want start, end or middle)", s)
}

// MutationPlan is an ordered op list meant for one atomic batch.
type MutationPlan struct {
	// Ops are in the coordinates produced by all prior ops in the list
	Ops []textbuf.EditOp `json:"ops"`

	// TargetID is the annotation being preserved, if any
	TargetID string `json:"target_id,omitempty"`

	// Range is the replaced range in pre-mutation coordinates
	Range textbuf.Range `json:"range"`

	// Replacement is the new text
	Replacement string `json:"replacement"`

	// SplitPoint is where the replacement was inserted
	SplitPoint int `json:"split_point"`

	// Side is the anchor side the split point came from
	Side AnchorSide `json:"side,omitempty"`

	// Orphaned is set when the plan cannot keep the annotation attached
	Orphaned bool `json:"orphaned,omitempty"`
}

// Warning returns ErrAnnotationWillBeOrphaned for orphaning plans, else nil.
func (p *MutationPlan) Warning() error {
	if p.Orphaned {
		return ErrAnnotationWillBeOrphaned
	}
	return nil
}

// ResultRange is where the replacement text sits once the plan has run.
func (p *MutationPlan) ResultRange() textbuf.Range {
	return textbuf.Range{Start: p.Range.Start, End: p.Range.Start + textbuf.Len(p.Replacement)}
}

// SplitPoint returns the split offset for side within r.
func SplitPoint(r textbuf.Range, side AnchorSide) int {
	switch side {
	case AnchorEnd:
		return r.End
	case AnchorMiddle:
		return r.Start + (r.End-r.Start)/2
	default:
		return r.Start
	}
}

// PlanPreservingReplacement plans the replacement of r with replacement so
// that an annotation anchored on r stays attached.
//
// The ops are, in order:
//
//	Insert(P, R)             the new text goes in first
//	Delete(P+|R|, e+|R|)     the old text after P, in post-insert coordinates
//	Delete(s, P)             the old text before P, untouched by the above
//
// A delete whose extent is empty is left out. An empty replacement yields a
// single Delete(s, e) and an orphaning plan.
func PlanPreservingReplacement(r textbuf.Range, replacement string, side AnchorSide) (*MutationPlan, error) {
	if r.Start < 0 || r.Start >= r.End {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if side == "" {
		side = AnchorStart
	}

	plan := &MutationPlan{
		Range:       r,
		Replacement: replacement,
		Side:        side,
	}

	if replacement == "" {
		plan.SplitPoint = r.Start
		plan.Orphaned = true
		plan.Ops = []textbuf.EditOp{textbuf.Delete(r.Start, r.End)}
		return plan, nil
	}

	return plan.split(SplitPoint(r, side)), nil
}

// PlanReplacementIn is PlanPreservingReplacement against a concrete buffer:
// r must lie inside buf and the split point is moved back so that it never
// falls between the halves of a surrogate pair.
func PlanReplacementIn(buf textbuf.Buffer, r textbuf.Range, replacement string, side AnchorSide) (*MutationPlan, error) {
	if !r.Within(buf.Len()) {
		return nil, fmt.Errorf("%w: %s in buffer of length %d", ErrInvalidRange, r, buf.Len())
	}
	plan, err := PlanPreservingReplacement(r, replacement, side)
	if err != nil || plan.Orphaned {
		return plan, err
	}
	p := buf.SnapBoundary(plan.SplitPoint)
	if p < r.Start {
		p = r.Start
	}
	if p == plan.SplitPoint {
		return plan, nil
	}
	plan.Ops = nil
	return plan.split(p), nil
}

// split fills in the ops for an insert at the given offset.
func (p *MutationPlan) split(at int) *MutationPlan {
	r := p.Range
	shift := textbuf.Len(p.Replacement)
	p.SplitPoint = at

	p.Ops = append(p.Ops, textbuf.Insert(at, p.Replacement))
	if at < r.End {
		p.Ops = append(p.Ops, textbuf.Delete(at+shift, r.End+shift))
	}
	if r.Start < at {
		p.Ops = append(p.Ops, textbuf.Delete(r.Start, at))
	}
	return p
}

// PlanInsertion is a plain insert with no annotation involved. Each extra
// chunk is inserted as its own op right after the previous one, so that
// for example an attribution lands directly behind the content.
func PlanInsertion(offset int, text string, more ...string) (*MutationPlan, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrInvalidRange, offset)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty insertion", ErrInvalidRange)
	}

	plan := &MutationPlan{
		Ops:        []textbuf.EditOp{textbuf.Insert(offset, text)},
		Range:      textbuf.Range{Start: offset, End: offset},
		SplitPoint: offset,
	}
	full := text
	at := offset + textbuf.Len(text)
	for _, chunk := range more {
		if chunk == "" {
			continue
		}
		plan.Ops = append(plan.Ops, textbuf.Insert(at, chunk))
		at += textbuf.Len(chunk)
		full += chunk
	}
	plan.Replacement = full
	return plan, nil
}

// PlanDeletion is a plain delete of r.
func PlanDeletion(r textbuf.Range) (*MutationPlan, error) {
	if r.Start < 0 || r.Start >= r.End {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return &MutationPlan{
		Ops:        []textbuf.EditOp{textbuf.Delete(r.Start, r.End)},
		Range:      r,
		SplitPoint: r.Start,
	}, nil
}
