// Package locator resolves annotations to concrete ranges of the current
// buffer by exact search for their anchor text.
//
// Matching is exact on UTF-16 code units. There is no whitespace
// normalization and no fuzzy fallback: an annotation whose quoted text was
// edited externally is reported as not found rather than guessed at.
package locator

import (
	"sort"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Status is the outcome of locating one annotation.
type Status string

const (
	// StatusResolved means exactly one range was chosen.
	StatusResolved Status = "RESOLVED"

	// StatusNotFound means the anchor text does not occur in the buffer.
	StatusNotFound Status = "NOT_FOUND"

	// StatusAmbiguous means the anchor text occurs more than once and no
	// valid occurrence override was supplied.
	StatusAmbiguous Status = "AMBIGUOUS"
)

// Resolution is the located state of an annotation for one buffer.
type Resolution struct {
	ID     string        `json:"id"`
	Status Status        `json:"status"`
	Range  textbuf.Range `json:"range"`

	// Matches holds the start offset of every occurrence, in order.
	Matches []int `json:"matches,omitempty"`

	// AnchorLen is the anchor text length in code units.
	AnchorLen int `json:"anchor_len"`
}

// Resolved reports whether the resolution carries a usable range.
func (r Resolution) Resolved() bool {
	return r.Status == StatusResolved
}

// Candidates returns every range the anchor text could denote. For a
// resolved annotation that is its single range.
func (r Resolution) Candidates() []textbuf.Range {
	if r.Resolved() {
		return []textbuf.Range{r.Range}
	}
	out := make([]textbuf.Range, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, textbuf.Range{Start: m, End: m + r.AnchorLen})
	}
	return out
}

// Locate resolves each annotation's anchor text against buf.
//
// overrides maps an annotation id to a 0-based occurrence index, used only
// when the anchor text occurs more than once. An override outside the
// available occurrences leaves the annotation ambiguous.
func Locate(buf textbuf.Buffer, anns []document.Annotation, overrides map[string]int) map[string]Resolution {
	out := make(map[string]Resolution, len(anns))
	for _, a := range anns {
		out[a.ID] = LocateOne(buf, a, overrides)
	}
	return out
}

// LocateOne resolves a single annotation.
func LocateOne(buf textbuf.Buffer, a document.Annotation, overrides map[string]int) Resolution {
	res := Resolution{ID: a.ID, AnchorLen: textbuf.Len(a.AnchorText)}

	matches := buf.FindAll(a.AnchorText)
	res.Matches = matches

	switch len(matches) {
	case 0:
		res.Status = StatusNotFound
	case 1:
		res.Status = StatusResolved
		res.Range = textbuf.Range{Start: matches[0], End: matches[0] + res.AnchorLen}
	default:
		res.Status = StatusAmbiguous
		if idx, ok := overrides[a.ID]; ok && idx >= 0 && idx < len(matches) {
			res.Status = StatusResolved
			res.Range = textbuf.Range{Start: matches[idx], End: matches[idx] + res.AnchorLen}
		}
	}
	return res
}

// AnchoredRange is a resolved range tagged with its annotation id.
type AnchoredRange struct {
	ID    string        `json:"id"`
	Range textbuf.Range `json:"range"`
}

// ResolvedRanges returns the ranges of resolved annotations sorted by start,
// then end, then id.
func ResolvedRanges(res map[string]Resolution) []AnchoredRange {
	var out []AnchoredRange
	for id, r := range res {
		if r.Resolved() {
			out = append(out, AnchoredRange{ID: id, Range: r.Range})
		}
	}
	sortRanges(out)
	return out
}

// CandidateRanges is like ResolvedRanges but also includes every occurrence
// of ambiguous annotations, since any of them may be the one the annotation
// is really attached to.
func CandidateRanges(res map[string]Resolution) []AnchoredRange {
	var out []AnchoredRange
	for id, r := range res {
		for _, c := range r.Candidates() {
			out = append(out, AnchoredRange{ID: id, Range: c})
		}
	}
	sortRanges(out)
	return out
}

func sortRanges(rs []AnchoredRange) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Range.Start != rs[j].Range.Start {
			return rs[i].Range.Start < rs[j].Range.Start
		}
		if rs[i].Range.End != rs[j].Range.End {
			return rs[i].Range.End < rs[j].Range.End
		}
		return rs[i].ID < rs[j].ID
	})
}

// IDsWithStatus returns the sorted ids whose resolution has the given status.
func IDsWithStatus(res map[string]Resolution, status Status) []string {
	var ids []string
	for id, r := range res {
		if r.Status == status {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
