package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// record is the persisted form of a document. Anchors are service-side
// state and never leave the store.
type record struct {
	Document document.Document        `json:"document"`
	Anchors  map[string]textbuf.Range `json:"anchors,omitempty"`
}

// newRecord validates doc and anchors each annotation at the first
// occurrence of its anchor text. An annotation whose text does not occur is
// stored as orphaned.
func newRecord(doc *document.Document, opts Options) (*record, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	rec := &record{
		Document: *doc.Clone(),
		Anchors:  make(map[string]textbuf.Range),
	}
	d := &rec.Document
	buf := d.Buffer()

	for i := range d.Annotations {
		a := &d.Annotations[i]
		if a.AnchorText == "" || a.Orphaned {
			continue
		}
		idx := buf.Index(a.AnchorText, 0)
		if idx < 0 {
			a.Orphaned = true
			continue
		}
		rec.Anchors[a.ID] = textbuf.Range{Start: idx, End: idx + textbuf.Len(a.AnchorText)}
	}

	d.Revision = opts.Hasher.Revision(d.Body)
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = opts.Clock.Now()
	}
	for i := range d.Annotations {
		if d.Annotations[i].CreatedAt.IsZero() {
			d.Annotations[i].CreatedAt = d.UpdatedAt
		}
	}
	return rec, nil
}

func (r *record) info() DocumentInfo {
	return DocumentInfo{
		ID:          r.Document.ID,
		Title:       r.Document.Title,
		Revision:    r.Document.Revision,
		Length:      textbuf.Len(r.Document.Body),
		Annotations: len(r.Document.Annotations),
		UpdatedAt:   r.Document.UpdatedAt,
	}
}

// snapshot returns what a reader is allowed to see.
func (r *record) snapshot() *document.Document {
	return r.Document.Clone()
}

// apply runs batch against the record in place, so callers work on a clone
// and drop it on error. Every annotation range is tracked through the ops;
// annotations whose text vanished become orphaned.
func (r *record) apply(batch executor.Batch, opts Options, now time.Time) (*executor.Receipt, error) {
	if len(batch.Ops) == 0 {
		return nil, executor.Failure(batch.ID, ErrEmptyBatch)
	}
	if batch.RequiredRevision != "" && batch.RequiredRevision != r.Document.Revision {
		return nil, executor.Failure(batch.ID, fmt.Errorf("%w: have %s, batch requires %s",
			executor.ErrStaleRevision, r.Document.Revision, batch.RequiredRevision))
	}

	next, err := textbuf.ApplyOps(r.Document.Buffer(), batch.Ops)
	if err != nil {
		return nil, executor.Failure(batch.ID, err)
	}

	receipt := &executor.Receipt{
		BatchID:    batch.ID,
		DocumentID: r.Document.ID,
		AppliedOps: len(batch.Ops),
		AppliedAt:  now,
	}

	for i := range r.Document.Annotations {
		a := &r.Document.Annotations[i]
		span, ok := r.Anchors[a.ID]
		if !ok {
			continue
		}
		moved, alive := textbuf.Track(span, batch.Ops)
		if !alive {
			delete(r.Anchors, a.ID)
			a.AnchorText = ""
			a.Orphaned = true
			receipt.Orphaned = append(receipt.Orphaned, a.ID)
			continue
		}
		text, err := next.SliceRange(moved)
		if err != nil {
			// Track only yields ranges inside the new buffer.
			return nil, executor.Failure(batch.ID, err)
		}
		r.Anchors[a.ID] = moved
		a.AnchorText = text
	}

	r.Document.Sections = moveSections(r.Document.Sections, batch.Ops)
	r.Document.Body = next.String()
	r.Document.Revision = opts.Hasher.Revision(r.Document.Body)
	r.Document.UpdatedAt = now
	receipt.Revision = r.Document.Revision
	return receipt, nil
}

// moveSections maps explicit section boundaries through ops. A section
// whose span collapsed is dropped.
func moveSections(sections []document.Section, ops []textbuf.EditOp) []document.Section {
	if len(sections) == 0 {
		return sections
	}
	out := make([]document.Section, 0, len(sections))
	for _, s := range sections {
		s.Start = textbuf.MapOffset(s.Start, ops)
		s.End = textbuf.MapOffset(s.End, ops)
		if s.End <= s.Start {
			continue
		}
		out = append(out, s)
	}
	return out
}

// annotate adds a new annotation anchored at the requested occurrence.
func (r *record) annotate(req NewAnnotation, now time.Time) (*document.Annotation, error) {
	ann := document.Annotation{
		ID:         uuid.NewString(),
		AnchorText: req.AnchorText,
		Content:    req.Content,
		Author:     req.Author,
		CreatedAt:  now,
	}

	if req.AnchorText != "" {
		matches := r.Document.Buffer().FindAll(req.AnchorText)
		if req.Occurrence < 0 || req.Occurrence >= len(matches) {
			return nil, fmt.Errorf("%w: %q occurrence %d of %d", ErrAnchorNotFound, req.AnchorText, req.Occurrence, len(matches))
		}
		start := matches[req.Occurrence]
		if r.Anchors == nil {
			r.Anchors = make(map[string]textbuf.Range)
		}
		r.Anchors[ann.ID] = textbuf.Range{Start: start, End: start + textbuf.Len(req.AnchorText)}
	}

	r.Document.Annotations = append(r.Document.Annotations, ann)
	return &ann, nil
}

// clone deep-copies the record so a failed mutation can be discarded.
func (r *record) clone() *record {
	out := &record{
		Document: *r.Document.Clone(),
		Anchors:  make(map[string]textbuf.Range, len(r.Anchors)),
	}
	for k, v := range r.Anchors {
		out.Anchors[k] = v
	}
	return out
}
