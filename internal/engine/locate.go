package engine

import (
	"context"
	"sort"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Locate resolves every active annotation of a document. NotFound and
// Ambiguous annotations are reported as warnings; the call itself only
// fails when the document cannot be read.
func (e *Engine) Locate(ctx context.Context, req LocateRequest) (*LocateResult, error) {
	ctx, finish := e.begin(ctx, "locate", req.DocumentID)

	doc, err := e.read(ctx, req.DocumentID)
	if err != nil {
		finish(statusError, err)
		return nil, err
	}

	res, warnings := e.locate(doc, req.IncludeResolved, req.Overrides)
	sections := doc.SectionList()

	result := &LocateResult{
		DocumentID:  doc.ID,
		Revision:    doc.Revision,
		Length:      textbuf.Len(doc.Body),
		Annotations: make([]AnnotationStatus, 0, len(res)),
		Skipped:     len(doc.Annotations) - len(res),
		Warnings:    warnings,
	}

	for id, r := range res {
		a, _ := doc.Annotation(id)
		st := AnnotationStatus{
			ID:         id,
			Author:     a.Author,
			AnchorText: a.AnchorText,
			Resolved:   a.Resolved,
			Status:     r.Status,
			Matches:    r.Matches,
		}
		if r.Resolved() {
			rng := r.Range
			st.Range = &rng
			if p, ok := document.ParagraphAt(doc.Body, rng.Start); ok {
				st.Paragraph = &p
			}
			if s, ok := document.SectionAt(sections, rng.Start); ok {
				st.Section = s.Heading
			}
		}
		result.Annotations = append(result.Annotations, st)
	}
	sort.Slice(result.Annotations, func(i, j int) bool {
		return result.Annotations[i].ID < result.Annotations[j].ID
	})

	status := StatusSuccess
	if len(locator.IDsWithStatus(res, locator.StatusAmbiguous)) > 0 {
		status = StatusAmbiguous
	}
	finish(status, nil)
	return result, nil
}
