package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/store"
)

// Import stores a document. Its annotations are anchored at the first
// occurrence of their text; annotations whose text is absent are stored
// orphaned.
func (e *Engine) Import(ctx context.Context, req ImportRequest) (*store.DocumentInfo, error) {
	if req.Document == nil {
		return nil, fmt.Errorf("%w: no document", ErrValidation)
	}
	ctx, finish := e.begin(ctx, "import", req.Document.ID)

	info, err := e.store.PutDocument(ctx, req.Document, req.Overwrite)
	if err != nil {
		finish(statusError, err)
		return nil, fmt.Errorf("failed to import document: %w", err)
	}

	e.logger.Info("document imported",
		slog.String("document_id", info.ID),
		slog.Int("annotations", info.Annotations))
	finish(StatusSuccess, nil)
	return info, nil
}

// List returns the stored documents.
func (e *Engine) List(ctx context.Context) ([]store.DocumentInfo, error) {
	infos, err := e.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return infos, nil
}

// Show returns a document, its sections and a human-readable summary of
// its annotations.
func (e *Engine) Show(ctx context.Context, req ShowRequest) (*ShowResult, error) {
	doc, err := e.read(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	var anns []document.Annotation
	for _, a := range doc.Annotations {
		if a.Resolved && !req.IncludeResolved {
			continue
		}
		anns = append(anns, a)
	}

	return &ShowResult{
		Document: doc,
		Sections: doc.SectionList(),
		Summary:  document.Summary(anns),
	}, nil
}

// Delete removes a document.
func (e *Engine) Delete(ctx context.Context, docID string) error {
	if err := e.store.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
