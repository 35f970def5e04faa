package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/preview"
	"github.com/danieljhkim/docmerge/internal/sequencer"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// retryHint is appended to every batch failure message. The engine never
// repairs or retries on its own.
const retryHint = "re-read the document and plan again"

// submit verifies plan against doc, renders the diff and, unless dryRun,
// sends the plan as one batch. It returns the buffer the plan produces.
func (e *Engine) submit(ctx context.Context, doc *document.Document, plan *sequencer.MutationPlan, requireRevision, dryRun bool, result *MutationResult) (textbuf.Buffer, error) {
	before := doc.Buffer()
	after, err := sequencer.Verify(before, plan)
	if err != nil {
		return before, fmt.Errorf("failed to verify plan: %w", err)
	}
	result.Plan = plan

	fd, err := preview.Diff(doc.ID, doc.Body, after.String(), preview.DefaultContext)
	if err == nil {
		result.Diff, err = preview.Render(fd)
	}
	if err != nil {
		e.logger.Warn("diff preview unavailable", slog.Any("error", err))
	}

	if dryRun {
		result.DryRun = true
		return after, nil
	}

	batch := executor.NewBatch(plan.Ops)
	if requireRevision {
		batch = batch.WithRevision(doc.Revision)
	}

	receipt, err := e.store.ExecuteBatch(ctx, doc.ID, batch)
	if err != nil {
		result.Status = StatusBatchFailure
		result.Message = fmt.Sprintf("Batch %s was rejected; %s", batch.ID, retryHint)
		e.logger.Error("batch failed",
			slog.String("document_id", doc.ID),
			slog.String("batch_id", batch.ID),
			slog.Any("error", err))
		return before, fmt.Errorf("failed to apply batch: %w", err)
	}

	result.Receipt = receipt
	result.Applied = true
	e.logger.Info("batch applied",
		slog.String("document_id", doc.ID),
		slog.String("batch_id", receipt.BatchID),
		slog.String("revision", receipt.Revision),
		slog.Int("ops", receipt.AppliedOps))

	for _, id := range receipt.Orphaned {
		if plan.Orphaned && id == plan.TargetID {
			continue
		}
		result.Warnings = append(result.Warnings, Warning{
			Code:         StatusOrphanedWarning,
			AnnotationID: id,
			Message:      fmt.Sprintf("annotation %s lost its anchored text", id),
		})
		e.logger.Warn("annotation orphaned",
			slog.String("document_id", doc.ID),
			slog.String("annotation_id", id))
	}
	return after, nil
}
