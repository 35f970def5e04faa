package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/planner"
	"github.com/danieljhkim/docmerge/internal/sequencer"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Replace rewrites the text an annotation is anchored to, keeping the
// annotation attached to the new text.
//
// The target must resolve to exactly one range: a missing anchor yields
// ANNOTATION_NOT_FOUND and a repeated one ANNOTATION_AMBIGUOUS, both with
// nothing submitted. An empty replacement orphans the annotation and only
// proceeds with AllowOrphan.
func (e *Engine) Replace(ctx context.Context, req ReplaceRequest) (*MutationResult, error) {
	ctx, finish := e.begin(ctx, "replace", req.DocumentID)
	result, err := e.replace(ctx, req)
	finish(statusOf(result, err), err)
	return result, err
}

func (e *Engine) replace(ctx context.Context, req ReplaceRequest) (*MutationResult, error) {
	if req.AnnotationID == "" {
		return nil, fmt.Errorf("%w: annotation id is required", ErrValidation)
	}

	doc, err := e.read(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{
		DocumentID: doc.ID,
		Revision:   doc.Revision,
	}

	target, ok := doc.Annotation(req.AnnotationID)
	switch {
	case !ok:
		result.Status = StatusNotFound
		result.Message = fmt.Sprintf("Annotation %s does not exist", req.AnnotationID)
		return result, fmt.Errorf("%w: %s", ErrNotFound, req.AnnotationID)
	case target.AnchorText == "" || target.Orphaned:
		result.Status = StatusNotFound
		result.Message = fmt.Sprintf("Annotation %s has no anchored text", req.AnnotationID)
		return result, fmt.Errorf("%w: %s is not anchored", ErrNotFound, req.AnnotationID)
	case target.Resolved && !req.IncludeResolved:
		return nil, fmt.Errorf("%w: annotation %s is resolved", ErrValidation, req.AnnotationID)
	}

	overrides := map[string]int{}
	if req.Occurrence != nil {
		overrides[req.AnnotationID] = *req.Occurrence
	}
	res, warnings := e.locate(doc, req.IncludeResolved, overrides)
	result.Warnings = warnings

	r := res[req.AnnotationID]
	switch r.Status {
	case locator.StatusNotFound:
		result.Status = StatusNotFound
		result.Message = fmt.Sprintf("Anchor text of %s is not in the document", req.AnnotationID)
		return result, fmt.Errorf("%w: %s", ErrNotFound, req.AnnotationID)
	case locator.StatusAmbiguous:
		result.Status = StatusAmbiguous
		result.Message = fmt.Sprintf("Anchor text of %s occurs at offsets %s; pick one with an occurrence index",
			req.AnnotationID, joinInts(r.Matches))
		return result, fmt.Errorf("%w: %s has %d matches", ErrAmbiguous, req.AnnotationID, len(r.Matches))
	}

	point, err := planner.PlanUpdateTarget(locator.CandidateRanges(res), req.AnnotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to plan replacement: %w", err)
	}
	result.Point = point

	plan, err := sequencer.PlanReplacementIn(doc.Buffer(), r.Range, req.Replacement, req.Side)
	if err != nil {
		return nil, fmt.Errorf("failed to plan replacement: %w", err)
	}
	plan.TargetID = req.AnnotationID
	if !point.Safe {
		result.Warnings = append(result.Warnings, overlapWarnings(plan, locator.CandidateRanges(res))...)
	}

	result.Status = StatusSuccess
	if plan.Orphaned {
		result.Status = StatusOrphanedWarning
		result.Warnings = append(result.Warnings, Warning{
			Code:         StatusOrphanedWarning,
			AnnotationID: req.AnnotationID,
			Message:      plan.Warning().Error(),
		})
		e.logger.Warn("replacement orphans annotation",
			slog.String("document_id", doc.ID),
			slog.String("annotation_id", req.AnnotationID),
			slog.Bool("allowed", req.AllowOrphan))
		if !req.AllowOrphan {
			result.Plan = plan
			result.Message = fmt.Sprintf("Replacing with empty text would orphan %s; allow it explicitly to proceed", req.AnnotationID)
			return result, fmt.Errorf("%w: %s", ErrOrphanRefused, req.AnnotationID)
		}
	}

	if _, err := e.submit(ctx, doc, plan, req.RequireRevision, req.DryRun, result); err != nil {
		return result, err
	}

	result.AnnotationsPreserved = preservedCount(locator.ResolvedRanges(res), plan, result.Receipt)

	if result.DryRun {
		result.Message = fmt.Sprintf("Dry run: would replace %s of %s with %d op(s)", plan.Range, req.AnnotationID, len(plan.Ops))
	} else {
		result.Message = fmt.Sprintf("Replaced %s of %s; annotation now spans %s", plan.Range, req.AnnotationID, plan.ResultRange())
	}
	return result, nil
}

// overlapWarnings reports the other annotations whose text the plan
// touches: an orphan warning for those it removes, an overlap warning for
// those that survive with changed text.
func overlapWarnings(plan *sequencer.MutationPlan, ranges []locator.AnchoredRange) []Warning {
	var out []Warning
	seen := make(map[string]bool)
	for _, ar := range ranges {
		if ar.ID == plan.TargetID || seen[ar.ID] || !ar.Range.Overlaps(plan.Range) {
			continue
		}
		seen[ar.ID] = true

		if _, alive := textbuf.Track(ar.Range, plan.Ops); !alive {
			out = append(out, Warning{
				Code:         StatusOrphanedWarning,
				AnnotationID: ar.ID,
				Message:      fmt.Sprintf("replacement removes all text of annotation %s", ar.ID),
			})
			continue
		}
		out = append(out, Warning{
			Code:         StatusOverlap,
			AnnotationID: ar.ID,
			Message:      fmt.Sprintf("replacement also changes the text of annotation %s", ar.ID),
		})
	}
	return out
}

// preservedCount is the number of located annotations still anchored after
// the plan: the receipt decides once applied, tracking predicts it for a
// dry run.
func preservedCount(located []locator.AnchoredRange, plan *sequencer.MutationPlan, receipt *executor.Receipt) int {
	n := len(located)
	if receipt != nil {
		orphaned := make(map[string]bool, len(receipt.Orphaned))
		for _, id := range receipt.Orphaned {
			orphaned[id] = true
		}
		for _, ar := range located {
			if orphaned[ar.ID] {
				n--
			}
		}
		return n
	}
	for _, ar := range located {
		if _, alive := textbuf.Track(ar.Range, plan.Ops); !alive {
			n--
		}
	}
	return n
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
