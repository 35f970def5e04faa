package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/planner"
	"github.com/danieljhkim/docmerge/internal/sequencer"
	"github.com/danieljhkim/docmerge/internal/store"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// sourceAnchorLength caps the anchor text of a source annotation.
const sourceAnchorLength = 50

// Insert merges new content into a document without splitting any
// annotation.
//
// The content goes at the end of req.Section (or at req.Offset, or at the
// end of the document). In safe mode an offset inside an annotation is
// moved past it; in ask mode the call stops with DECISION_REQUIRED; update
// mode rewrites req.TargetID's text instead, like Replace.
func (e *Engine) Insert(ctx context.Context, req InsertRequest) (*MutationResult, error) {
	ctx, finish := e.begin(ctx, "insert", req.DocumentID)
	result, err := e.insert(ctx, req)
	finish(statusOf(result, err), err)
	return result, err
}

func (e *Engine) insert(ctx context.Context, req InsertRequest) (*MutationResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = planner.ModeSafe
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, mode)
	}
	if mode == planner.ModeUpdate {
		return e.insertAsUpdate(ctx, req)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrValidation)
	}

	doc, err := e.read(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	res, warnings := e.locate(doc, req.IncludeResolved, req.Overrides)
	ranges := locator.CandidateRanges(res)
	buf := doc.Buffer()

	var point *planner.InsertionPoint
	if req.Offset != nil {
		point, err = planner.PlanSafeInsertion(buf, ranges, *req.Offset, mode)
	} else {
		point, err = planner.PlanSectionInsertion(buf, doc.SectionList(), req.Section, ranges, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to plan insertion: %w", err)
	}

	result := &MutationResult{
		Status:     StatusSuccess,
		DocumentID: doc.ID,
		Revision:   doc.Revision,
		Point:      point,
		Warnings:   warnings,
	}

	if point.SectionNotFound {
		result.Status = StatusSectionNotFound
		result.Warnings = append(result.Warnings, Warning{Code: StatusSectionNotFound, Message: point.Reason})
		e.logger.Warn("section not found",
			slog.String("document_id", doc.ID),
			slog.String("section", req.Section))
	}

	if point.NeedsDecision {
		result.Status = StatusDecisionRequired
		result.Message = fmt.Sprintf("Insertion would affect %d annotation(s): %s",
			len(point.AffectedIDs), strings.Join(point.AffectedIDs, ", "))
		return result, nil
	}

	if !point.Safe {
		e.metrics.ObserveRelocation()
		result.Warnings = append(result.Warnings, Warning{Code: StatusRelocated, Message: point.Reason})
	}

	head, tail := formatContent(req.Content)
	var attribution string
	if req.Attribution && req.Source != "" {
		attribution = fmt.Sprintf(" (from: %s)", req.Source)
	}

	plan, err := sequencer.PlanInsertion(point.Offset, head, attribution, tail)
	if err != nil {
		return nil, fmt.Errorf("failed to plan insertion: %w", err)
	}

	after, err := e.submit(ctx, doc, plan, req.RequireRevision, req.DryRun, result)
	if err != nil {
		return result, err
	}
	result.AnnotationsPreserved = len(point.AffectedIDs)

	if result.Applied && req.SourceAnnotation && req.Source != "" {
		result.SourceAnnotation = e.addSourceAnnotation(ctx, doc.ID, req, after, point.Offset, head, result)
	}

	switch {
	case result.DryRun:
		result.Message = fmt.Sprintf("Dry run: would insert %d code unit(s) at %d. %s",
			textbuf.Len(plan.Replacement), point.Offset, point.Reason)
	default:
		result.Message = fmt.Sprintf("Content inserted successfully. %s", point.Reason)
	}
	return result, nil
}

func (e *Engine) insertAsUpdate(ctx context.Context, req InsertRequest) (*MutationResult, error) {
	if req.TargetID == "" {
		return nil, fmt.Errorf("%w: update mode needs a target annotation", ErrValidation)
	}
	rr := ReplaceRequest{
		DocumentID:      req.DocumentID,
		AnnotationID:    req.TargetID,
		Replacement:     req.Content,
		Side:            req.Side,
		IncludeResolved: req.IncludeResolved,
		RequireRevision: req.RequireRevision,
		DryRun:          req.DryRun,
	}
	if occ, ok := req.Overrides[req.TargetID]; ok {
		rr.Occurrence = &occ
	}
	return e.replace(ctx, rr)
}

// formatContent pads content with blank lines on both sides unless it
// already starts or ends with a newline, and splits off the trailing
// newlines so that an attribution can go between.
func formatContent(content string) (head, tail string) {
	formatted := content
	if !strings.HasPrefix(formatted, "\n") {
		formatted = "\n\n" + formatted
	}
	if !strings.HasSuffix(formatted, "\n") {
		formatted += "\n\n"
	}
	head = strings.TrimRight(formatted, "\n")
	return head, formatted[len(head):]
}

// addSourceAnnotation attaches "Added from <source>" to the inserted text.
// Failures only produce a warning: the content is already in.
func (e *Engine) addSourceAnnotation(ctx context.Context, docID string, req InsertRequest, after textbuf.Buffer, offset int, head string, result *MutationResult) *document.Annotation {
	clean := strings.TrimLeft(head, " \t\r\n")
	start := offset + textbuf.Len(head) - textbuf.Len(clean)
	anchor := textbuf.Truncate(strings.TrimSpace(clean), sourceAnchorLength)

	content := fmt.Sprintf("📝 Added from %s", req.Source)
	if p, ok := document.ParagraphAt(after.String(), start); ok {
		content += fmt.Sprintf("\n\n📍 Location: Paragraph #%d\n📝 Context: \"...%s...\"", p.Index, p.Excerpt)
	}

	na := store.NewAnnotation{Content: content, Author: req.Author}
	for i, m := range after.FindAll(anchor) {
		if m == start {
			na.AnchorText = anchor
			na.Occurrence = i
			break
		}
	}

	ann, err := e.store.CreateAnnotation(ctx, docID, na)
	if errors.Is(err, store.ErrAnchorNotFound) {
		na.AnchorText, na.Occurrence = "", 0
		ann, err = e.store.CreateAnnotation(ctx, docID, na)
	}
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			Code:    StatusNotFound,
			Message: fmt.Sprintf("could not create source annotation: %v", err),
		})
		e.logger.Warn("source annotation failed", slog.String("document_id", docID), slog.Any("error", err))
		return nil
	}
	return ann
}

// statusOf picks the status recorded for an operation.
func statusOf(result *MutationResult, err error) Status {
	if result != nil {
		return result.Status
	}
	if err != nil {
		return statusError
	}
	return StatusSuccess
}
