package engine

import (
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/planner"
	"github.com/danieljhkim/docmerge/internal/sequencer"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// AnnotationStatus is the located state of one annotation.
type AnnotationStatus struct {
	ID         string              `json:"id"`
	Author     string              `json:"author,omitempty"`
	AnchorText string              `json:"anchor_text"`
	Resolved   bool                `json:"resolved,omitempty"`
	Status     locator.Status      `json:"status"`
	Range      *textbuf.Range      `json:"range,omitempty"`
	Matches    []int               `json:"matches,omitempty"`
	Paragraph  *document.Paragraph `json:"paragraph,omitempty"`
	Section    string              `json:"section,omitempty"`
}

// LocateResult represents the annotations of a document as located against
// a fresh snapshot.
type LocateResult struct {
	DocumentID string `json:"document_id"`
	Revision   string `json:"revision"`
	Length     int    `json:"length"`

	// Annotations are sorted by id
	Annotations []AnnotationStatus `json:"annotations"`

	// Skipped counts annotations not located: orphaned, document-level or
	// resolved (unless requested)
	Skipped int `json:"skipped"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// MutationResult represents the outcome of Insert and Replace.
type MutationResult struct {
	Status     Status `json:"status"`
	DocumentID string `json:"document_id"`

	// Revision is the revision the plan was made against
	Revision string `json:"revision"`

	// Point is the planner's decision
	Point *planner.InsertionPoint `json:"insertion_point,omitempty"`

	// Plan is the op list that was (or would be) submitted
	Plan *sequencer.MutationPlan `json:"plan,omitempty"`

	// Receipt acknowledges the submitted batch; nil for dry runs
	Receipt *executor.Receipt `json:"receipt,omitempty"`

	// Applied is true once the batch landed
	Applied bool `json:"applied"`
	DryRun  bool `json:"dry_run,omitempty"`

	// AnnotationsPreserved counts annotations the plan kept intact
	AnnotationsPreserved int `json:"annotations_preserved"`

	// SourceAnnotation is the annotation added on the merged text
	SourceAnnotation *document.Annotation `json:"source_annotation,omitempty"`

	// Diff is a unified diff of the change
	Diff string `json:"diff,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
	Message  string    `json:"message"`
}

// ShowResult represents a document with its annotation summary.
type ShowResult struct {
	Document *document.Document `json:"document"`
	Sections []document.Section `json:"sections"`
	Summary  string             `json:"summary"`
}
