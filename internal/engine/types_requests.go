package engine

import (
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/planner"
	"github.com/danieljhkim/docmerge/internal/sequencer"
)

// LocateRequest represents a request to resolve a document's annotations.
type LocateRequest struct {
	// DocumentID is the document to read
	DocumentID string

	// Overrides pick an occurrence for ambiguous annotations, by id
	Overrides map[string]int

	// IncludeResolved also locates resolved annotations
	IncludeResolved bool
}

// InsertRequest represents a request to merge new content into a document.
type InsertRequest struct {
	// DocumentID is the document to merge into
	DocumentID string

	// Content is the text to insert
	Content string

	// Section names the heading to insert after; empty means end of document
	Section string

	// Offset, when set, is used instead of Section as the preferred offset
	Offset *int

	// Mode is safe (relocate), ask (report and stop) or update (replace
	// TargetID's text). Empty means safe.
	Mode planner.Mode

	// TargetID is the annotation to rewrite in update mode
	TargetID string

	// Side is the split side for update mode
	Side sequencer.AnchorSide

	// Source describes where the content came from, e.g. "standup 03/02"
	Source string

	// Attribution appends " (from: <Source>)" right after the content
	Attribution bool

	// SourceAnnotation attaches an "Added from <Source>" annotation to the
	// inserted text
	SourceAnnotation bool

	// Author is recorded on the source annotation
	Author string

	// Overrides pick an occurrence for ambiguous annotations, by id
	Overrides map[string]int

	// IncludeResolved also protects resolved annotations
	IncludeResolved bool

	// RequireRevision makes the batch fail if the document changed since it
	// was read
	RequireRevision bool

	// DryRun plans and previews without submitting
	DryRun bool
}

// ReplaceRequest represents a request to rewrite an annotation's text
// while keeping the annotation attached.
type ReplaceRequest struct {
	// DocumentID is the document to edit
	DocumentID string

	// AnnotationID is the annotation whose anchored text is replaced
	AnnotationID string

	// Replacement is the new text; empty orphans the annotation
	Replacement string

	// Side picks the split point: start, end or middle
	Side sequencer.AnchorSide

	// Occurrence picks among repeated anchor texts, 0-based
	Occurrence *int

	// AllowOrphan lets an empty replacement proceed
	AllowOrphan bool

	// IncludeResolved allows targeting resolved annotations
	IncludeResolved bool

	// RequireRevision makes the batch fail if the document changed since it
	// was read
	RequireRevision bool

	// DryRun plans and previews without submitting
	DryRun bool
}

// ImportRequest represents a request to store a document.
type ImportRequest struct {
	Document *document.Document

	// Overwrite replaces an existing document with the same id
	Overwrite bool
}

// ShowRequest represents a request to display a document.
type ShowRequest struct {
	DocumentID string

	// IncludeResolved lists resolved annotations too
	IncludeResolved bool
}
