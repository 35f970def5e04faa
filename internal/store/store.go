// Package store keeps documents and plays the part of the remote document
// service: it hands out snapshots, applies batches atomically and keeps
// annotations attached to their text across edits.
//
// Readers only ever see annotation anchor text. The store itself tracks the
// concrete range of every annotation, the way the real service does, and
// re-derives the anchor text from it after each batch.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danieljhkim/docmerge/internal/clock"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/hash"
	"github.com/danieljhkim/docmerge/internal/logging"
	"github.com/danieljhkim/docmerge/internal/metrics"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExists indicates a document with the same id already exists.
	ErrExists = errors.New("document already exists")

	// ErrEmptyBatch indicates a batch without ops.
	ErrEmptyBatch = errors.New("batch has no ops")

	// ErrAnchorNotFound indicates that a new annotation's anchor text does
	// not occur in the document (or not as often as requested).
	ErrAnchorNotFound = errors.New("anchor text not found")
)

// Reader fetches fresh document snapshots.
type Reader interface {
	GetDocument(ctx context.Context, id string) (*document.Document, error)
}

// Annotator attaches new annotations to a document.
type Annotator interface {
	CreateAnnotation(ctx context.Context, docID string, req NewAnnotation) (*document.Annotation, error)
}

// Store is the full document service surface.
type Store interface {
	Reader
	Annotator
	executor.Executor

	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	PutDocument(ctx context.Context, doc *document.Document, overwrite bool) (*DocumentInfo, error)
	DeleteDocument(ctx context.Context, id string) error
	Close() error
}

// NewAnnotation describes an annotation to create.
type NewAnnotation struct {
	// AnchorText is the text to attach to; empty for a document-level note
	AnchorText string `json:"anchor_text"`

	// Occurrence picks among repeated anchor texts, 0-based
	Occurrence int `json:"occurrence" validate:"gte=0"`

	Content string `json:"content" validate:"required"`
	Author  string `json:"author,omitempty"`
}

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Revision    string    `json:"revision"`
	Length      int       `json:"length"`
	Annotations int       `json:"annotations"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Options carries the collaborators shared by every backend.
type Options struct {
	Hasher  hash.Hasher
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Hasher == nil {
		o.Hasher = hash.NewSHA256Hasher()
	}
	if o.Clock == nil {
		o.Clock = &clock.RealClock{}
	}
	o.Logger = logging.OrDiscard(o.Logger)
	return o
}
