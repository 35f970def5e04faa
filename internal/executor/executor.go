// Package executor defines the boundary to the document service's atomic
// batch apply.
//
// An Executor applies a Batch all-or-nothing. Ops run strictly in list
// order, each against the buffer produced by the ones before it. A failed
// batch leaves the document untouched; the only recovery is to read a fresh
// snapshot and plan again.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

var (
	// ErrBatchFailure indicates that the service rejected the whole batch.
	ErrBatchFailure = errors.New("batch failed")

	// ErrStaleRevision indicates that the document changed since it was read.
	ErrStaleRevision = errors.New("document revision changed")
)

// Executor submits a batch of ops against a document.
type Executor interface {
	ExecuteBatch(ctx context.Context, docID string, batch Batch) (*Receipt, error)
}

// Batch is one atomic unit of work.
type Batch struct {
	// ID identifies the batch in receipts and logs
	ID string `json:"batch_id"`

	// Ops are applied in order
	Ops []textbuf.EditOp `json:"ops" validate:"required,min=1"`

	// RequiredRevision, when set, must match the document's current revision
	RequiredRevision string `json:"required_revision,omitempty"`
}

// NewBatch creates a batch with a fresh id.
func NewBatch(ops []textbuf.EditOp) Batch {
	return Batch{
		ID:  uuid.NewString(),
		Ops: ops,
	}
}

// WithRevision returns a copy of the batch guarded by revision.
func (b Batch) WithRevision(revision string) Batch {
	b.RequiredRevision = revision
	return b
}

// Receipt acknowledges an applied batch.
type Receipt struct {
	BatchID    string    `json:"batch_id"`
	DocumentID string    `json:"document_id"`
	Revision   string    `json:"revision"`
	AppliedOps int       `json:"applied_ops"`
	AppliedAt  time.Time `json:"applied_at"`

	// Orphaned lists annotations whose anchored text vanished
	Orphaned []string `json:"orphaned,omitempty"`
}

// Failure wraps a batch error with ErrBatchFailure, keeping the cause.
func Failure(batchID string, cause error) error {
	return fmt.Errorf("%w: batch %s: %w", ErrBatchFailure, batchID, cause)
}
