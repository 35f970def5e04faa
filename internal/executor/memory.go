package executor

import (
	"context"
	"sync"
	"time"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// MemoryExecutor applies batches to in-memory buffers and records every
// batch it saw. It is meant for tests and dry runs.
type MemoryExecutor struct {
	mu      sync.Mutex
	docs    map[string]textbuf.Buffer
	batches []Batch
	now     func() time.Time

	// FailWith, when set, makes every batch fail with this cause
	FailWith error
}

// NewMemoryExecutor creates a MemoryExecutor with no documents.
func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{
		docs: make(map[string]textbuf.Buffer),
		now:  time.Now,
	}
}

// SetDocument seeds or replaces a document body.
func (e *MemoryExecutor) SetDocument(id, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[id] = textbuf.New(body)
}

// Document returns the current body of a document.
func (e *MemoryExecutor) Document(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	buf, ok := e.docs[id]
	return buf.String(), ok
}

// Batches returns the batches received so far, including failed ones.
func (e *MemoryExecutor) Batches() []Batch {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Batch, len(e.batches))
	copy(out, e.batches)
	return out
}

// ExecuteBatch implements Executor.
func (e *MemoryExecutor) ExecuteBatch(ctx context.Context, docID string, batch Batch) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.batches = append(e.batches, batch)
	if e.FailWith != nil {
		return nil, Failure(batch.ID, e.FailWith)
	}

	buf, ok := e.docs[docID]
	if !ok {
		buf = textbuf.New("")
	}

	next, err := textbuf.ApplyOps(buf, batch.Ops)
	if err != nil {
		return nil, Failure(batch.ID, err)
	}
	e.docs[docID] = next

	return &Receipt{
		BatchID:    batch.ID,
		DocumentID: docID,
		AppliedOps: len(batch.Ops),
		AppliedAt:  e.now(),
	}, nil
}
