package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func TestNewBatch(t *testing.T) {
	b := NewBatch([]textbuf.EditOp{textbuf.Insert(0, "x")})

	_, err := uuid.Parse(b.ID)
	assert.NoError(t, err)
	assert.Empty(t, b.RequiredRevision)

	guarded := b.WithRevision("rev-1")
	assert.Equal(t, "rev-1", guarded.RequiredRevision)
	assert.Empty(t, b.RequiredRevision, "WithRevision must not mutate the receiver")
}

func TestMemoryExecutor_AppliesInOrder(t *testing.T) {
	exec := NewMemoryExecutor()
	exec.SetDocument("doc", "Todo application addressing")

	batch := NewBatch([]textbuf.EditOp{
		textbuf.Insert(0, "making the comment"),
		textbuf.Delete(18, 45),
	})
	receipt, err := exec.ExecuteBatch(context.Background(), "doc", batch)
	require.NoError(t, err)

	assert.Equal(t, batch.ID, receipt.BatchID)
	assert.Equal(t, 2, receipt.AppliedOps)
	body, _ := exec.Document("doc")
	assert.Equal(t, "making the comment", body)
}

func TestMemoryExecutor_AllOrNothing(t *testing.T) {
	exec := NewMemoryExecutor()
	exec.SetDocument("doc", "abc")

	_, err := exec.ExecuteBatch(context.Background(), "doc", NewBatch([]textbuf.EditOp{
		textbuf.Insert(3, "def"),
		textbuf.Delete(0, 99),
	}))
	require.ErrorIs(t, err, ErrBatchFailure)
	assert.ErrorIs(t, err, textbuf.ErrOutOfBounds)

	body, _ := exec.Document("doc")
	assert.Equal(t, "abc", body)
	assert.Len(t, exec.Batches(), 1)
}

func TestMemoryExecutor_FailWith(t *testing.T) {
	exec := NewMemoryExecutor()
	exec.SetDocument("doc", "abc")
	exec.FailWith = errors.New("service unavailable")

	_, err := exec.ExecuteBatch(context.Background(), "doc", NewBatch([]textbuf.EditOp{textbuf.Insert(0, "x")}))
	assert.ErrorIs(t, err, ErrBatchFailure)
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestMemoryExecutor_CancelledContext(t *testing.T) {
	exec := NewMemoryExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.ExecuteBatch(ctx, "doc", NewBatch(nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.Batches())
}
