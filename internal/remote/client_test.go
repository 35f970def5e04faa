package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/docmerge/internal/docserver"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/store"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(docserver.New(docserver.Config{Store: store.NewMemoryStore(store.Options{})}).Handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrRemoteNotConfigured)

	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8474/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8474", c.base)
}

func TestClient_RoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	info, err := c.PutDocument(ctx, &document.Document{
		ID:   "plan",
		Body: "Ship it on Friday.",
		Annotations: []document.Annotation{
			{ID: "c1", AnchorText: "Friday", Content: "Too soon?"},
		},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "plan", info.ID)

	_, err = c.PutDocument(ctx, &document.Document{ID: "plan", Body: "x"}, false)
	assert.ErrorIs(t, err, store.ErrExists)

	docs, err := c.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc, err := c.GetDocument(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, info.Revision, doc.Revision)

	batch := executor.NewBatch([]textbuf.EditOp{
		textbuf.Insert(11, "Monday"),
		textbuf.Delete(17, 23),
	}).WithRevision(doc.Revision)
	receipt, err := c.ExecuteBatch(ctx, "plan", batch)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, receipt.BatchID)

	doc, err = c.GetDocument(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, "Ship it on Monday.", doc.Body)
	assert.Equal(t, "Monday", doc.Annotations[0].AnchorText)

	ann, err := c.CreateAnnotation(ctx, "plan", store.NewAnnotation{AnchorText: "Ship", Content: "Who ships?"})
	require.NoError(t, err)
	assert.NotEmpty(t, ann.ID)

	require.NoError(t, c.DeleteDocument(ctx, "plan"))
	_, err = c.GetDocument(ctx, "plan")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClient_BatchErrors(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	_, err := c.PutDocument(ctx, &document.Document{ID: "d", Body: "abc"}, false)
	require.NoError(t, err)

	_, err = c.ExecuteBatch(ctx, "d", executor.NewBatch([]textbuf.EditOp{textbuf.Insert(0, "x")}).WithRevision("old"))
	assert.ErrorIs(t, err, executor.ErrBatchFailure)
	assert.ErrorIs(t, err, executor.ErrStaleRevision)

	var rerr *ResponseError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusConflict, rerr.StatusCode)

	_, err = c.ExecuteBatch(ctx, "d", executor.NewBatch([]textbuf.EditOp{textbuf.Delete(1, 9)}))
	assert.ErrorIs(t, err, executor.ErrBatchFailure)
	assert.NotErrorIs(t, err, executor.ErrStaleRevision)

	_, err = c.ExecuteBatch(ctx, "d", executor.NewBatch(nil))
	assert.ErrorIs(t, err, store.ErrEmptyBatch)

	_, err = c.CreateAnnotation(ctx, "d", store.NewAnnotation{AnchorText: "zzz", Content: "x"})
	assert.ErrorIs(t, err, store.ErrAnchorNotFound)
}

func TestClient_UnexpectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.GetDocument(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}
