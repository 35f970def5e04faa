package docserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/metrics"
	"github.com/danieljhkim/docmerge/internal/store"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server *Server
	store  *store.DocStore
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	st := store.NewMemoryStore(store.Options{})
	srv := New(Config{
		Store:    st,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	return &fixture{server: srv, store: st, reg: reg}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sample() document.Document {
	return document.Document{
		ID:   "notes",
		Body: "Hello world, this is a test.",
		Annotations: []document.Annotation{
			{ID: "c1", AnchorText: "world", Content: "Which world?"},
		},
	}
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_DocumentLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/documents", sample())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	info := decode[store.DocumentInfo](t, rec)
	assert.Equal(t, "notes", info.ID)
	assert.Equal(t, 28, info.Length)

	rec = f.do(t, http.MethodPost, "/v1/documents", sample())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeExists, decode[ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/v1/documents?overwrite=true", sample())
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListResponse](t, rec)
	require.Len(t, list.Documents, 1)

	rec = f.do(t, http.MethodGet, "/v1/documents/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[document.Document](t, rec)
	assert.Equal(t, sample().Body, doc.Body)
	assert.Equal(t, info.Revision, doc.Revision)

	rec = f.do(t, http.MethodDelete, "/v1/documents/notes", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/documents/notes", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestServer_ImportRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	bad := sample()
	bad.ID = ""
	rec := f.do(t, http.MethodPost, "/v1/documents", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, CodeInvalid, decode[ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/v1/documents?overwrite=maybe", sample())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Batch(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/documents", sample())
	require.Equal(t, http.StatusCreated, rec.Code)
	info := decode[store.DocumentInfo](t, rec)

	req := BatchRequest{
		BatchID:          "b-1",
		RequiredRevision: info.Revision,
		Ops: []textbuf.EditOp{
			textbuf.Insert(6, "Earth"),
			textbuf.Delete(11, 16),
		},
	}
	rec = f.do(t, http.MethodPost, "/v1/documents/notes/batch", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	receipt := decode[executor.Receipt](t, rec)
	assert.Equal(t, "b-1", receipt.BatchID)
	assert.Equal(t, 2, receipt.AppliedOps)

	doc, err := f.store.GetDocument(context.Background(), "notes")
	require.NoError(t, err)
	assert.Equal(t, "Hello Earth, this is a test.", doc.Body)
	assert.Equal(t, "Earth", doc.Annotations[0].AnchorText)

	// Same required revision again is now stale.
	rec = f.do(t, http.MethodPost, "/v1/documents/notes/batch", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeStaleRevision, decode[ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/v1/documents/notes/batch", BatchRequest{
		Ops: []textbuf.EditOp{textbuf.Delete(0, 500)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, CodeBatchFailure, decode[ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/v1/documents/notes/batch", BatchRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, CodeEmptyBatch, decode[ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/v1/documents/missing/batch", BatchRequest{
		Ops: []textbuf.EditOp{textbuf.Insert(0, "x")},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_BatchBadBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/notes/batch",
		bytes.NewBufferString(`{"ops":[{"type":"SPLICE"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Annotations(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/documents", sample())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/documents/notes/annotations", store.NewAnnotation{
		AnchorText: "test",
		Content:    "Added from standup",
		Author:     "bot",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ann := decode[document.Annotation](t, rec)
	assert.NotEmpty(t, ann.ID)
	assert.Equal(t, "test", ann.AnchorText)

	rec = f.do(t, http.MethodPost, "/v1/documents/notes/annotations", store.NewAnnotation{
		AnchorText: "nowhere",
		Content:    "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, CodeAnchorNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/healthz", nil)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `docmerge_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestServer_Serve(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
