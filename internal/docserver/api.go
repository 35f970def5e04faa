package docserver

import (
	"errors"
	"net/http"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/store"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Error codes carried in ErrorResponse.Code. Clients map them back to the
// sentinel errors of the store and executor packages.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeExists         = "EXISTS"
	CodeStaleRevision  = "STALE_REVISION"
	CodeEmptyBatch     = "EMPTY_BATCH"
	CodeBatchFailure   = "BATCH_FAILURE"
	CodeInvalid        = "INVALID"
	CodeAnchorNotFound = "ANCHOR_NOT_FOUND"
	CodeInternal       = "INTERNAL"
)

// BatchRequest is the body of POST /v1/documents/:id/batch.
type BatchRequest struct {
	BatchID          string           `json:"batch_id" validate:"omitempty,max=128,printascii"`
	RequiredRevision string           `json:"required_revision,omitempty" validate:"omitempty,max=128"`
	Ops              []textbuf.EditOp `json:"ops"`
}

// Batch converts the request to an executor batch, assigning an id when
// the caller did not.
func (r BatchRequest) Batch() executor.Batch {
	b := executor.NewBatch(r.Ops)
	if r.BatchID != "" {
		b.ID = r.BatchID
	}
	b.RequiredRevision = r.RequiredRevision
	return b
}

// ListResponse is the body of GET /v1/documents.
type ListResponse struct {
	Documents []store.DocumentInfo `json:"documents"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a store or executor error to an HTTP status and code.
// Order matters: a stale revision is also a batch failure.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, store.ErrExists):
		return http.StatusConflict, CodeExists
	case errors.Is(err, executor.ErrStaleRevision):
		return http.StatusConflict, CodeStaleRevision
	case errors.Is(err, store.ErrEmptyBatch):
		return http.StatusUnprocessableEntity, CodeEmptyBatch
	case errors.Is(err, executor.ErrBatchFailure):
		return http.StatusUnprocessableEntity, CodeBatchFailure
	case errors.Is(err, document.ErrInvalidDocument):
		return http.StatusUnprocessableEntity, CodeInvalid
	case errors.Is(err, store.ErrAnchorNotFound):
		return http.StatusUnprocessableEntity, CodeAnchorNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
