package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/danieljhkim/docmerge/internal/docserver"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/store"
)

// ResponseError is a non-2xx reply from the document service. It unwraps to
// the sentinel errors matching its code, so errors.Is works across the wire.
type ResponseError struct {
	StatusCode int
	Code       string
	Message    string
	BatchID    string

	causes []error
}

func (e *ResponseError) Error() string {
	if e.BatchID != "" {
		return fmt.Sprintf("document service %d: batch %s: %s", e.StatusCode, e.BatchID, e.Message)
	}
	return fmt.Sprintf("document service %d: %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() []error {
	return e.causes
}

func decodeError(resp *http.Response, batchID string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er docserver.ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Code == "" {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	e := &ResponseError{
		StatusCode: resp.StatusCode,
		Code:       er.Code,
		Message:    er.Error,
		BatchID:    batchID,
	}
	switch er.Code {
	case docserver.CodeNotFound:
		e.causes = []error{store.ErrNotFound}
	case docserver.CodeExists:
		e.causes = []error{store.ErrExists}
	case docserver.CodeStaleRevision:
		e.causes = []error{executor.ErrBatchFailure, executor.ErrStaleRevision}
	case docserver.CodeEmptyBatch:
		e.causes = []error{executor.ErrBatchFailure, store.ErrEmptyBatch}
	case docserver.CodeBatchFailure:
		e.causes = []error{executor.ErrBatchFailure}
	case docserver.CodeInvalid:
		e.causes = []error{document.ErrInvalidDocument}
	case docserver.CodeAnchorNotFound:
		e.causes = []error{store.ErrAnchorNotFound}
	default:
		e.causes = []error{ErrUnexpectedResponse}
	}
	return e
}
