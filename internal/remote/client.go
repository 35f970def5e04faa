// Package remote talks to a docmerge document service over HTTP. Client
// implements store.Store, so the engine can run against a remote service
// exactly as it runs against a local store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/danieljhkim/docmerge/internal/docserver"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
	"github.com/danieljhkim/docmerge/internal/logging"
	"github.com/danieljhkim/docmerge/internal/store"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the document service.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

var _ store.Store = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service at serverURL.
func NewClient(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, ErrRemoteNotConfigured
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}

	c := &Client{
		base: strings.TrimSuffix(u.String(), "/"),
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	return c, nil
}

// GetDocument fetches a fresh snapshot.
func (c *Client) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	var doc document.Document
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id), nil, &doc, ""); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments lists the documents held by the service.
func (c *Client) ListDocuments(ctx context.Context) ([]store.DocumentInfo, error) {
	var resp docserver.ListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/documents", nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// PutDocument imports doc.
func (c *Client) PutDocument(ctx context.Context, doc *document.Document, overwrite bool) (*store.DocumentInfo, error) {
	path := "/v1/documents"
	if overwrite {
		path += "?overwrite=true"
	}
	var info store.DocumentInfo
	if err := c.do(ctx, http.MethodPost, path, doc, &info, ""); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(id), nil, nil, "")
}

// ExecuteBatch submits batch. Failures carry executor.ErrBatchFailure (and
// executor.ErrStaleRevision for a revision mismatch) just like a local store.
func (c *Client) ExecuteBatch(ctx context.Context, docID string, batch executor.Batch) (*executor.Receipt, error) {
	req := docserver.BatchRequest{
		BatchID:          batch.ID,
		RequiredRevision: batch.RequiredRevision,
		Ops:              batch.Ops,
	}
	var receipt executor.Receipt
	path := "/v1/documents/" + url.PathEscape(docID) + "/batch"
	if err := c.do(ctx, http.MethodPost, path, req, &receipt, batch.ID); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CreateAnnotation attaches a new annotation.
func (c *Client) CreateAnnotation(ctx context.Context, docID string, req store.NewAnnotation) (*document.Annotation, error) {
	var ann document.Annotation
	path := "/v1/documents/" + url.PathEscape(docID) + "/annotations"
	if err := c.do(ctx, http.MethodPost, path, req, &ann, ""); err != nil {
		return nil, err
	}
	return &ann, nil
}

// Close drops idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, batchID string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach document service: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("document service call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 300 {
		return decodeError(resp, batchID)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
