// Package engine provides the orchestration layer for docmerge operations.
//
// The engine sits between the CLI (or any other caller) and the core
// packages. Every operation reads a fresh document snapshot, derives
// everything it needs from it, submits at most one batch and forgets the
// snapshot again.
//
// Key components:
//   - Engine: main orchestrator, constructed over a store.Store
//   - Locate: resolves annotations and reports their status
//   - Insert: merges new content without splitting annotations
//   - Replace: rewrites an annotation's text while keeping it attached
//   - Import/List/Show: document management around the merge flow
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danieljhkim/docmerge/internal/clock"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/logging"
	"github.com/danieljhkim/docmerge/internal/metrics"
	"github.com/danieljhkim/docmerge/internal/store"
)

const tracerName = "github.com/danieljhkim/docmerge/internal/engine"

// Engine orchestrates all docmerge operations.
// It is the main API surface called by the CLI.
type Engine struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   clock.Clock
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics sink. Nil records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock sets the clock used for operation timing.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTracerProvider sets where spans go. The global provider is used
// otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// New creates a new Engine over st.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		clock: &clock.RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDiscard(e.logger)
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store {
	return e.store
}

// begin starts a span and a timer for one operation. The returned finish
// func records the outcome.
func (e *Engine) begin(ctx context.Context, op, docID string) (context.Context, func(status Status, err error)) {
	ctx, span := e.tracer.Start(ctx, "engine."+op,
		trace.WithAttributes(attribute.String("docmerge.document_id", docID)))
	start := e.clock.Now()

	return ctx, func(status Status, err error) {
		span.SetAttributes(attribute.String("docmerge.status", string(status)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		e.metrics.ObserveOperation(op, string(status), elapsedSince(e.clock, start))
	}
}

func elapsedSince(c clock.Clock, start time.Time) time.Duration {
	d := c.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// read fetches a fresh snapshot.
func (e *Engine) read(ctx context.Context, docID string) (*document.Document, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	doc, err := e.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", docID, err)
	}
	return doc, nil
}

// locate resolves the active annotations of doc and turns every NotFound
// and Ambiguous resolution into a warning.
func (e *Engine) locate(doc *document.Document, includeResolved bool, overrides map[string]int) (map[string]locator.Resolution, []Warning) {
	res := locator.Locate(doc.Buffer(), doc.Active(includeResolved), overrides)

	var warnings []Warning
	for _, id := range locator.IDsWithStatus(res, locator.StatusNotFound) {
		warnings = append(warnings, Warning{
			Code:         StatusNotFound,
			AnnotationID: id,
			Message:      fmt.Sprintf("anchor text of %s not found; it is not protected", id),
		})
	}
	for _, id := range locator.IDsWithStatus(res, locator.StatusAmbiguous) {
		warnings = append(warnings, Warning{
			Code:         StatusAmbiguous,
			AnnotationID: id,
			Message: fmt.Sprintf("anchor text of %s occurs %d times; every occurrence is protected",
				id, len(res[id].Matches)),
		})
	}

	for _, r := range res {
		e.metrics.ObserveLocate(string(r.Status))
	}
	for _, w := range warnings {
		e.logger.Warn("annotation not located",
			slog.String("document_id", doc.ID),
			slog.String("annotation_id", w.AnnotationID),
			slog.String("code", string(w.Code)))
	}
	return res, warnings
}
