package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/executor"
)

// backend persists records. Implementations need not be safe for concurrent
// use; DocStore serializes access.
type backend interface {
	get(id string) (*record, error)
	put(rec *record) error
	exists(id string) (bool, error)
	remove(id string) error
	list() ([]*record, error)
	close() error
}

// DocStore implements Store over a backend.
type DocStore struct {
	mu       sync.Mutex
	backend  backend
	opts     Options
	validate *validator.Validate
	name     string
}

var _ Store = (*DocStore)(nil)

func newDocStore(name string, b backend, opts Options) *DocStore {
	opts = opts.withDefaults()
	return &DocStore{
		backend:  b,
		opts:     opts,
		validate: validator.New(),
		name:     name,
	}
}

func (s *DocStore) logger() *slog.Logger {
	return s.opts.Logger.With(slog.String("backend", s.name))
}

// GetDocument returns a snapshot of the document.
func (s *DocStore) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.backend.get(id)
	if err != nil {
		return nil, err
	}
	return rec.snapshot(), nil
}

// ListDocuments returns every stored document, sorted by id.
func (s *DocStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.backend.list()
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, 0, len(recs))
	for _, rec := range recs {
		infos = append(infos, rec.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// PutDocument stores doc. Annotations are anchored at the first occurrence
// of their text. Without overwrite an existing id yields ErrExists.
func (s *DocStore) PutDocument(ctx context.Context, doc *document.Document, overwrite bool) (*DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", document.ErrInvalidDocument)
	}

	rec, err := newRecord(doc, s.opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite {
		ok, err := s.backend.exists(doc.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, fmt.Errorf("%w: %s", ErrExists, doc.ID)
		}
	}
	if err := s.backend.put(rec); err != nil {
		return nil, err
	}

	orphaned := 0
	for _, a := range rec.Document.Annotations {
		if a.Orphaned {
			orphaned++
		}
	}
	s.logger().Info("document stored",
		slog.String("document_id", doc.ID),
		slog.String("revision", rec.Document.Revision),
		slog.Int("annotations", len(rec.Document.Annotations)),
		slog.Int("orphaned", orphaned))

	info := rec.info()
	return &info, nil
}

// DeleteDocument removes a document.
func (s *DocStore) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.remove(id); err != nil {
		return err
	}
	s.logger().Info("document deleted", slog.String("document_id", id))
	return nil
}

// ExecuteBatch applies batch atomically. Either every op lands and a new
// revision is produced, or the document is left untouched.
func (s *DocStore) ExecuteBatch(ctx context.Context, docID string, batch executor.Batch) (*executor.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.backend.get(docID)
	if err != nil {
		return nil, err
	}

	log := s.logger().With(
		slog.String("document_id", docID),
		slog.String("batch_id", batch.ID),
		slog.Int("ops", len(batch.Ops)))

	next := rec.clone()
	receipt, err := next.apply(batch, s.opts, s.opts.Clock.Now())
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, executor.ErrStaleRevision) {
			outcome = "stale"
		}
		s.opts.Metrics.ObserveBatch(outcome, len(batch.Ops), 0)
		log.Warn("batch refused", slog.String("outcome", outcome), slog.Any("error", err))
		return nil, err
	}

	if err := s.backend.put(next); err != nil {
		return nil, executor.Failure(batch.ID, err)
	}

	s.opts.Metrics.ObserveBatch("applied", receipt.AppliedOps, len(receipt.Orphaned))
	log.Info("batch applied",
		slog.String("revision", receipt.Revision),
		slog.Any("orphaned", receipt.Orphaned))
	return receipt, nil
}

// CreateAnnotation attaches a new annotation to the requested occurrence of
// its anchor text.
func (s *DocStore) CreateAnnotation(ctx context.Context, docID string, req NewAnnotation) (*document.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrInvalidDocument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.backend.get(docID)
	if err != nil {
		return nil, err
	}

	next := rec.clone()
	ann, err := next.annotate(req, s.opts.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.backend.put(next); err != nil {
		return nil, err
	}

	s.logger().Info("annotation created",
		slog.String("document_id", docID),
		slog.String("annotation_id", ann.ID))
	return ann, nil
}

// Close releases the backend.
func (s *DocStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.close()
}
