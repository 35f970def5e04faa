package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/docmerge/internal/fsops"
)

const fileExt = ".json"

// fileBackend stores one JSON file per document under dir.
type fileBackend struct {
	fs  fsops.FS
	dir string
}

// NewFileStore creates a Store that keeps each document in
// <dir>/<id>.json. Writes are atomic.
func NewFileStore(fsys fsops.FS, dir string, opts Options) (*DocStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	return newDocStore("file", &fileBackend{fs: fsys, dir: dir}, opts), nil
}

func (f *fileBackend) path(id string) (string, error) {
	if err := f.fs.ValidateIdentifier(id); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, id+fileExt), nil
}

func (f *fileBackend) get(id string) (*record, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	ok, err := f.fs.Exists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return f.read(path)
}

func (f *fileBackend) read(path string) (*record, error) {
	data, err := f.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

func (f *fileBackend) put(rec *record) error {
	path, err := f.path(rec.Document.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := f.fs.AtomicWrite(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (f *fileBackend) exists(id string) (bool, error) {
	path, err := f.path(id)
	if err != nil {
		return false, err
	}
	return f.fs.Exists(path)
}

func (f *fileBackend) remove(id string) error {
	ok, err := f.exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	path, _ := f.path(id)
	return f.fs.Remove(path)
}

func (f *fileBackend) list() ([]*record, error) {
	names, err := f.fs.ListFiles(f.dir, fileExt)
	if err != nil {
		return nil, err
	}
	recs := make([]*record, 0, len(names))
	for _, name := range names {
		if f.fs.ValidateIdentifier(strings.TrimSuffix(name, fileExt)) != nil {
			continue
		}
		rec, err := f.read(filepath.Join(f.dir, name))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (f *fileBackend) close() error { return nil }
