// Package config manages docmerge configuration and filesystem paths.
//
// Configuration includes the locations of docmerge data directories, which can
// be customized via environment variables. The default root is ~/.docmerge/
// containing documents/, badger/ and config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv names the environment variable that overrides the data root.
const RootEnv = "DOCMERGE_ROOT"

// Paths contains all the filesystem paths used by docmerge.
type Paths struct {
	// Root is the base directory for all docmerge data (default: ~/.docmerge)
	Root string

	// Documents is the directory holding one JSON file per document
	Documents string

	// Badger is the BadgerDB data directory
	Badger string

	// Config is the path to the config file
	Config string
}

// DefaultPaths returns the default paths for docmerge.
// Paths can be overridden with environment variables:
// - DOCMERGE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".docmerge")
	}

	return PathsAt(root), nil
}

// PathsAt returns the paths rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:      root,
		Documents: filepath.Join(root, "documents"),
		Badger:    filepath.Join(root, "badger"),
		Config:    filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Documents,
		p.Badger,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
