// Package hash fingerprints document bodies.
//
// A document's revision is the SHA-256 of its body. Two snapshots with the
// same revision have identical text, so a batch guarded by a revision can
// be rejected when the document changed after it was read. The package
// provides a real implementation using crypto/sha256 and a fake one for
// testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// RevisionPrefix tags revisions produced by SHA256Hasher.
const RevisionPrefix = "sha256:"

// Hasher computes revision ids from content.
type Hasher interface {
	// Revision returns the revision id of body.
	Revision(body string) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Revision returns "sha256:" followed by the hex digest of body.
func (h *SHA256Hasher) Revision(body string) string {
	return RevisionPrefix + HashBytes([]byte(body))
}

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher implements Hasher with deterministic, human-readable ids for
// testing. Each distinct body gets the next "rev-N".
type FakeHasher struct {
	mu   sync.Mutex
	seen map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		seen: make(map[string]string),
	}
}

// Revision returns the id assigned to body, assigning one on first use.
func (h *FakeHasher) Revision(body string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rev, ok := h.seen[body]; ok {
		return rev
	}
	rev := fmt.Sprintf("rev-%d", len(h.seen)+1)
	h.seen[body] = rev
	return rev
}
