package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hasher_Revision(t *testing.T) {
	hasher := NewSHA256Hasher()

	t.Run("same body same revision", func(t *testing.T) {
		rev1 := hasher.Revision("hello world")
		rev2 := hasher.Revision("hello world")

		if rev1 == "" {
			t.Error("Revision returned empty id")
		}
		if rev1 != rev2 {
			t.Errorf("Revision inconsistent: got %s and %s", rev1, rev2)
		}
	})

	t.Run("different bodies differ", func(t *testing.T) {
		if hasher.Revision("content A") == hasher.Revision("content B") {
			t.Error("different bodies should have different revisions")
		}
	})

	t.Run("known digest", func(t *testing.T) {
		// SHA-256 of the empty string
		want := RevisionPrefix + "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
		if got := hasher.Revision(""); got != want {
			t.Errorf("Revision(\"\") = %s, want %s", got, want)
		}
	})

	t.Run("prefix and length", func(t *testing.T) {
		rev := hasher.Revision("x")
		if !strings.HasPrefix(rev, RevisionPrefix) {
			t.Errorf("expected prefix %q, got %s", RevisionPrefix, rev)
		}
		if len(rev) != len(RevisionPrefix)+64 {
			t.Errorf("expected 64 hex chars after prefix, got %d", len(rev)-len(RevisionPrefix))
		}
	})
}

func TestHashBytes(t *testing.T) {
	got := HashBytes([]byte("hello world"))
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("HashBytes = %s, want %s", got, want)
	}
}

func TestFakeHasher(t *testing.T) {
	hasher := NewFakeHasher()

	if got := hasher.Revision("a"); got != "rev-1" {
		t.Errorf("first body: got %s, want rev-1", got)
	}
	if got := hasher.Revision("b"); got != "rev-2" {
		t.Errorf("second body: got %s, want rev-2", got)
	}
	if got := hasher.Revision("a"); got != "rev-1" {
		t.Errorf("repeated body: got %s, want rev-1", got)
	}
}

func TestHasherInterface(t *testing.T) {
	var _ Hasher = (*SHA256Hasher)(nil)
	var _ Hasher = (*FakeHasher)(nil)
}
