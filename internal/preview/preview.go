// Package preview renders what a batch would do to a document as a unified
// diff, for dry runs.
package preview

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

// Diff compares two bodies line by line and returns the parsed unified
// diff. Identical bodies yield a diff with no hunks.
func Diff(name, before, after string, contextLines int) (*diff.FileDiff, error) {
	if before == after {
		return &diff.FileDiff{OrigName: "a/" + name, NewName: "b/" + name}, nil
	}
	if contextLines < 0 {
		contextLines = 0
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", name, err)
	}

	fd, err := diff.ParseFileDiff([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff of %s: %w", name, err)
	}
	return fd, nil
}

// Batch applies ops to before and diffs the result. It fails the same way
// the executor would on an out-of-bounds op.
func Batch(name string, before textbuf.Buffer, ops []textbuf.EditOp, contextLines int) (*diff.FileDiff, string, error) {
	after, err := textbuf.ApplyOps(before, ops)
	if err != nil {
		return nil, "", err
	}
	fd, err := Diff(name, before.String(), after.String(), contextLines)
	if err != nil {
		return nil, "", err
	}
	return fd, after.String(), nil
}

// Render prints fd in unified format. A diff with no hunks renders empty.
func Render(fd *diff.FileDiff) (string, error) {
	if fd == nil || len(fd.Hunks) == 0 {
		return "", nil
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("failed to render diff: %w", err)
	}
	return string(out), nil
}

// Stat counts the added and deleted lines of fd.
func Stat(fd *diff.FileDiff) (added, deleted int) {
	if fd == nil {
		return 0, 0
	}
	st := fd.Stat()
	return int(st.Added + st.Changed), int(st.Deleted + st.Changed)
}

// splitLines keeps each line's newline. A final line without one carries
// the usual marker, so that adding or dropping the last newline still shows
// up as a change.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n" + noNewline
	return lines
}
