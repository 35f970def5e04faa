package textbuf

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// ErrOutOfBounds indicates an offset or range outside [0, Len()].
var ErrOutOfBounds = errors.New("offset out of bounds")

// Buffer is an immutable sequence of UTF-16 code units.
type Buffer struct {
	units []uint16
}

// New encodes s into a Buffer.
func New(s string) Buffer {
	return Buffer{units: utf16.Encode([]rune(s))}
}

// Len returns the length of the buffer in code units.
func (b Buffer) Len() int {
	return len(b.units)
}

// String decodes the buffer back into a Go string.
// An unpaired surrogate decodes as U+FFFD.
func (b Buffer) String() string {
	return string(utf16.Decode(b.units))
}

// IsBoundary reports whether off is a code-point boundary, i.e. in bounds
// and not between the two halves of a surrogate pair.
func (b Buffer) IsBoundary(off int) bool {
	if off < 0 || off > len(b.units) {
		return false
	}
	if off == 0 || off == len(b.units) {
		return true
	}
	return !(isHighSurrogate(b.units[off-1]) && isLowSurrogate(b.units[off]))
}

// SnapBoundary moves off back onto the code-point boundary at or before it.
func (b Buffer) SnapBoundary(off int) int {
	if off > 0 && off < len(b.units) && !b.IsBoundary(off) {
		return off - 1
	}
	return off
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u < 0xDC00 }

func isLowSurrogate(u uint16) bool { return u >= 0xDC00 && u < 0xE000 }

// Slice returns the text of [start, end).
func (b Buffer) Slice(start, end int) (string, error) {
	if start < 0 || end > len(b.units) || start > end {
		return "", fmt.Errorf("%w: [%d,%d) in buffer of length %d", ErrOutOfBounds, start, end, len(b.units))
	}
	return string(utf16.Decode(b.units[start:end])), nil
}

// SliceRange is Slice for a Range.
func (b Buffer) SliceRange(r Range) (string, error) {
	return b.Slice(r.Start, r.End)
}

// Index returns the offset of the first occurrence of sub at or after from,
// or -1. An empty sub never matches.
func (b Buffer) Index(sub string, from int) int {
	needle := utf16.Encode([]rune(sub))
	return indexUnits(b.units, needle, from)
}

// FindAll returns the start offset of every occurrence of sub, in order of
// appearance. Occurrences may overlap: "aa" occurs at 0 and 1 in "aaa".
func (b Buffer) FindAll(sub string) []int {
	needle := utf16.Encode([]rune(sub))
	if len(needle) == 0 {
		return nil
	}

	var matches []int
	for from := 0; ; {
		idx := indexUnits(b.units, needle, from)
		if idx < 0 {
			return matches
		}
		matches = append(matches, idx)
		from = idx + 1
	}
}

func indexUnits(hay, needle []uint16, from int) int {
	if len(needle) == 0 || from < 0 {
		return -1
	}
	last := len(hay) - len(needle)
	for i := from; i <= last; i++ {
		if hay[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < len(needle); j++ {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// Len returns the length of s in UTF-16 code units.
func Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Truncate returns the longest prefix of s that fits in max code units
// without splitting a surrogate pair.
func Truncate(s string, max int) string {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}
