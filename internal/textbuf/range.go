package textbuf

import "fmt"

// Range is a half-open span [Start, End) of code-unit offsets.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of code units covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains reports whether off lies strictly inside the range, so that an
// insertion at off would split it. Both boundaries are outside.
func (r Range) Contains(off int) bool {
	return r.Start < off && off < r.End
}

// Overlaps reports whether r and o share at least one code unit.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Within reports whether r lies inside a buffer of length n.
func (r Range) Within(n int) bool {
	return r.Start >= 0 && r.End <= n && r.Start <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
