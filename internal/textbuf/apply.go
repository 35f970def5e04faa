package textbuf

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// ErrInvalidOp indicates a malformed op: unknown kind, empty insert text or
// an empty delete range.
var ErrInvalidOp = errors.New("invalid edit op")

// OpError reports which op of a sequence failed.
type OpError struct {
	Index int
	Op    EditOp
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("op %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Apply applies a single op and returns the resulting buffer.
func (b Buffer) Apply(op EditOp) (Buffer, error) {
	switch op.Kind {
	case OpInsert:
		if op.Text == "" {
			return b, fmt.Errorf("%w: empty insert", ErrInvalidOp)
		}
		if op.Offset < 0 || op.Offset > len(b.units) {
			return b, fmt.Errorf("%w: insert at %d in buffer of length %d", ErrOutOfBounds, op.Offset, len(b.units))
		}
		if !b.IsBoundary(op.Offset) {
			return b, fmt.Errorf("%w: insert at %d splits a surrogate pair", ErrOutOfBounds, op.Offset)
		}
		text := utf16.Encode([]rune(op.Text))
		out := make([]uint16, 0, len(b.units)+len(text))
		out = append(out, b.units[:op.Offset]...)
		out = append(out, text...)
		out = append(out, b.units[op.Offset:]...)
		return Buffer{units: out}, nil

	case OpDelete:
		if op.Start >= op.End {
			return b, fmt.Errorf("%w: empty delete [%d,%d)", ErrInvalidOp, op.Start, op.End)
		}
		if op.Start < 0 || op.End > len(b.units) {
			return b, fmt.Errorf("%w: delete [%d,%d) in buffer of length %d", ErrOutOfBounds, op.Start, op.End, len(b.units))
		}
		if !b.IsBoundary(op.Start) || !b.IsBoundary(op.End) {
			return b, fmt.Errorf("%w: delete [%d,%d) splits a surrogate pair", ErrOutOfBounds, op.Start, op.End)
		}
		out := make([]uint16, 0, len(b.units)-(op.End-op.Start))
		out = append(out, b.units[:op.Start]...)
		out = append(out, b.units[op.End:]...)
		return Buffer{units: out}, nil

	default:
		return b, fmt.Errorf("%w: kind %q", ErrInvalidOp, op.Kind)
	}
}

// ApplyOps applies ops strictly in order, each against the state left by
// the previous ones. It is all-or-nothing: on failure the original buffer
// is returned together with an *OpError.
func ApplyOps(b Buffer, ops []EditOp) (Buffer, error) {
	cur := b
	for i, op := range ops {
		next, err := cur.Apply(op)
		if err != nil {
			return b, &OpError{Index: i, Op: op, Err: err}
		}
		cur = next
	}
	return cur, nil
}

// Replace returns buf[:r.Start] + text + buf[r.End:] computed directly,
// without going through ops.
func Replace(b Buffer, r Range, text string) (Buffer, error) {
	if !r.Within(len(b.units)) {
		return b, fmt.Errorf("%w: %s in buffer of length %d", ErrOutOfBounds, r, len(b.units))
	}
	if !b.IsBoundary(r.Start) || !b.IsBoundary(r.End) {
		return b, fmt.Errorf("%w: %s splits a surrogate pair", ErrOutOfBounds, r)
	}
	ins := utf16.Encode([]rune(text))
	out := make([]uint16, 0, len(b.units)-r.Len()+len(ins))
	out = append(out, b.units[:r.Start]...)
	out = append(out, ins...)
	out = append(out, b.units[r.End:]...)
	return Buffer{units: out}, nil
}
