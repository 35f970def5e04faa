package textbuf

import (
	"encoding/json"
	"fmt"
)

// OpKind tags an EditOp.
type OpKind string

// Operation kinds, spelled the way the batch wire format spells them.
const (
	OpInsert OpKind = "INSERT"
	OpDelete OpKind = "DELETE"
)

// EditOp is a single primitive edit. Offsets are expressed in the
// coordinate system produced by every op listed before it in the same batch.
type EditOp struct {
	// Kind selects which of the remaining fields apply
	Kind OpKind

	// Offset and Text describe an insert
	Offset int
	Text   string

	// Start and End describe a delete of [Start, End)
	Start int
	End   int
}

// Insert builds an insert of text at offset.
func Insert(offset int, text string) EditOp {
	return EditOp{Kind: OpInsert, Offset: offset, Text: text}
}

// Delete builds a delete of [start, end).
func Delete(start, end int) EditOp {
	return EditOp{Kind: OpDelete, Start: start, End: end}
}

// Delta returns the change in buffer length caused by the op.
func (op EditOp) Delta() int {
	switch op.Kind {
	case OpInsert:
		return Len(op.Text)
	case OpDelete:
		return -(op.End - op.Start)
	default:
		return 0
	}
}

func (op EditOp) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("insert@%d %q", op.Offset, op.Text)
	case OpDelete:
		return fmt.Sprintf("delete[%d,%d)", op.Start, op.End)
	default:
		return fmt.Sprintf("unknown(%s)", op.Kind)
	}
}

type insertWire struct {
	Type   OpKind `json:"type"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

type deleteWire struct {
	Type  OpKind `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// MarshalJSON writes {type: INSERT, offset, text} or {type: DELETE, start, end}.
func (op EditOp) MarshalJSON() ([]byte, error) {
	switch op.Kind {
	case OpInsert:
		return json.Marshal(insertWire{Type: OpInsert, Offset: op.Offset, Text: op.Text})
	case OpDelete:
		return json.Marshal(deleteWire{Type: OpDelete, Start: op.Start, End: op.End})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOp, op.Kind)
	}
}

// UnmarshalJSON reads either wire shape.
func (op *EditOp) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   OpKind `json:"type"`
		Offset int    `json:"offset"`
		Text   string `json:"text"`
		Start  int    `json:"start"`
		End    int    `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case OpInsert:
		*op = Insert(raw.Offset, raw.Text)
	case OpDelete:
		*op = Delete(raw.Start, raw.End)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOp, raw.Type)
	}
	return nil
}
