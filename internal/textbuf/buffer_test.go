package textbuf

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_LenCountsUTF16Units(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"latin accent", "\u00e9", 1},
		{"combining", "e\u0301", 2},
		{"cjk", "中文", 2},
		{"astral emoji", "👋", 2},
		{"mixed", "a👋b", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.text).Len())
			assert.Equal(t, tt.want, Len(tt.text))
			assert.Equal(t, tt.text, New(tt.text).String())
		})
	}
}

func TestBuffer_Slice(t *testing.T) {
	buf := New("a👋bc")

	got, err := buf.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "👋", got)

	got, err = buf.SliceRange(Range{Start: 3, End: 5})
	require.NoError(t, err)
	assert.Equal(t, "bc", got)

	_, err = buf.Slice(2, 9)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = buf.Slice(3, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestBuffer_FindAll(t *testing.T) {
	buf := New("Total: 5. Total: 7.")
	assert.Equal(t, []int{0, 10}, buf.FindAll("Total"))
	assert.Nil(t, buf.FindAll("Missing"))
	assert.Nil(t, buf.FindAll(""))

	overlapping := New("aaa")
	assert.Equal(t, []int{0, 1}, overlapping.FindAll("aa"))

	astral := New("👋x👋x")
	assert.Equal(t, []int{0, 3}, astral.FindAll("👋"))
	assert.Equal(t, 3, astral.Index("👋", 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "a", Truncate("a👋", 2))
	assert.Equal(t, "a👋", Truncate("a👋", 3))
	assert.Equal(t, "short", Truncate("short", 50))
}

func TestRange(t *testing.T) {
	r := Range{Start: 5, End: 10}

	assert.Equal(t, 5, r.Len())
	assert.False(t, r.IsEmpty())
	assert.True(t, Range{Start: 3, End: 3}.IsEmpty())

	assert.False(t, r.Contains(5), "start boundary is outside")
	assert.True(t, r.Contains(6))
	assert.True(t, r.Contains(9))
	assert.False(t, r.Contains(10), "end boundary is outside")

	assert.True(t, r.Overlaps(Range{Start: 9, End: 12}))
	assert.False(t, r.Overlaps(Range{Start: 10, End: 12}))
	assert.False(t, r.Overlaps(Range{Start: 0, End: 5}))

	assert.True(t, r.Within(10))
	assert.False(t, r.Within(9))
	assert.Equal(t, "[5,10)", r.String())
}

func TestApply_InsertAndDelete(t *testing.T) {
	buf := New("hello world")

	out, err := buf.Apply(Insert(5, ","))
	require.NoError(t, err)
	assert.Equal(t, "hello, world", out.String())
	assert.Equal(t, "hello world", buf.String(), "receiver must be untouched")

	out, err = out.Apply(Delete(5, 6))
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.String())

	out, err = buf.Apply(Insert(buf.Len(), "!"))
	require.NoError(t, err)
	assert.Equal(t, "hello world!", out.String())
}

func TestApply_Rejects(t *testing.T) {
	buf := New("abc")

	tests := []struct {
		name string
		op   EditOp
		want error
	}{
		{"insert past end", Insert(4, "x"), ErrOutOfBounds},
		{"insert negative", Insert(-1, "x"), ErrOutOfBounds},
		{"empty insert", Insert(1, ""), ErrInvalidOp},
		{"delete past end", Delete(1, 4), ErrOutOfBounds},
		{"empty delete", Delete(2, 2), ErrInvalidOp},
		{"reversed delete", Delete(2, 1), ErrInvalidOp},
		{"unknown kind", EditOp{Kind: "MOVE"}, ErrInvalidOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buf.Apply(tt.op)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApply_RejectsSplitSurrogatePair(t *testing.T) {
	buf := New("a👋b")

	for _, op := range []EditOp{Insert(2, "X"), Delete(2, 4), Delete(0, 2)} {
		_, err := ApplyOps(buf, []EditOp{op})
		assert.ErrorIs(t, err, ErrOutOfBounds, op.String())
	}

	out, err := ApplyOps(buf, []EditOp{Insert(3, "X"), Delete(1, 3)})
	require.NoError(t, err)
	assert.Equal(t, "aXb", out.String())

	_, err = Replace(buf, Range{Start: 2, End: 3}, "x")
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestBuffer_Boundaries(t *testing.T) {
	buf := New("a👋b")

	for off, want := range []bool{true, true, false, true, true} {
		assert.Equal(t, want, buf.IsBoundary(off), "offset %d", off)
	}
	assert.False(t, buf.IsBoundary(-1))
	assert.False(t, buf.IsBoundary(5))
	assert.Equal(t, 1, buf.SnapBoundary(2))
	assert.Equal(t, 3, buf.SnapBoundary(3))
	assert.Equal(t, 4, buf.SnapBoundary(4))
}

func TestApplyOps_SequentialCoordinates(t *testing.T) {
	buf := New("0123456789")

	// The second op's offset only makes sense after the first op ran.
	out, err := ApplyOps(buf, []EditOp{
		Insert(2, "ab"),
		Delete(4, 6),
	})
	require.NoError(t, err)
	assert.Equal(t, "01ab456789", out.String())
}

func TestApplyOps_AllOrNothing(t *testing.T) {
	buf := New("abc")

	out, err := ApplyOps(buf, []EditOp{
		Insert(3, "def"),
		Delete(0, 10),
	})
	require.Error(t, err)

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 1, opErr.Index)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, "abc", out.String())
}

func TestReplace(t *testing.T) {
	out, err := Replace(New("Todo application addressing"), Range{Start: 5, End: 16}, "app")
	require.NoError(t, err)
	assert.Equal(t, "Todo app addressing", out.String())

	_, err = Replace(New("abc"), Range{Start: 1, End: 5}, "x")
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestEditOp_JSON(t *testing.T) {
	ops := []EditOp{Insert(0, "hi"), Delete(3, 7)}

	data, err := json.Marshal(ops)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"INSERT","offset":0,"text":"hi"},{"type":"DELETE","start":3,"end":7}]`, string(data))

	var decoded []EditOp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ops, decoded)

	var bad EditOp
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"type":"MOVE"}`), &bad), ErrInvalidOp)
}

func TestEditOp_Delta(t *testing.T) {
	assert.Equal(t, 2, Insert(0, "👋").Delta())
	assert.Equal(t, -4, Delete(3, 7).Delta())
}
