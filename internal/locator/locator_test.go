package locator

import (
	"testing"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/textbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ann(id, anchor string) document.Annotation {
	return document.Annotation{ID: id, AnchorText: anchor}
}

func TestLocate_UniqueMatch(t *testing.T) {
	buf := textbuf.New("The quick brown fox jumps.")
	res := Locate(buf, []document.Annotation{ann("c1", "brown fox")}, nil)

	r := res["c1"]
	require.Equal(t, StatusResolved, r.Status)
	assert.Equal(t, textbuf.Range{Start: 10, End: 19}, r.Range)

	text, err := buf.SliceRange(r.Range)
	require.NoError(t, err)
	assert.Equal(t, "brown fox", text)
}

func TestLocate_NotFound(t *testing.T) {
	buf := textbuf.New("abc")
	res := Locate(buf, []document.Annotation{ann("gone", "xyz"), ann("empty", "")}, nil)

	assert.Equal(t, StatusNotFound, res["gone"].Status)
	assert.Equal(t, StatusNotFound, res["empty"].Status)
	assert.False(t, res["gone"].Resolved())
}

func TestLocate_AmbiguousWithoutOverride(t *testing.T) {
	buf := textbuf.New("Total: 5. Total: 7.")
	res := Locate(buf, []document.Annotation{ann("t", "Total")}, nil)

	r := res["t"]
	assert.Equal(t, StatusAmbiguous, r.Status)
	assert.Equal(t, []int{0, 10}, r.Matches)
	assert.True(t, r.Range.IsEmpty(), "ambiguous must not carry a guessed range")
}

func TestLocate_Overrides(t *testing.T) {
	buf := textbuf.New("Total: 5. Total: 7.")
	anns := []document.Annotation{ann("t", "Total")}

	res := Locate(buf, anns, map[string]int{"t": 1})
	require.Equal(t, StatusResolved, res["t"].Status)
	assert.Equal(t, textbuf.Range{Start: 10, End: 15}, res["t"].Range)

	res = Locate(buf, anns, map[string]int{"t": 2})
	assert.Equal(t, StatusAmbiguous, res["t"].Status)

	res = Locate(buf, anns, map[string]int{"t": -1})
	assert.Equal(t, StatusAmbiguous, res["t"].Status)
}

func TestLocate_OverrideIgnoredForUniqueMatch(t *testing.T) {
	buf := textbuf.New("only once")
	res := Locate(buf, []document.Annotation{ann("o", "once")}, map[string]int{"o": 3})
	require.Equal(t, StatusResolved, res["o"].Status)
	assert.Equal(t, textbuf.Range{Start: 5, End: 9}, res["o"].Range)
}

func TestLocate_OverlappingOccurrences(t *testing.T) {
	res := Locate(textbuf.New("aaa"), []document.Annotation{ann("a", "aa")}, nil)
	assert.Equal(t, StatusAmbiguous, res["a"].Status)
	assert.Equal(t, []int{0, 1}, res["a"].Matches)
}

func TestLocate_CodeUnitOffsets(t *testing.T) {
	buf := textbuf.New("👋 hello")
	res := Locate(buf, []document.Annotation{ann("h", "hello")}, nil)
	assert.Equal(t, textbuf.Range{Start: 3, End: 8}, res["h"].Range)
}

func TestLocate_Idempotent(t *testing.T) {
	buf := textbuf.New("one two three two")
	anns := []document.Annotation{ann("a", "one"), ann("b", "two"), ann("c", "four")}

	first := Locate(buf, anns, nil)
	second := Locate(buf, anns, nil)
	assert.Equal(t, first, second)
}

func TestResolvedRanges_Sorted(t *testing.T) {
	buf := textbuf.New("alpha beta gamma beta")
	res := Locate(buf, []document.Annotation{
		ann("g", "gamma"),
		ann("a", "alpha"),
		ann("b", "beta"),
		ann("missing", "delta"),
	}, nil)

	got := ResolvedRanges(res)
	require.Len(t, got, 2)
	assert.Equal(t, AnchoredRange{ID: "a", Range: textbuf.Range{Start: 0, End: 5}}, got[0])
	assert.Equal(t, AnchoredRange{ID: "g", Range: textbuf.Range{Start: 11, End: 16}}, got[1])

	candidates := CandidateRanges(res)
	require.Len(t, candidates, 4)
	assert.Equal(t, "b", candidates[1].ID)
	assert.Equal(t, textbuf.Range{Start: 6, End: 10}, candidates[1].Range)
	assert.Equal(t, textbuf.Range{Start: 17, End: 21}, candidates[3].Range)
}

func TestIDsWithStatus(t *testing.T) {
	buf := textbuf.New("x y x")
	res := Locate(buf, []document.Annotation{ann("x", "x"), ann("y", "y"), ann("z", "z"), ann("w", "w")}, nil)

	assert.Equal(t, []string{"w", "z"}, IDsWithStatus(res, StatusNotFound))
	assert.Equal(t, []string{"x"}, IDsWithStatus(res, StatusAmbiguous))
	assert.Equal(t, []string{"y"}, IDsWithStatus(res, StatusResolved))
}
