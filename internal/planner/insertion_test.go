package planner

import (
	"errors"
	"strings"
	"testing"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/locator"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func bufOfLen(n int) textbuf.Buffer {
	return textbuf.New(strings.Repeat("x", n))
}

func TestPlanSafeInsertion_RelocatesPastSplitRange(t *testing.T) {
	buf := bufOfLen(40)
	ranges := []locator.AnchoredRange{
		anchored("first", 5, 10),
		anchored("second", 20, 25),
	}

	point, err := PlanSafeInsertion(buf, ranges, 7, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}

	if point.Offset != 10 {
		t.Errorf("expected offset 10, got %d", point.Offset)
	}
	if point.Safe {
		t.Error("expected Safe=false after relocation")
	}
	if len(point.AffectedIDs) != 1 || point.AffectedIDs[0] != "first" {
		t.Errorf("expected affected ids [first], got %v", point.AffectedIDs)
	}
	if point.Strategy != StrategyAfter {
		t.Errorf("expected strategy %s, got %s", StrategyAfter, point.Strategy)
	}
	if point.Requested != 7 {
		t.Errorf("expected requested 7, got %d", point.Requested)
	}
}

func TestPlanSafeInsertion_OutsideRangesUnchanged(t *testing.T) {
	buf := bufOfLen(40)
	ranges := []locator.AnchoredRange{anchored("a", 5, 10), anchored("b", 20, 25)}

	for _, offset := range []int{0, 5, 10, 15, 20, 25, 39} {
		point, err := PlanSafeInsertion(buf, ranges, offset, ModeSafe)
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", offset, err)
		}
		if point.Offset != offset || !point.Safe || len(point.AffectedIDs) != 0 {
			t.Errorf("offset %d: expected unchanged safe point, got %+v", offset, point)
		}
	}
}

func TestPlanSafeInsertion_OverlappingRangesMoveForward(t *testing.T) {
	buf := bufOfLen(40)
	ranges := []locator.AnchoredRange{
		anchored("c", 12, 18),
		anchored("a", 5, 10),
		anchored("b", 8, 14),
	}

	point, err := PlanSafeInsertion(buf, ranges, 6, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}

	// 6 is inside a; a ends at 10 which is inside b; b ends at 14 which is
	// inside c; c ends at 18.
	if point.Offset != 18 {
		t.Errorf("expected offset 18, got %d", point.Offset)
	}
	want := []string{"a", "b", "c"}
	if strings.Join(point.AffectedIDs, ",") != strings.Join(want, ",") {
		t.Errorf("expected affected ids %v, got %v", want, point.AffectedIDs)
	}
	for _, r := range ranges {
		if r.Range.Contains(point.Offset) {
			t.Errorf("final offset %d still splits %s", point.Offset, r.ID)
		}
	}
}

func TestPlanSafeInsertion_NeverMovesBackward(t *testing.T) {
	buf := bufOfLen(30)
	ranges := []locator.AnchoredRange{anchored("a", 0, 30)}

	point, err := PlanSafeInsertion(buf, ranges, 1, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.Offset != 30 {
		t.Errorf("expected offset 30, got %d", point.Offset)
	}
}

func TestPlanSafeInsertion_EndOfDocument(t *testing.T) {
	buf := bufOfLen(25)
	ranges := []locator.AnchoredRange{anchored("a", 20, 25)}

	point, err := PlanSafeInsertion(buf, ranges, 25, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if !point.Safe || point.Offset != 25 {
		t.Errorf("expected end of document to be safe, got %+v", point)
	}
	if point.Strategy != StrategyEndOfDocument {
		t.Errorf("expected strategy %s, got %s", StrategyEndOfDocument, point.Strategy)
	}
}

func TestPlanSafeInsertion_ClampsPreferred(t *testing.T) {
	buf := bufOfLen(10)

	point, err := PlanSafeInsertion(buf, nil, 99, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.Offset != 10 {
		t.Errorf("expected clamped offset 10, got %d", point.Offset)
	}

	point, err = PlanSafeInsertion(buf, nil, -4, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.Offset != 0 {
		t.Errorf("expected clamped offset 0, got %d", point.Offset)
	}
}

func TestPlanSafeInsertion_SnapsOffSurrogatePair(t *testing.T) {
	buf := textbuf.New("a👋b")

	point, err := PlanSafeInsertion(buf, nil, 2, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.Offset != 1 || !point.Safe {
		t.Errorf("expected safe offset 1 before the emoji, got %+v", point)
	}
	if _, err := buf.Apply(textbuf.Insert(point.Offset, "X")); err != nil {
		t.Errorf("planned offset does not apply: %v", err)
	}
}

func TestPlanSafeInsertion_AskMode(t *testing.T) {
	buf := bufOfLen(40)
	ranges := []locator.AnchoredRange{anchored("a", 5, 10)}

	point, err := PlanSafeInsertion(buf, ranges, 7, ModeAsk)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if !point.NeedsDecision {
		t.Error("expected NeedsDecision")
	}
	if point.Offset != 7 {
		t.Errorf("ask mode must not relocate, got offset %d", point.Offset)
	}
	if len(point.Options) != 3 {
		t.Errorf("expected 3 options, got %v", point.Options)
	}

	point, err = PlanSafeInsertion(buf, ranges, 15, ModeAsk)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.NeedsDecision || !point.Safe {
		t.Errorf("safe offset in ask mode needs no decision, got %+v", point)
	}
}

func TestPlanSafeInsertion_UpdateMode(t *testing.T) {
	buf := bufOfLen(40)
	ranges := []locator.AnchoredRange{anchored("a", 5, 10), anchored("b", 8, 12)}

	point, err := PlanSafeInsertion(buf, ranges, 5, ModeUpdate)
	if err != nil {
		t.Fatalf("PlanSafeInsertion failed: %v", err)
	}
	if point.Target == nil || *point.Target != (textbuf.Range{Start: 5, End: 10}) {
		t.Errorf("expected target [5,10), got %v", point.Target)
	}
	if point.Strategy != StrategyWithin {
		t.Errorf("expected strategy %s, got %s", StrategyWithin, point.Strategy)
	}
	if strings.Join(point.AffectedIDs, ",") != "a,b" {
		t.Errorf("expected affected ids [a b], got %v", point.AffectedIDs)
	}
	if point.Safe {
		t.Error("overlapping annotation should make the update unsafe")
	}

	_, err = PlanSafeInsertion(buf, ranges, 20, ModeUpdate)
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

func TestPlanSafeInsertion_Errors(t *testing.T) {
	buf := bufOfLen(10)

	_, err := PlanSafeInsertion(buf, nil, 0, Mode("sideways"))
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}

	_, err = PlanSafeInsertion(buf, []locator.AnchoredRange{anchored("stale", 8, 12)}, 0, ModeSafe)
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestPlanUpdateTarget(t *testing.T) {
	ranges := []locator.AnchoredRange{anchored("a", 0, 5), anchored("b", 10, 15)}

	point, err := PlanUpdateTarget(ranges, "b")
	if err != nil {
		t.Fatalf("PlanUpdateTarget failed: %v", err)
	}
	if *point.Target != (textbuf.Range{Start: 10, End: 15}) || !point.Safe {
		t.Errorf("unexpected point: %+v", point)
	}

	_, err = PlanUpdateTarget(ranges, "missing")
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

func TestFindSection(t *testing.T) {
	sections := []document.Section{
		{Heading: "Overview", Level: 1, Start: 0, End: 10},
		{Heading: "Implementation Details", Level: 2, Start: 10, End: 30},
	}

	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"exact", "Overview", "Overview", true},
		{"case insensitive", "overview", "Overview", true},
		{"substring", "details", "Implementation Details", true},
		{"missing", "Appendix", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := FindSection(sections, tt.query)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if s.Heading != tt.want {
				t.Errorf("heading = %q, want %q", s.Heading, tt.want)
			}
		})
	}
}

func TestPlanSectionInsertion(t *testing.T) {
	body := "# Intro\nHello.\n# Usage\nRun it.\n"
	buf := textbuf.New(body)
	sections := document.DeriveSections(body)

	point, err := PlanSectionInsertion(buf, sections, "intro", nil, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSectionInsertion failed: %v", err)
	}
	if point.Offset != 15 || point.Section != "Intro" || point.SectionNotFound {
		t.Errorf("expected end of Intro at 15, got %+v", point)
	}

	point, err = PlanSectionInsertion(buf, sections, "Appendix", nil, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSectionInsertion failed: %v", err)
	}
	if !point.SectionNotFound || point.Offset != buf.Len() {
		t.Errorf("expected end-of-document fallback, got %+v", point)
	}

	point, err = PlanSectionInsertion(buf, sections, "", nil, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSectionInsertion failed: %v", err)
	}
	if point.SectionNotFound || point.Offset != buf.Len() || point.Strategy != StrategyEndOfDocument {
		t.Errorf("expected plain end of document, got %+v", point)
	}

	_, err = PlanSectionInsertion(buf, sections, "intro", nil, ModeUpdate)
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestPlanSectionInsertion_SectionEndInsideAnnotation(t *testing.T) {
	body := "# Intro\nHello.\n# Usage\nRun it.\n"
	buf := textbuf.New(body)
	sections := document.DeriveSections(body)
	// An annotation spanning "Hello.\n# Usage" straddles the section break.
	ranges := []locator.AnchoredRange{anchored("span", 8, 22)}

	point, err := PlanSectionInsertion(buf, sections, "Intro", ranges, ModeSafe)
	if err != nil {
		t.Fatalf("PlanSectionInsertion failed: %v", err)
	}
	if point.Offset != 22 || point.Safe {
		t.Errorf("expected relocation to 22, got %+v", point)
	}
}
