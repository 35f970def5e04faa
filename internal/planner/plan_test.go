package planner

import (
	"testing"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func TestNewInsertionPoint(t *testing.T) {
	point := NewInsertionPoint(12)

	if point.Offset != 12 || point.Requested != 12 {
		t.Errorf("expected offset and requested 12, got %d/%d", point.Offset, point.Requested)
	}
	if !point.Safe {
		t.Error("expected new point to be safe")
	}
	if point.AffectedIDs == nil {
		t.Error("expected AffectedIDs to be initialized")
	}
	if point.HasConflicts() {
		t.Error("expected no conflicts")
	}
	if point.Strategy != StrategyAsRequested {
		t.Errorf("expected strategy %s, got %s", StrategyAsRequested, point.Strategy)
	}
}

func TestInsertionPoint_AddConflict(t *testing.T) {
	point := NewInsertionPoint(7)

	point.AddConflict(Conflict{ID: "c1", Range: textbuf.Range{Start: 5, End: 10}})
	point.AddConflict(Conflict{ID: "c1", Range: textbuf.Range{Start: 5, End: 10}})
	point.AddConflict(Conflict{ID: "c2", Range: textbuf.Range{Start: 6, End: 8}})

	if point.Safe {
		t.Error("expected point to be unsafe after conflict")
	}
	if len(point.Conflicts) != 3 {
		t.Errorf("expected 3 conflicts recorded, got %d", len(point.Conflicts))
	}
	if len(point.AffectedIDs) != 2 || point.AffectedIDs[0] != "c1" || point.AffectedIDs[1] != "c2" {
		t.Errorf("expected affected ids [c1 c2], got %v", point.AffectedIDs)
	}
}

func TestMode_Valid(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeSafe, true},
		{ModeUpdate, true},
		{ModeAsk, true},
		{"", false},
		{"force", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
