package scene

import (
	"errors"
	"testing"

	"github.com/MikeSquared-Agency/parley/internal/errs"
)

func TestNew_TensionRange(t *testing.T) {
	tests := []struct {
		name    string
		tension int
		wantErr bool
	}{
		{"minimum", 0, false},
		{"maximum", 10, false},
		{"middle", 5, false},
		{"below", -1, true},
		{"above", 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("Police station", "tense", tt.tension, nil)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				if c != nil {
					t.Error("expected nil context on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Tension != tt.tension {
				t.Errorf("tension = %d, want %d", c.Tension, tt.tension)
			}
		})
	}
}

func TestNew_DedupesCast(t *testing.T) {
	c, err := New("Diner", "romantic", 2, []string{"Sarah", " ", "Tommy", "Sarah"}, "first date", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Characters) != 2 || c.Characters[0] != "Sarah" || c.Characters[1] != "Tommy" {
		t.Errorf("unexpected cast %v", c.Characters)
	}
	if len(c.PlotPoints) != 1 {
		t.Errorf("unexpected plot points %v", c.PlotPoints)
	}
}

func TestContext_Helpers(t *testing.T) {
	var none *Context
	if none.IsHighTension() || none.TensionLevel() != 0 || !none.HasCharacter("anyone") || none.Clone() != nil {
		t.Error("nil context helpers should be neutral")
	}

	c, _ := New("Alley", "tense", 7, []string{"Sarah"})
	if !c.IsHighTension() {
		t.Error("tension 7 should be high")
	}
	if c.HasCharacter("Tommy") {
		t.Error("Tommy is not in the cast")
	}

	cp := c.Clone()
	cp.Characters[0] = "Changed"
	if c.Characters[0] != "Sarah" {
		t.Error("Clone should deep copy the cast")
	}
}
