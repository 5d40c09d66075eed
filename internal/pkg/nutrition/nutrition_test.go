package nutrition

import "testing"

func TestSummary(t *testing.T) {
	var s Summary
	s.Add(Facts{Calories: 620, Protein: 32, Carbs: 45, Fat: 30}, 1)
	s.Add(Facts{Calories: 710, Protein: 25, Carbs: 90, Fat: 22}, 2)
	s.Add(Facts{Calories: 999}, 0)

	if s.Meals != 3 {
		t.Fatalf("meals = %d, want 3", s.Meals)
	}
	if s.Total.Calories != 2040 {
		t.Fatalf("calories = %d, want 2040", s.Total.Calories)
	}
	if got := s.PerMeal().Calories; got != 680 {
		t.Fatalf("per meal calories = %d, want 680", got)
	}
	if got := s.PerMeal().Protein; got != 27 {
		t.Fatalf("per meal protein = %d, want 27", got)
	}
}

func TestMacroSplit(t *testing.T) {
	tests := []struct {
		facts   Facts
		p, c, f int
	}{
		{facts: Facts{}, p: 0, c: 0, f: 0},
		{facts: Facts{Protein: 25, Carbs: 25}, p: 50, c: 50, f: 0},
		{facts: Facts{Protein: 30, Carbs: 60, Fat: 20}, p: 22, c: 44, f: 34},
	}

	for _, tt := range tests {
		var s Summary
		s.Add(tt.facts, 1)
		p, c, f := s.MacroSplit()
		if p != tt.p || c != tt.c || f != tt.f {
			t.Fatalf("MacroSplit(%+v) = %d/%d/%d, want %d/%d/%d", tt.facts, p, c, f, tt.p, tt.c, tt.f)
		}
	}
}
