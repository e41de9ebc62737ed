package pipeline

import (
	"strings"
	"testing"
)

func refSets(cash3 []string, cash4 []string) *ReferenceSets {
	return &ReferenceSets{SubscriberID: "sub-1", Cash3: cash3, Cash4: cash4}
}

func TestResonanceRelations(t *testing.T) {
	tests := []struct {
		name  string
		cand  string
		refs  []string
		score int
		label string
	}{
		{"one-off single position", "123", []string{"124"}, 6, RelationOneOff},
		{"rotation", "123", []string{"231"}, 5, RelationRotation},
		{"mirror", "123", []string{"876"}, 5, RelationMirror},
		{"sum band plus one", "123", []string{"115"}, 2, RelationSumBand},
		{"sum band minus one", "123", []string{"050"}, 2, RelationSumBand},
		{"unrelated", "123", []string{"987"}, 0, RelationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _, label := Resonance(tt.cand, tt.refs)
			if score != tt.score || label != tt.label {
				t.Errorf("expected (%d, %s), got (%d, %s)", tt.score, tt.label, score, label)
			}
		})
	}
}

// One-off outranks rotation when a candidate matches both relations
// against different reference entries.
func TestResonancePriorityOrder(t *testing.T) {
	score, relation, label := Resonance("123", []string{"231", "124"})
	if label != RelationOneOff || score != 6 {
		t.Errorf("expected one-off priority, got (%d, %s)", score, label)
	}
	if !strings.Contains(relation, "124") {
		t.Errorf("relation text should name the matched reference, got %q", relation)
	}
}

// Scores are fixed per relation: no accumulation across multiple hits.
func TestResonanceBoundedScore(t *testing.T) {
	score, _, _ := Resonance("123", []string{"124", "223", "122"})
	if score != 6 {
		t.Errorf("score must stay at the relation bound 6, got %d", score)
	}
}

func TestAssertNoExactMatch(t *testing.T) {
	if err := AssertNoExactMatch("123", []string{"456", "789"}, "Cash3"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	err := AssertNoExactMatch("123", []string{"456", "123"}, "Cash3")
	if err == nil {
		t.Fatal("expected an exact-match violation")
	}
	if _, ok := err.(*FirewallViolation); !ok {
		t.Fatalf("expected *FirewallViolation, got %T", err)
	}
	if !strings.Contains(err.Error(), "[FIREWALL]") {
		t.Errorf("violation message missing [FIREWALL] tag: %q", err.Error())
	}
}

func TestReferenceSetsValidate(t *testing.T) {
	tests := []struct {
		name    string
		refs    *ReferenceSets
		wantErr bool
	}{
		{"clean sets", refSets([]string{"123", "456"}, []string{"1234"}), false},
		{"empty sets allowed", refSets(nil, nil), false},
		{"cash3 wrong length", refSets([]string{"12"}, nil), true},
		{"cash3 non-digit", refSets([]string{"12a"}, nil), true},
		{"cash4 wrong length", refSets(nil, []string{"123"}), true},
		{"cash4 non-digit", refSets(nil, []string{"12x4"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.refs.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected a reference set error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// A single malformed entry rejects the whole set: partial screening
// silently skips candidates, which is worse than no screening at all.
func TestApplyResonanceWholeSetRejection(t *testing.T) {
	rows := []*ForecastRow{{
		KitName: "K", Game: "Cash3", DrawDate: "2026-08-01", Number: "123",
	}}
	err := ApplyResonance(rows, refSets([]string{"456", "45"}, nil))
	if err == nil {
		t.Fatal("expected ApplyResonance to refuse a malformed set")
	}
	if _, ok := err.(*ReferenceSetError); !ok {
		t.Fatalf("expected *ReferenceSetError, got %T", err)
	}
}

func TestApplyResonanceExactMatchHaltsRun(t *testing.T) {
	rows := []*ForecastRow{{
		KitName: "K", Game: "Cash3", DrawDate: "2026-08-01", Number: "123",
	}}
	err := ApplyResonance(rows, refSets([]string{"123"}, nil))
	if err == nil {
		t.Fatal("expected an exact-match violation to halt the run")
	}
	if _, ok := err.(*FirewallViolation); !ok {
		t.Fatalf("expected *FirewallViolation, got %T", err)
	}
}

func TestApplyResonanceDefaults(t *testing.T) {
	rows := []*ForecastRow{
		{KitName: "K", Game: "Cash3", DrawDate: "2026-08-01", Number: "123"},
		{KitName: "K", Game: "Cash4", DrawDate: "2026-08-01", Number: "1234"},
		{KitName: "K", Game: "MegaMillions", DrawDate: "2026-08-01", Number: "05-12-23-44-61+07"},
	}

	if err := ApplyResonance(rows, refSets(nil, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, r := range rows[:2] {
		if r.ResonanceRelation != "no reference set provided" {
			t.Errorf("row %d: expected empty-set relation, got %q", i, r.ResonanceRelation)
		}
		if r.ResonanceScore != 0 {
			t.Errorf("row %d: expected zero resonance, got %d", i, r.ResonanceScore)
		}
	}

	if rows[2].ResonanceRelation != "not applicable" {
		t.Errorf("jackpot row: expected not applicable, got %q", rows[2].ResonanceRelation)
	}
	if rows[2].ResonanceLabel != RelationNone {
		t.Errorf("jackpot row: expected NONE label, got %q", rows[2].ResonanceLabel)
	}
}

func TestApplyResonanceScoresRows(t *testing.T) {
	rows := []*ForecastRow{
		{KitName: "K", Game: "Cash3", DrawDate: "2026-08-01", Number: "123"},
		{KitName: "K", Game: "Cash4", DrawDate: "2026-08-01", Number: "5678"},
	}

	err := ApplyResonance(rows, refSets([]string{"124"}, []string{"5679"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, r := range rows {
		if r.ResonanceLabel != RelationOneOff || r.ResonanceScore != 6 {
			t.Errorf("row %d: expected one-off score 6, got (%d, %s)", i, r.ResonanceScore, r.ResonanceLabel)
		}
	}
}
