package games

import (
	"reflect"
	"testing"
)

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()

	if g, ok := r.DigitGame(Cash3); !ok || g.Digits != 3 || g.BaseOdds != 1000 || g.OddsFloor != 10 {
		t.Errorf("unexpected Cash3 config: %+v (ok=%v)", g, ok)
	}
	if g, ok := r.DigitGame(Cash4); !ok || g.Digits != 4 || g.BaseOdds != 10000 || g.OddsFloor != 30 {
		t.Errorf("unexpected Cash4 config: %+v (ok=%v)", g, ok)
	}
	if _, ok := r.DigitGame(Powerball); ok {
		t.Error("Powerball must not resolve as a digit game")
	}

	if g, ok := r.JackpotGame(MegaMillions); !ok || g.MainMax != 70 || g.BonusMax != 25 {
		t.Errorf("unexpected MegaMillions config: %+v (ok=%v)", g, ok)
	}
	if !r.IsJackpot(Cash4Life) || r.IsJackpot(Cash3) {
		t.Error("jackpot classification wrong")
	}
}

func TestRegistryPickLimits(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		game  string
		limit int
	}{
		{Cash3, 3},
		{Cash4, 3},
		{MegaMillions, 2},
		{Powerball, 2},
		{Cash4Life, 1},
		{"Lucky5", DefaultPickLimit},
	}
	for _, tt := range tests {
		if got := r.PickLimit(tt.game); got != tt.limit {
			t.Errorf("%s: expected pick limit %d, got %d", tt.game, tt.limit, got)
		}
	}
}

func TestRegistryBaseOdds(t *testing.T) {
	r := NewRegistry()

	base, floor, ok := r.BaseOdds(Powerball)
	if !ok || base != 292201338 || floor != 250000 {
		t.Errorf("unexpected Powerball odds: base=%d floor=%d ok=%v", base, floor, ok)
	}
	if _, _, ok := r.BaseOdds("Lucky5"); ok {
		t.Error("unrecognized game must report ok=false")
	}
}

func TestRegistryNames(t *testing.T) {
	want := []string{Cash3, Cash4, MegaMillions, Powerball, Cash4Life}
	if got := NewRegistry().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFormatBallSet(t *testing.T) {
	got := FormatBallSet(BallSet{Main: []int{5, 12, 23, 44, 61}, Bonus: []int{7}})
	if got != "05-12-23-44-61+07" {
		t.Errorf("expected 05-12-23-44-61+07, got %s", got)
	}
}

func TestParseBallSet(t *testing.T) {
	r := NewRegistry()
	mm, _ := r.JackpotGame(MegaMillions)

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "05-12-23-44-61+07", false},
		{"too few main balls", "05-12-23-44+07", true},
		{"main ball over range", "05-12-23-44-71+07", true},
		{"bonus ball over range", "05-12-23-44-61+26", true},
		{"missing bonus", "05-12-23-44-61", true},
		{"non-numeric", "05-12-2x-44-61+07", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := ParseBallSet(tt.value, mm)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected a parse error for %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if FormatBallSet(bs) != tt.value {
				t.Errorf("round trip drifted: %q -> %q", tt.value, FormatBallSet(bs))
			}
		})
	}
}
