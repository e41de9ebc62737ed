package pipeline

import (
	"fmt"
	"math"
	"testing"
)

func jackpotRow(game, date string, align, wls float64, odds int) *ForecastRow {
	return &ForecastRow{
		KitName:        "K",
		Game:           game,
		DrawDate:       date,
		Number:         "05-12-23-44-61+07",
		AlignmentScore: align,
		WLS:            wls,
		MboOdds:        odds,
	}
}

func TestApplyJackpotSelectionTiers(t *testing.T) {
	// ten candidates with strictly decreasing combined scores
	rows := make([]*ForecastRow, 0, 10)
	for i := 0; i < 10; i++ {
		align := 1.0 - float64(i)*0.1
		r := jackpotRow("MegaMillions", "2026-08-01", align, align, 250000)
		r.Number = fmt.Sprintf("0%d-12-23-44-61+07", i)
		rows = append(rows, r)
	}

	ApplyJackpotSelection(rows, testDeps())

	wantTiers := []string{
		TierPrimary, TierPrimary, TierPrimary,
		TierSecondary, TierSecondary, TierSecondary, TierSecondary,
		TierLongshot, TierLongshot, TierLongshot,
	}
	for i, r := range rows {
		if r.JackpotRank == nil || *r.JackpotRank != i+1 {
			t.Errorf("row %d: expected rank %d, got %v", i, i+1, r.JackpotRank)
		}
		if r.JackpotTier != wantTiers[i] {
			t.Errorf("row %d: expected tier %s, got %s", i, wantTiers[i], r.JackpotTier)
		}
		wantPick := wantTiers[i] != TierLongshot
		if r.JackpotPick != wantPick {
			t.Errorf("row %d: expected pick=%v for tier %s", i, wantPick, r.JackpotTier)
		}
	}
}

func TestApplyJackpotSelectionCombinedScore(t *testing.T) {
	r := jackpotRow("Powerball", "2026-08-01", 0.8, 0.6, 4)

	ApplyJackpotSelection([]*ForecastRow{r}, testDeps())

	want := 0.50*0.8 + 0.30*0.6 + 0.20*(1.0/4.0)
	if r.JackpotScore == nil || math.Abs(*r.JackpotScore-want) > 1e-9 {
		t.Errorf("expected combined score %.4f, got %v", want, r.JackpotScore)
	}
}

// Zero odds invert as 1.0 instead of dividing by zero.
func TestApplyJackpotSelectionZeroOdds(t *testing.T) {
	r := jackpotRow("Powerball", "2026-08-01", 0.0, 0.0, 0)

	ApplyJackpotSelection([]*ForecastRow{r}, testDeps())

	if r.JackpotScore == nil || math.Abs(*r.JackpotScore-0.20) > 1e-9 {
		t.Errorf("expected odds term 0.20 for zero odds, got %v", r.JackpotScore)
	}
}

func TestApplyJackpotSelectionStableTies(t *testing.T) {
	a := jackpotRow("Cash4Life", "2026-08-01", 0.5, 0.5, 50000)
	b := jackpotRow("Cash4Life", "2026-08-01", 0.5, 0.5, 50000)
	b.Number = "06-12-23-44-60+03"

	ApplyJackpotSelection([]*ForecastRow{a, b}, testDeps())

	if *a.JackpotRank != 1 || *b.JackpotRank != 2 {
		t.Errorf("equal scores must keep first-seen order: got %d, %d", *a.JackpotRank, *b.JackpotRank)
	}
}

func TestApplyJackpotSelectionGroupsByGameAndDate(t *testing.T) {
	rows := []*ForecastRow{
		jackpotRow("MegaMillions", "2026-08-01", 0.2, 0.2, 250000),
		jackpotRow("Powerball", "2026-08-01", 0.9, 0.9, 250000),
		jackpotRow("MegaMillions", "2026-08-04", 0.1, 0.1, 250000),
	}

	ApplyJackpotSelection(rows, testDeps())

	// every row leads its own (game, date) group
	for i, r := range rows {
		if r.JackpotRank == nil || *r.JackpotRank != 1 {
			t.Errorf("row %d: expected rank 1 within its own group, got %v", i, r.JackpotRank)
		}
	}
}

func TestApplyJackpotSelectionPassThrough(t *testing.T) {
	digit := &ForecastRow{KitName: "K", Game: "Cash3", DrawDate: "2026-08-01", Number: "123"}
	undated := jackpotRow("Powerball", "", 0.9, 0.9, 250000)

	ApplyJackpotSelection([]*ForecastRow{digit, undated}, testDeps())

	for _, r := range []*ForecastRow{digit, undated} {
		if r.JackpotScore != nil || r.JackpotRank != nil || r.JackpotTier != "" || r.JackpotPick {
			t.Errorf("row %q must pass through the jackpot selector untouched", r.Game)
		}
	}
}
