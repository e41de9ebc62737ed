package app

import (
	"testing"

	"mybestodds-engine/pipeline"
)

func f(v float64) *float64 { return &v }

func TestRowRecordConversionRoundTrip(t *testing.T) {
	rank := 2
	js := 0.6412
	row := &pipeline.ForecastRow{
		KitName:  "GA-STARTER",
		Game:     "Cash3",
		DrawDate: "2026-08-01",
		DrawTime: "EVENING",
		Number:   "122",

		StatScore:       f(80),
		CycleScore:      f(70),
		NumerologyScore: f(55),
		MoonWeight:      f(0.8),

		Pattern:       "ONE_PAIR",
		PatternCode:   "P3",
		PatternBucket: "Moderate Variability",
		PermCount:     3,
		PlayType:      "STRAIGHT/BOX",
		Volatility:    0.65,
		ComboAllowed:  true,
		OneOffAllowed: true,

		ConfidenceScore: 61.25,
		ConfidenceBand:  "DECENT",
		WLS:             0.7110,
		MboOdds:         120,
		MboOddsText:     "1 in 120",

		AlignmentScore: 0.55,
		AlignmentBand:  "NEUTRAL",

		ResonanceScore:    6,
		ResonanceRelation: "1-off from 123",
		ResonanceLabel:    "ONE_OFF",

		CorePickRank: &rank,
		IsCorePick:   true,
		BobAction:    "KEEP_BOX",
		BobNote:      "Decent edge - keep Box for safety.",

		JackpotScore: &js,

		ForecastRunID: "run-1",
	}

	rec := rowToRecord(row)

	// persisted shape carries every derived column
	if rec.Pattern != row.Pattern || rec.BobAction != row.BobAction {
		t.Error("derived columns must survive persistence conversion")
	}
	if rec.CorePickRank == nil || *rec.CorePickRank != 2 {
		t.Errorf("expected rank 2, got %v", rec.CorePickRank)
	}
	if rec.WLS != row.WLS || rec.MboOdds != row.MboOdds {
		t.Error("scorer outputs must survive persistence conversion")
	}

	// the reverse conversion restores only the pipeline inputs: derived
	// columns are recomputed on every run, never trusted from storage
	back := recordToRow(rec)
	if back.KitName != row.KitName || back.Game != row.Game ||
		back.DrawDate != row.DrawDate || back.Number != row.Number {
		t.Error("identity fields must survive the reverse conversion")
	}
	if back.StatScore == nil || *back.StatScore != 80 {
		t.Errorf("expected stat score 80, got %v", back.StatScore)
	}
	if back.MoonWeight == nil || *back.MoonWeight != 0.8 {
		t.Errorf("expected moon weight 0.8, got %v", back.MoonWeight)
	}
	if back.Pattern != "" || back.IsCorePick || back.ForecastRunID != "" {
		t.Error("derived columns must be empty after the reverse conversion")
	}
}
