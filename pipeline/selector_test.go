package pipeline

import "testing"

func selectionRow(game, date, time, number string, wls float64) *ForecastRow {
	return &ForecastRow{
		KitName:  "K",
		Game:     game,
		DrawDate: date,
		DrawTime: time,
		Number:   number,
		WLS:      wls,
	}
}

func TestApplyCoreSelectionLimits(t *testing.T) {
	rows := []*ForecastRow{
		selectionRow("Cash3", "2026-08-01", "EVE", "111", 0.9),
		selectionRow("Cash3", "2026-08-01", "EVE", "222", 0.8),
		selectionRow("Cash3", "2026-08-01", "EVE", "333", 0.7),
		selectionRow("Cash3", "2026-08-01", "EVE", "444", 0.6),
		selectionRow("Cash3", "2026-08-01", "EVE", "555", 0.5),
	}

	ApplyCoreSelection(rows, testDeps())

	var picks int
	for _, r := range rows {
		if r.IsCorePick {
			picks++
		}
	}
	if picks != 3 {
		t.Fatalf("Cash3 must tag exactly 3 core picks, got %d", picks)
	}

	// ranks track WLS order, 1-based and contiguous
	for i, want := range []int{1, 2, 3} {
		if rows[i].CorePickRank == nil || *rows[i].CorePickRank != want {
			t.Errorf("row %d: expected rank %d, got %v", i, want, rows[i].CorePickRank)
		}
	}
	for _, r := range rows[3:] {
		if r.CorePickRank != nil || r.IsCorePick {
			t.Errorf("row %s: untagged rows must carry no rank", r.Number)
		}
	}
}

func TestApplyCoreSelectionStableTies(t *testing.T) {
	rows := []*ForecastRow{
		selectionRow("Cash3", "2026-08-01", "EVE", "111", 0.5),
		selectionRow("Cash3", "2026-08-01", "EVE", "222", 0.5),
		selectionRow("Cash3", "2026-08-01", "EVE", "333", 0.5),
		selectionRow("Cash3", "2026-08-01", "EVE", "444", 0.5),
	}

	ApplyCoreSelection(rows, testDeps())

	// equal scores keep input order
	for i, want := range []int{1, 2, 3} {
		if rows[i].CorePickRank == nil || *rows[i].CorePickRank != want {
			t.Errorf("row %d: expected rank %d on tie, got %v", i, want, rows[i].CorePickRank)
		}
	}
	if rows[3].IsCorePick {
		t.Error("fourth tied row must fall outside the Cash3 limit")
	}
}

func TestApplyCoreSelectionGroupIsolation(t *testing.T) {
	rows := []*ForecastRow{
		selectionRow("Cash3", "2026-08-01", "MID", "111", 0.2),
		selectionRow("Cash3", "2026-08-01", "EVE", "999", 0.9),
	}

	ApplyCoreSelection(rows, testDeps())

	// each draw group ranks independently: both rows lead their group
	for i, r := range rows {
		if !r.IsCorePick || r.CorePickRank == nil || *r.CorePickRank != 1 {
			t.Errorf("row %d: expected rank 1 within its own draw group", i)
		}
	}
}

func TestApplyCoreSelectionSkipsJackpotGames(t *testing.T) {
	rows := []*ForecastRow{
		selectionRow("Powerball", "2026-08-01", "", "01-02-03-04-05+06", 0.99),
		selectionRow("Cash3", "2026-08-01", "EVE", "111", 0.1),
	}

	ApplyCoreSelection(rows, testDeps())

	if rows[0].IsCorePick || rows[0].CorePickRank != nil {
		t.Error("jackpot rows must not enter core-pick selection")
	}
	if !rows[1].IsCorePick {
		t.Error("digit rows still rank within their own group")
	}
}

func TestApplyActionsMapping(t *testing.T) {
	tests := []struct {
		name     string
		core     bool
		band     string
		playType string
		action   string
	}{
		{"non-core always none", false, "STRONG", "", ActionNone},
		{"strong band", true, "STRONG", "STRAIGHT", ActionStrongCombo},
		{"decent with box play", true, "DECENT", "STRAIGHT/BOX", ActionKeepBox},
		{"decent without box play", true, "DECENT", "STRAIGHT", ActionAddBox},
		{"low band", true, "LOW", "STRAIGHT", ActionStraight},
		{"skip band", true, "SKIP", "STRAIGHT", ActionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ForecastRow{
				IsCorePick:     tt.core,
				ConfidenceBand: tt.band,
				PlayType:       tt.playType,
			}
			applyActions([]*ForecastRow{r})
			if r.BobAction != tt.action {
				t.Errorf("expected %s, got %s", tt.action, r.BobAction)
			}
			if r.BobNote == "" {
				t.Error("every row gets an explanatory note")
			}
		})
	}
}

// Re-running selection on already-tagged rows rebuilds identical state.
func TestApplyCoreSelectionIdempotent(t *testing.T) {
	rows := []*ForecastRow{
		selectionRow("Cash3", "2026-08-01", "EVE", "111", 0.9),
		selectionRow("Cash3", "2026-08-01", "EVE", "222", 0.8),
	}

	ApplyCoreSelection(rows, testDeps())
	first := []int{*rows[0].CorePickRank, *rows[1].CorePickRank}

	ApplyCoreSelection(rows, testDeps())
	if *rows[0].CorePickRank != first[0] || *rows[1].CorePickRank != first[1] {
		t.Error("selection must be stable across repeated runs")
	}
}
