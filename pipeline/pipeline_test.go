package pipeline

import (
	"reflect"
	"testing"

	"mybestodds-engine/games"
)

func testDeps() Deps {
	return Deps{Games: games.NewRegistry(), Weights: DefaultScoreWeights()}
}

func floatPtr(f float64) *float64 { return &f }

func testEngine() *Engine {
	return NewEngine(games.NewRegistry(), DefaultScoreWeights())
}

func sampleRows() []*ForecastRow {
	return []*ForecastRow{
		{
			KitName: "GA-STARTER", Game: "Cash3", DrawDate: "2026-08-01", DrawTime: "EVENING",
			Number:    "123",
			StatScore: floatPtr(80), CycleScore: floatPtr(70), PersonalScore: floatPtr(60),
			NumerologyScore: floatPtr(50), AstroScore: floatPtr(40),
		},
		{
			KitName: "GA-STARTER", Game: "Cash3", DrawDate: "2026-08-01", DrawTime: "EVENING",
			Number:    "455",
			StatScore: floatPtr(60), CycleScore: floatPtr(60),
		},
		{
			KitName: "GA-STARTER", Game: "Cash4", DrawDate: "2026-08-01", DrawTime: "EVENING",
			Number:    "1224",
			StatScore: floatPtr(75),
		},
		{
			KitName: "GA-STARTER", Game: "MegaMillions", DrawDate: "2026-08-04",
			Number:    "05-12-23-44-61+07",
			StatScore: floatPtr(55), MoonWeight: floatPtr(0.7),
		},
	}
}

func TestEngineRunEndToEnd(t *testing.T) {
	res, err := testEngine().RunRows("GA-STARTER", sampleRows(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(res.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(res.Rows))
	}

	for i, r := range res.Rows {
		if r.ForecastRunID != res.RunID {
			t.Errorf("row %d: run ID not propagated", i)
		}
		if r.ConfidenceBand == "" || r.MboOdds == 0 {
			t.Errorf("row %d: scorer outputs missing", i)
		}
	}

	// digit rows classified, jackpot rows not
	if res.Rows[0].Pattern != PatternUnique {
		t.Errorf("expected UNIQUE for 123, got %s", res.Rows[0].Pattern)
	}
	if res.Rows[3].Pattern != "" {
		t.Errorf("jackpot row must skip pattern classification, got %s", res.Rows[3].Pattern)
	}

	// selection ran on both sides of the game split
	if !res.Rows[0].IsCorePick {
		t.Error("top Cash3 row should be a core pick")
	}
	if res.Rows[3].JackpotRank == nil {
		t.Error("jackpot row should carry a jackpot rank")
	}
	if res.Rows[3].IsCorePick {
		t.Error("jackpot rows never enter core-pick selection")
	}

	// output table re-passes the schema gate
	if err := ValidateSchema("GA-STARTER", res.Table); err != nil {
		t.Errorf("enriched table failed the schema gate: %v", err)
	}
}

func TestEngineRunTablePath(t *testing.T) {
	in := Encode(sampleRows())

	res, err := testEngine().Run("GA-STARTER", in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Table.Records) != len(in.Records) {
		t.Errorf("expected %d records out, got %d", len(in.Records), len(res.Table.Records))
	}
}

func TestEngineRunRejectsIneligibleRows(t *testing.T) {
	rows := sampleRows()
	rows[2].Number = ""

	_, err := testEngine().RunRows("GA-STARTER", rows, nil)
	if err == nil {
		t.Fatal("expected a fatal error for a row missing its candidate value")
	}
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Position != 2 {
		t.Errorf("expected offending row index 2, got %d", se.Position)
	}
}

// Derived columns are recomputed from scratch on every run: feeding a
// run's output back through the engine yields identical derived
// columns. Only the run ID differs between runs.
func TestEngineRunIdempotent(t *testing.T) {
	eng := testEngine()
	refs := &ReferenceSets{SubscriberID: "sub-1", Cash3: []string{"124"}}

	first, err := eng.RunRows("GA-STARTER", sampleRows(), refs)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, err := eng.Run("GA-STARTER", first.Table, refs)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	runIDCol := len(Columns) - 1
	if Columns[runIDCol] != "forecast_run_id" {
		t.Fatalf("run ID expected in the last column, found %s", Columns[runIDCol])
	}

	for i := range first.Table.Records {
		a := append([]string(nil), first.Table.Records[i]...)
		b := append([]string(nil), second.Table.Records[i]...)
		a[runIDCol], b[runIDCol] = "", ""
		if !reflect.DeepEqual(a, b) {
			t.Errorf("row %d: derived columns drift between runs:\n  first:  %v\n  second: %v", i, a, b)
		}
	}
}

func TestAssertNoPersonalInputs(t *testing.T) {
	if err := AssertNoPersonalInputs("pattern", nil); err != nil {
		t.Fatalf("unexpected error without reference data: %v", err)
	}
	if err := AssertNoPersonalInputs("pattern", &ReferenceSets{}); err == nil {
		t.Fatal("expected the phase guard to reject reference data")
	}
}

// A firewall violation aborts the run with no partial output.
func TestEngineRunHaltsOnFirewallViolation(t *testing.T) {
	refs := &ReferenceSets{SubscriberID: "sub-1", Cash3: []string{"123"}}

	res, err := testEngine().RunRows("GA-STARTER", sampleRows(), refs)
	if err == nil {
		t.Fatal("expected an exact-match violation to abort the run")
	}
	if res != nil {
		t.Error("a failed run must not return partial output")
	}
}
