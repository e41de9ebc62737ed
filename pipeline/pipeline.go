package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mybestodds-engine/games"
)

// Deps carries everything a stage is allowed to see: the read-only
// game registry and the composite weight map. It is passed by value
// into each stage call so concurrent per-kit runs share no mutable
// state.
type Deps struct {
	Games   *games.Registry
	Weights ScoreWeights
}

// Engine runs the full enrichment pipeline over one kit's forecast
// table. All stages are pure single-threaded batch transforms; a
// fatal error from any stage propagates immediately with no partial
// output.
type Engine struct {
	deps Deps
}

// NewEngine builds an engine around an explicit configuration value.
// There is no package-level engine state.
func NewEngine(reg *games.Registry, weights ScoreWeights) *Engine {
	return &Engine{deps: Deps{Games: reg, Weights: weights}}
}

// Games exposes the registry the engine was built with.
func (e *Engine) Games() *games.Registry {
	return e.deps.Games
}

// Result is one completed pipeline run.
type Result struct {
	RunID    string
	KitName  string
	Rows     []*ForecastRow
	Table    Table
	Traces   []ScoreTrace
	Duration time.Duration
}

// AssertNoPersonalInputs is the phase guard: the schema, pattern and
// scoring phases must never receive subscriber reference data. Stage
// signatures already make a leak impossible; this guard exists so the
// invariant is checked, not just implied, when callers compose stages
// themselves.
func AssertNoPersonalInputs(phase string, refs *ReferenceSets) error {
	if refs != nil {
		return fmt.Errorf("[FIREWALL] %s: subscriber reference data is not allowed in this phase", phase)
	}
	return nil
}

// Run validates, enriches and re-validates a kit's forecast table.
//
// Stage order: schema gate, pattern classifier, composite scorer,
// resonance firewall, personalization aligner, core-pick selector,
// jackpot selector, then the schema gate again as the final acceptance
// check.
func (e *Engine) Run(kitName string, t Table, refs *ReferenceSets) (*Result, error) {
	rows, err := Decode(kitName, t)
	if err != nil {
		return nil, err
	}
	return e.RunRows(kitName, rows, refs)
}

// RunRows enriches rows built in code (the service path, where rows
// come from the database rather than a raw table). Derived columns are
// fully recomputed and overwritten every run, never merged with prior
// state: running twice on already-enriched rows yields byte-identical
// derived columns.
func (e *Engine) RunRows(kitName string, rows []*ForecastRow, refs *ReferenceSets) (*Result, error) {
	start := time.Now()

	runID := uuid.New().String()
	log.Printf("🎯 [%s] Pipeline run %s: %d candidate rows", kitName, runID, len(rows))

	// The schema gate already rejects empty required fields on the
	// table path; rows built in code get the same fail-fast treatment.
	for i, r := range rows {
		if !r.Eligible() {
			return nil, &SchemaError{
				KitName:  kitName,
				Kind:     "REQUIRED_FIELD",
				Position: i,
				Expected: "kit_name/game/draw_date/number",
			}
		}
	}

	ApplyPatterns(rows, e.deps)
	traces := ApplyScores(rows, e.deps)

	if err := ApplyResonance(rows, refs); err != nil {
		return nil, err
	}
	ApplyAlignment(rows)

	ApplyCoreSelection(rows, e.deps)
	ApplyJackpotSelection(rows, e.deps)

	for _, r := range rows {
		r.ForecastRunID = runID
	}

	out := Encode(rows)
	// enrichment must never drift the contract
	if err := ValidateSchema(kitName, out); err != nil {
		return nil, fmt.Errorf("post-enrichment schema check failed: %w", err)
	}

	elapsed := time.Since(start)
	log.Printf("✅ [%s] Pipeline run %s complete in %v (%d rows)", kitName, runID, elapsed, len(rows))

	return &Result{
		RunID:    runID,
		KitName:  kitName,
		Rows:     rows,
		Table:    out,
		Traces:   traces,
		Duration: elapsed,
	}, nil
}
