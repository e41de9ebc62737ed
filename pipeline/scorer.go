package pipeline

import (
	"log"

	"mybestodds-engine/helpers"
)

// ScoreWeights is the weight map for the composite confidence score.
// Weights are fractional and expected, but not required, to sum to 1.
// The map is threaded into the scorer as a value; there is no shared
// weight state anywhere in the engine.
type ScoreWeights struct {
	Stat       float64
	Cycle      float64
	Personal   float64
	Numerology float64
	Astro      float64
}

// DefaultScoreWeights mirrors the production weighting: statistical
// frequency drives the most signal, astrological the least.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Stat:       0.30,
		Cycle:      0.20,
		Personal:   0.20,
		Numerology: 0.15,
		Astro:      0.15,
	}
}

// ScoreTrace records how a composite score was assembled: the resolved
// weight map and the raw pre-clamp sum. It exists for auditability and
// is never part of the persisted schema.
type ScoreTrace struct {
	Number    string
	Weights   ScoreWeights
	SubScores map[string]float64
	RawSum    float64
	Total     float64
}

// Fallback odds for games missing from the registry. Documented
// defaults; hitting them is recoverable, not fatal.
const (
	fallbackBaseOdds  = 1000
	fallbackOddsFloor = 10
)

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// subScore treats an absent sub-score as 0: a missing signal degrades
// confidence rather than failing the row.
func subScore(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// CompositeScore combines the row's sub-scores under the weight map.
// total = clamp(Σ weight_i × subscore_i, 0, 100), saturating at the
// bounds regardless of how far out of range the inputs are.
func CompositeScore(r *ForecastRow, w ScoreWeights) (float64, ScoreTrace) {
	subs := map[string]float64{
		"stat":       subScore(r.StatScore),
		"cycle":      subScore(r.CycleScore),
		"personal":   subScore(r.PersonalScore),
		"numerology": subScore(r.NumerologyScore),
		"astro":      subScore(r.AstroScore),
	}

	raw := w.Stat*subs["stat"] +
		w.Cycle*subs["cycle"] +
		w.Personal*subs["personal"] +
		w.Numerology*subs["numerology"] +
		w.Astro*subs["astro"]

	total := clampScore(raw)

	return total, ScoreTrace{
		Number:    r.Number,
		Weights:   w,
		SubScores: subs,
		RawSum:    raw,
		Total:     total,
	}
}

// EffectiveOdds maps a confidence total onto improved 1-in-N odds:
//
//	effective = max(base / (1 + total/50), floor)
//
// The mapping is monotonically decreasing in total, and the per-game
// floor guarantees the engine never claims odds better than the game
// allows (a Cash3 forecast can never read better than 1 in 10).
func EffectiveOdds(total float64, base, floor int) int {
	improvement := 1.0 + total/50.0
	eff := int(float64(base) / improvement)
	if eff < floor {
		eff = floor
	}
	return eff
}

// oddsBand buckets effective odds into the four confidence bands used
// by downstream action logic.
func oddsBand(odds int) string {
	switch {
	case odds <= 50:
		return "STRONG"
	case odds <= 150:
		return "DECENT"
	case odds <= 300:
		return "LOW"
	default:
		return "SKIP"
	}
}

// winLikelihood derives the within-group ranking figure from the
// composite total plus the archetype's confidence adjustment. It is a
// separate signal from raw confidence: bounded [0,1], monotone in the
// total, nudged by pattern strength.
func winLikelihood(total, patternHint float64) float64 {
	c := total / 100.0
	wls := c*(0.6+0.4*c) + patternHint
	if wls < 0 {
		return 0
	}
	if wls > 1 {
		return 1
	}
	return wls
}

// ApplyScores runs the composite scorer over a table. It writes
// confidence_score, confidence_band, wls and the odds columns, fully
// overwriting any previous values, and returns the per-row audit
// traces.
func ApplyScores(rows []*ForecastRow, deps Deps) []ScoreTrace {
	traces := make([]ScoreTrace, 0, len(rows))

	for _, r := range rows {
		total, trace := CompositeScore(r, deps.Weights)
		r.ConfidenceScore = total

		base, floor, ok := deps.Games.BaseOdds(r.Game)
		if !ok {
			log.Printf("⚠️  Composite scorer: unrecognized game %q, using fallback odds 1-in-%d (floor %d)",
				r.Game, fallbackBaseOdds, fallbackOddsFloor)
			base, floor = fallbackBaseOdds, fallbackOddsFloor
		}

		r.MboOdds = EffectiveOdds(total, base, floor)
		r.MboOddsText = helpers.FormatOdds(r.MboOdds)
		r.ConfidenceBand = oddsBand(r.MboOdds)

		hint := 0.0
		if !deps.Games.IsJackpot(r.Game) {
			hint = ClassifyCandidate(r.Number).ConfidenceHint
		}
		r.WLS = winLikelihood(total, hint)

		traces = append(traces, trace)
	}

	return traces
}
