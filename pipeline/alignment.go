package pipeline

// Alignment bands, ordered best to worst. Thresholds are fixed:
// ≥0.80 CORE, ≥0.60 GOOD, ≥0.35 NEUTRAL, else LOW.
const (
	BandCore    = "CORE"
	BandGood    = "GOOD"
	BandNeutral = "NEUTRAL"
	BandLow     = "LOW"
)

const (
	alignEps         = 1e-9
	resonanceHitStep = 0.05
	resonanceHitCap  = 0.25
)

func alignmentBand(score float64) string {
	switch {
	case score >= 0.80:
		return BandCore
	case score >= 0.60:
		return BandGood
	case score >= 0.35:
		return BandNeutral
	default:
		return BandLow
	}
}

// overlayWeight defaults an absent overlay to 1.0. Inputs are
// nominally [0,1] but not guaranteed bounded; clamping happens after
// batch normalization, not here.
func overlayWeight(w *float64) float64 {
	if w == nil {
		return 1.0
	}
	return *w
}

func overlayBase(r *ForecastRow) float64 {
	return (overlayWeight(r.MoonWeight) +
		overlayWeight(r.ZodiacWeight) +
		overlayWeight(r.NumerologyWeight) +
		overlayWeight(r.PlanetaryWeight)) / 4.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// resonanceHits counts the firewall hit flags on a row. Each hit is
// worth 5% of score in the aligner, summed and capped at 0.25. A row
// carries at most one relation label, so the cap only binds if hit
// flags are ever tracked per reference game.
func resonanceHits(r *ForecastRow) int {
	if r.ResonanceLabel != "" && r.ResonanceLabel != RelationNone {
		return 1
	}
	return 0
}

// ApplyAlignment computes the personalization alignment score and band
// for every row. The base is the mean of the four overlay weights;
// normalization is relative to the batch's own central tendency
// (base / (2 × batch mean + ε)), so identical weights in two different
// batches are expected to yield different absolute scores. That
// batch-relative behavior is intentional and load-bearing; do not
// replace it with an absolute scale.
//
// Resonance bonuses only apply to rows not already in the top band:
// the firewall never raises a row that is already CORE.
func ApplyAlignment(rows []*ForecastRow) {
	if len(rows) == 0 {
		return
	}

	bases := make([]float64, len(rows))
	var sum float64
	for i, r := range rows {
		bases[i] = overlayBase(r)
		sum += bases[i]
	}
	batchMean := sum / float64(len(rows))

	for i, r := range rows {
		norm := clamp01(bases[i] / (2.0*batchMean + alignEps))

		band := alignmentBand(norm)
		if band != BandCore {
			bonus := float64(resonanceHits(r)) * resonanceHitStep
			if bonus > resonanceHitCap {
				bonus = resonanceHitCap
			}
			norm = clamp01(norm + bonus)
			band = alignmentBand(norm)
		}

		r.AlignmentScore = norm
		r.AlignmentBand = band
	}
}
