package pipeline

import (
	"sort"
)

// Jackpot tiers by rank within (game, draw date).
const (
	TierPrimary   = "PRIMARY"
	TierSecondary = "SECONDARY"
	TierLongshot  = "LONGSHOT"
)

// Combined-score weights: alignment carries the most signal.
const (
	jackpotWeightAlign = 0.50
	jackpotWeightWLS   = 0.30
	jackpotWeightOdds  = 0.20
)

func tierFromRank(rank int) string {
	switch {
	case rank <= 3:
		return TierPrimary
	case rank <= 7:
		return TierSecondary
	default:
		return TierLongshot
	}
}

// jackpotGroup scopes jackpot ranking: game and draw date only, no
// session dimension.
type jackpotGroup struct {
	Game     string
	DrawDate string
}

// ApplyJackpotSelection ranks jackpot-game candidates within each
// (game, draw date) group by a combined score:
//
//	0.50·alignment + 0.30·wls + 0.20·(1/odds)
//
// A zero odds value is treated as 1.0 before inverting. Ranking is
// descending with a stable first-seen tie-break. Tiers follow rank
// thresholds (1-3 PRIMARY, 4-7 SECONDARY, 8+ LONGSHOT) and the pick
// flag is true for PRIMARY and SECONDARY only.
//
// Rows outside the jackpot game set pass through entirely unmodified.
func ApplyJackpotSelection(rows []*ForecastRow, deps Deps) {
	groups := make(map[jackpotGroup][]int)
	var order []jackpotGroup

	for i, r := range rows {
		if !deps.Games.IsJackpot(r.Game) {
			continue
		}
		if r.Game == "" || r.DrawDate == "" {
			continue
		}

		// fresh state each run
		r.JackpotScore = nil
		r.JackpotRank = nil
		r.JackpotTier = ""
		r.JackpotPick = false

		g := jackpotGroup{Game: r.Game, DrawDate: r.DrawDate}
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}

	for _, g := range order {
		idx := groups[g]

		for _, i := range idx {
			r := rows[i]

			odds := float64(r.MboOdds)
			if odds == 0 {
				odds = 1.0
			}

			score := jackpotWeightAlign*r.AlignmentScore +
				jackpotWeightWLS*r.WLS +
				jackpotWeightOdds*(1.0/odds)
			r.JackpotScore = &score
		}

		ranked := append([]int(nil), idx...)
		sort.SliceStable(ranked, func(a, b int) bool {
			return *rows[ranked[a]].JackpotScore > *rows[ranked[b]].JackpotScore
		})

		for pos, i := range ranked {
			rank := pos + 1
			r := rows[i]
			r.JackpotRank = &rank
			r.JackpotTier = tierFromRank(rank)
			r.JackpotPick = r.JackpotTier == TierPrimary || r.JackpotTier == TierSecondary
		}
	}
}
