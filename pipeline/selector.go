package pipeline

import (
	"sort"
	"strings"
)

// BOB action codes derived from band × core-pick status.
const (
	ActionNone        = "NONE"
	ActionStrongCombo = "BOB_STRONG_COMBO"
	ActionAddBox      = "ADD_BOX"
	ActionKeepBox     = "KEEP_BOX"
	ActionStraight    = "STRAIGHT_ONLY_LIGHT"
	ActionSkip        = "SKIP"
)

// ApplyCoreSelection ranks candidates within each draw group by WLS
// descending and tags the top K as core picks, where K is the game's
// configured pick limit. Equal scores keep their original row order
// (stable sort); ranks are 1-based and contiguous for tagged rows
// only, untagged rows carry no rank. Jackpot games run through the
// jackpot selector instead and are skipped here.
//
// Selection output is recreated from scratch every run, so re-running
// on already-enriched output yields identical columns.
func ApplyCoreSelection(rows []*ForecastRow, deps Deps) {
	groups := make(map[DrawGroup][]int)
	var order []DrawGroup

	for i, r := range rows {
		// fresh state each run
		r.CorePickRank = nil
		r.IsCorePick = false

		if deps.Games.IsJackpot(r.Game) {
			continue
		}
		g := r.Group()
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}

	for _, g := range order {
		idx := groups[g]
		limit := deps.Games.PickLimit(g.Game)

		// stable: ties keep original row order
		ranked := append([]int(nil), idx...)
		sort.SliceStable(ranked, func(a, b int) bool {
			return rows[ranked[a]].WLS > rows[ranked[b]].WLS
		})

		if limit > len(ranked) {
			limit = len(ranked)
		}
		for pos := 0; pos < limit; pos++ {
			rank := pos + 1
			row := rows[ranked[pos]]
			row.CorePickRank = &rank
			row.IsCorePick = true
		}
	}

	applyActions(rows)
}

// applyActions derives the (action, note) pair purely from the pairing
// of confidence band, core-pick status, and whether the recommended
// play type already includes a Box style. Non-core rows always get the
// no-action note; unrecognized bands fall through to skip.
func applyActions(rows []*ForecastRow) {
	for _, r := range rows {
		if !r.IsCorePick {
			r.BobAction = ActionNone
			r.BobNote = "Non-core pick - no action applied."
			continue
		}

		switch r.ConfidenceBand {
		case "STRONG":
			r.BobAction = ActionStrongCombo
			r.BobNote = "Strong edge - consider Straight + Box or Combo."
		case "DECENT":
			if strings.Contains(r.PlayType, "BOX") {
				r.BobAction = ActionKeepBox
				r.BobNote = "Decent edge - keep Box for safety."
			} else {
				r.BobAction = ActionAddBox
				r.BobNote = "Decent edge - add Box for near-miss protection."
			}
		case "LOW":
			r.BobAction = ActionStraight
			r.BobNote = "Low odds - Straight only, small stake if you play."
		default:
			r.BobAction = ActionSkip
			r.BobNote = "Skip - extremely low probability for this draw."
		}
	}
}
