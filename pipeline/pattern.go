package pipeline

import (
	"log"
)

// Archetype keys for digit-multiset shapes.
const (
	PatternUnique     = "UNIQUE"
	PatternOnePair    = "ONE_PAIR"
	PatternDoublePair = "DOUBLE_PAIR"
	PatternTriple     = "TRIPLE"
	PatternQuad       = "QUAD"
	PatternUnknown    = "UNKNOWN"
)

// ArchetypeProfile is the static intelligence attached to a pattern:
// permutation math, default play recommendation, volatility bucket,
// which near-miss suggestions are legal, and the confidence adjustment
// the scorer may apply. Profiles are immutable reference data.
type ArchetypeProfile struct {
	Pattern        string
	Example        string
	PermCount      int
	PlayType       string
	Code           string
	Bucket         string
	ComboAllowed   bool
	OneOffAllowed  bool
	Volatility     float64
	ConfidenceHint float64
}

// cash3Archetypes covers every 3-digit multiset shape.
var cash3Archetypes = map[string]ArchetypeProfile{
	PatternUnique: {
		Pattern: PatternUnique, Example: "123", PermCount: 6,
		PlayType: "STRAIGHT", Code: "U3", Bucket: "High Variability",
		ComboAllowed: false, OneOffAllowed: true,
		Volatility: 0.85, ConfidenceHint: 0.0,
	},
	PatternOnePair: {
		Pattern: PatternOnePair, Example: "122", PermCount: 3,
		PlayType: "STRAIGHT/BOX", Code: "P3", Bucket: "Moderate Variability",
		ComboAllowed: true, OneOffAllowed: true,
		Volatility: 0.65, ConfidenceHint: 0.05,
	},
	PatternTriple: {
		Pattern: PatternTriple, Example: "111", PermCount: 1,
		PlayType: "STRAIGHT/BOX", Code: "T1", Bucket: "Repeating Digits",
		ComboAllowed: false, OneOffAllowed: true,
		Volatility: 0.90, ConfidenceHint: 0.10,
	},
}

// cash4Archetypes covers every 4-digit multiset shape.
var cash4Archetypes = map[string]ArchetypeProfile{
	PatternUnique: {
		Pattern: PatternUnique, Example: "1234", PermCount: 24,
		PlayType: "STRAIGHT", Code: "U4", Bucket: "High Variability",
		ComboAllowed: false, OneOffAllowed: true,
		Volatility: 0.85, ConfidenceHint: 0.0,
	},
	PatternOnePair: {
		Pattern: PatternOnePair, Example: "1223", PermCount: 12,
		PlayType: "BOX", Code: "P4", Bucket: "Moderate Variability",
		ComboAllowed: true, OneOffAllowed: true,
		Volatility: 0.70, ConfidenceHint: 0.05,
	},
	PatternDoublePair: {
		Pattern: PatternDoublePair, Example: "1122", PermCount: 6,
		PlayType: "BOX", Code: "DP4", Bucket: "Low Variability",
		ComboAllowed: true, OneOffAllowed: true,
		Volatility: 0.55, ConfidenceHint: 0.05,
	},
	PatternTriple: {
		Pattern: PatternTriple, Example: "1112", PermCount: 4,
		PlayType: "STRAIGHT/BOX", Code: "T3", Bucket: "Repeating Digits",
		ComboAllowed: true, OneOffAllowed: true,
		Volatility: 0.80, ConfidenceHint: 0.10,
	},
	PatternQuad: {
		Pattern: PatternQuad, Example: "1111", PermCount: 1,
		PlayType: "STRAIGHT", Code: "Q1", Bucket: "Repeating Digits",
		ComboAllowed: false, OneOffAllowed: false,
		Volatility: 0.75, ConfidenceHint: 0.10,
	},
}

// unknownProfile is the conservative fallback for candidates whose
// length matches no known game: all suggestion legality disabled.
var unknownProfile = ArchetypeProfile{
	Pattern: PatternUnknown, PermCount: 0,
	PlayType: "NONE", Code: "UNK", Bucket: "Unknown",
	ComboAllowed: false, OneOffAllowed: false,
	Volatility: 0.0, ConfidenceHint: 0.0,
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// classifyShape maps a digit string onto its multiset shape. The
// classification depends only on the multiset of digits, never on
// their order: "112", "121" and "211" classify identically.
func classifyShape(num string) string {
	counts := map[rune]int{}
	for _, c := range num {
		counts[c]++
	}
	distinct := len(counts)

	switch len(num) {
	case 3:
		switch distinct {
		case 3:
			return PatternUnique
		case 2:
			return PatternOnePair
		case 1:
			return PatternTriple
		}
	case 4:
		switch distinct {
		case 4:
			return PatternUnique
		case 3:
			return PatternOnePair
		case 2:
			// AABB vs AAAB: double pair has both counts at 2
			for _, n := range counts {
				if n == 2 {
					return PatternDoublePair
				}
			}
			return PatternTriple
		case 1:
			return PatternQuad
		}
	}
	return PatternUnknown
}

// ClassifyCandidate returns the archetype profile for a digit
// candidate. Routing is by the literal digit length of the candidate,
// not the game label: a 3-character string always goes through the
// 3-digit tables. Length outside the known games logs and falls back
// to the unknown profile instead of crashing. Pure function, no
// randomization.
func ClassifyCandidate(num string) ArchetypeProfile {
	if !isDigits(num) {
		log.Printf("⚠️  Pattern classifier: non-digit candidate %q, using unknown profile", num)
		return unknownProfile
	}

	shape := classifyShape(num)
	switch len(num) {
	case 3:
		if p, ok := cash3Archetypes[shape]; ok {
			return p
		}
	case 4:
		if p, ok := cash4Archetypes[shape]; ok {
			return p
		}
	}

	log.Printf("⚠️  Pattern classifier: candidate %q matches no known game length, using unknown profile", num)
	return unknownProfile
}

// ApplyPatterns runs the pattern classifier over a table. Jackpot ball
// sets are out of this stage's scope and pass through unmodified.
func ApplyPatterns(rows []*ForecastRow, deps Deps) {
	for _, r := range rows {
		if deps.Games.IsJackpot(r.Game) {
			continue
		}
		p := ClassifyCandidate(r.Number)
		r.Pattern = p.Pattern
		r.PatternCode = p.Code
		r.PatternBucket = p.Bucket
		r.PermCount = p.PermCount
		r.PlayType = p.PlayType
		r.Volatility = p.Volatility
		r.ComboAllowed = p.ComboAllowed
		r.OneOffAllowed = p.OneOffAllowed
	}
}
