package pipeline

import (
	"fmt"

	"mybestodds-engine/games"
)

// Resonance relation labels, in strict probe priority order.
const (
	RelationOneOff   = "ONE_OFF"
	RelationRotation = "ROTATION"
	RelationMirror   = "MIRROR"
	RelationSumBand  = "SUM_BAND"
	RelationNone     = "NONE"
)

// ReferenceSets holds a subscriber's private reference numbers per
// digit game. They are reference-only inputs: the firewall guarantees
// they can never surface as, or justify, an exact recommendation.
type ReferenceSets struct {
	SubscriberID string
	Cash3        []string
	Cash4        []string
}

// ReferenceSetError is a fatal validation failure for a whole
// reference set. Malformed personal data must never silently degrade
// into zero-resonance.
type ReferenceSetError struct {
	Label   string
	Invalid []string
}

func (e *ReferenceSetError) Error() string {
	return fmt.Sprintf("[FIREWALL] %s: invalid reference values: %v", e.Label, e.Invalid)
}

// FirewallViolation is raised when a candidate exactly equals a member
// of the subscriber's reference set. Exact personal-number matches are
// a policy violation, not a scoring case; the run halts and reports
// the offending candidate.
type FirewallViolation struct {
	Label     string
	Candidate string
}

func (e *FirewallViolation) Error() string {
	return fmt.Sprintf("[FIREWALL] exact reference match must be rejected: %s %s", e.Label, e.Candidate)
}

// ValidateReferenceSet checks every element is a digit-only string of
// the exact expected length. Failure rejects the whole set.
func ValidateReferenceSet(set []string, digits int, label string) error {
	var bad []string
	for _, s := range set {
		if len(s) != digits || !isDigits(s) {
			bad = append(bad, s)
		}
	}
	if len(bad) > 0 {
		return &ReferenceSetError{Label: label, Invalid: bad}
	}
	return nil
}

// Validate checks both games' sets; any malformed entry rejects that
// set entirely.
func (rs *ReferenceSets) Validate() error {
	if err := ValidateReferenceSet(rs.Cash3, 3, "REFERENCE_CASH3"); err != nil {
		return err
	}
	if len(rs.Cash4) > 0 {
		if err := ValidateReferenceSet(rs.Cash4, 4, "REFERENCE_CASH4"); err != nil {
			return err
		}
	}
	return nil
}

var mirrorDigits = map[byte]byte{
	'0': '9', '1': '8', '2': '7', '3': '6', '4': '5',
	'5': '4', '6': '3', '7': '2', '8': '1', '9': '0',
}

// mirror applies the digit-wise 9's complement.
func mirror(n string) string {
	out := make([]byte, len(n))
	for i := 0; i < len(n); i++ {
		if m, ok := mirrorDigits[n[i]]; ok {
			out[i] = m
		} else {
			out[i] = n[i]
		}
	}
	return string(out)
}

// rotations returns every cyclic positional rotation of n except the
// identity. Rotations, not permutations.
func rotations(n string) []string {
	rots := make([]string, 0, len(n)-1)
	for i := 1; i < len(n); i++ {
		rots = append(rots, n[i:]+n[:i])
	}
	return rots
}

// oneOff reports whether a and b differ in exactly one position.
func oneOff(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	diffs := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return diffs == 1
}

func digitSum(n string) int {
	sum := 0
	for i := 0; i < len(n); i++ {
		if n[i] >= '0' && n[i] <= '9' {
			sum += int(n[i] - '0')
		}
	}
	return sum
}

// AssertNoExactMatch is the failing invariant checker: a candidate
// equal to any reference is a firewall violation. It is deliberately a
// separate capability from Resonance, which never fails.
func AssertNoExactMatch(candidate string, refs []string, label string) error {
	for _, ref := range refs {
		if candidate == ref {
			return &FirewallViolation{Label: label, Candidate: candidate}
		}
	}
	return nil
}

// Resonance probes the bounded similarity relations between a
// candidate and a reference set, in strict priority order, returning
// the first relation matched. Exact matches are handled externally by
// AssertNoExactMatch; this prober never fails and never scores above
// its fixed bounds.
//
// Priority: one-off (6) > rotation (5) > mirror (5) > sum-band (2).
// Ties break by priority, never by magnitude.
func Resonance(candidate string, refs []string) (score int, relation, label string) {
	for _, ref := range refs {
		if oneOff(candidate, ref) {
			return 6, fmt.Sprintf("1-off from %s", ref), RelationOneOff
		}
	}

	for _, rot := range rotations(candidate) {
		for _, ref := range refs {
			if rot == ref {
				return 5, fmt.Sprintf("rotation of %s", ref), RelationRotation
			}
		}
	}

	mir := mirror(candidate)
	for _, ref := range refs {
		if mir == ref {
			return 5, fmt.Sprintf("mirror of %s", mir), RelationMirror
		}
	}

	s := digitSum(candidate)
	for _, ref := range refs {
		diff := digitSum(ref) - s
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			return 2, fmt.Sprintf("sum-band overlap with %s", ref), RelationSumBand
		}
	}

	return 0, "no resonance", RelationNone
}

// ApplyResonance runs the firewall over a table for one subscriber's
// reference sets. Sets are validated on entry; an exact candidate
// match halts the run. The firewall only writes the resonance columns;
// it never injects numbers and never touches confidence directly (the
// aligner consumes resonance hits downstream, and skips rows already
// at the top band).
func ApplyResonance(rows []*ForecastRow, refs *ReferenceSets) error {
	if refs != nil {
		if err := refs.Validate(); err != nil {
			return err
		}
	}

	for _, r := range rows {
		// Fresh defaults each run: outputs are recomputed, not merged.
		r.ResonanceScore = 0
		r.ResonanceRelation = "not applicable"
		r.ResonanceLabel = RelationNone

		if refs == nil {
			continue
		}

		var set []string
		var label string
		switch {
		case r.Game == games.Cash3 && len(r.Number) == 3 && isDigits(r.Number):
			set, label = refs.Cash3, games.Cash3
		case r.Game == games.Cash4 && len(r.Number) == 4 && isDigits(r.Number):
			set, label = refs.Cash4, games.Cash4
		default:
			continue
		}
		if len(set) == 0 {
			r.ResonanceRelation = "no reference set provided"
			continue
		}

		if err := AssertNoExactMatch(r.Number, set, label); err != nil {
			return err
		}

		score, relation, relLabel := Resonance(r.Number, set)
		r.ResonanceScore = score
		r.ResonanceRelation = relation
		r.ResonanceLabel = relLabel
	}

	return nil
}
