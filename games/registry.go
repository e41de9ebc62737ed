package games

import (
	"fmt"
	"strconv"
	"strings"
)

// Game names as they appear in forecast tables.
const (
	Cash3        = "Cash3"
	Cash4        = "Cash4"
	MegaMillions = "MegaMillions"
	Powerball    = "Powerball"
	Cash4Life    = "Cash4Life"
)

// DigitGame describes a fixed-width digit game (Cash3 / Cash4).
type DigitGame struct {
	Name      string
	Digits    int // candidate number length
	BaseOdds  int // official 1-in-N straight odds
	OddsFloor int // effective odds may never claim better than this
	PickLimit int // core picks per draw group
}

// JackpotGame describes a multi-ball jackpot game.
type JackpotGame struct {
	Name       string
	MainBalls  int
	MainMin    int
	MainMax    int
	BonusBalls int
	BonusMin   int
	BonusMax   int
	BaseOdds   int
	OddsFloor  int
	PickLimit  int
}

// Registry is the static game configuration consumed read-only by the
// pipeline stages. Build one with NewRegistry and thread it into each
// stage call; it holds no mutable state.
type Registry struct {
	digit   map[string]DigitGame
	jackpot map[string]JackpotGame
}

// DefaultPickLimit applies to any game not present in the registry.
const DefaultPickLimit = 3

// NewRegistry returns the production game registry.
func NewRegistry() *Registry {
	return &Registry{
		digit: map[string]DigitGame{
			Cash3: {Name: Cash3, Digits: 3, BaseOdds: 1000, OddsFloor: 10, PickLimit: 3},
			Cash4: {Name: Cash4, Digits: 4, BaseOdds: 10000, OddsFloor: 30, PickLimit: 3},
		},
		jackpot: map[string]JackpotGame{
			MegaMillions: {
				Name: MegaMillions, MainBalls: 5, MainMin: 1, MainMax: 70,
				BonusBalls: 1, BonusMin: 1, BonusMax: 25,
				BaseOdds: 302575350, OddsFloor: 250000, PickLimit: 2,
			},
			Powerball: {
				Name: Powerball, MainBalls: 5, MainMin: 1, MainMax: 69,
				BonusBalls: 1, BonusMin: 1, BonusMax: 26,
				BaseOdds: 292201338, OddsFloor: 250000, PickLimit: 2,
			},
			Cash4Life: {
				Name: Cash4Life, MainBalls: 5, MainMin: 1, MainMax: 60,
				BonusBalls: 1, BonusMin: 1, BonusMax: 4,
				BaseOdds: 21846048, OddsFloor: 50000, PickLimit: 1,
			},
		},
	}
}

// DigitGame returns the digit-game config for a name.
func (r *Registry) DigitGame(name string) (DigitGame, bool) {
	g, ok := r.digit[name]
	return g, ok
}

// JackpotGame returns the jackpot config for a name.
func (r *Registry) JackpotGame(name string) (JackpotGame, bool) {
	g, ok := r.jackpot[name]
	return g, ok
}

// IsJackpot reports whether the game runs through the jackpot selector.
func (r *Registry) IsJackpot(name string) bool {
	_, ok := r.jackpot[name]
	return ok
}

// PickLimit returns the core-pick limit for a game, or DefaultPickLimit
// for any unrecognized game.
func (r *Registry) PickLimit(name string) int {
	if g, ok := r.digit[name]; ok {
		return g.PickLimit
	}
	if g, ok := r.jackpot[name]; ok {
		return g.PickLimit
	}
	return DefaultPickLimit
}

// BaseOdds returns the official odds for a game. ok is false for
// unrecognized games; callers fall back to a documented default.
func (r *Registry) BaseOdds(name string) (base, floor int, ok bool) {
	if g, exists := r.digit[name]; exists {
		return g.BaseOdds, g.OddsFloor, true
	}
	if g, exists := r.jackpot[name]; exists {
		return g.BaseOdds, g.OddsFloor, true
	}
	return 0, 0, false
}

// Names returns every configured game name, digit games first.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.digit)+len(r.jackpot))
	for _, n := range []string{Cash3, Cash4} {
		if _, ok := r.digit[n]; ok {
			names = append(names, n)
		}
	}
	for _, n := range []string{MegaMillions, Powerball, Cash4Life} {
		if _, ok := r.jackpot[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// BallSet is a parsed jackpot candidate: main balls plus bonus balls.
type BallSet struct {
	Main  []int
	Bonus []int
}

// FormatBallSet renders a ball set in the canonical candidate format,
// e.g. "05-12-23-44-61+07". Main and bonus sections are zero-padded to
// two digits and joined with '+'.
func FormatBallSet(bs BallSet) string {
	parts := make([]string, len(bs.Main))
	for i, b := range bs.Main {
		parts[i] = fmt.Sprintf("%02d", b)
	}
	s := strings.Join(parts, "-")
	if len(bs.Bonus) > 0 {
		bonus := make([]string, len(bs.Bonus))
		for i, b := range bs.Bonus {
			bonus[i] = fmt.Sprintf("%02d", b)
		}
		s += "+" + strings.Join(bonus, "-")
	}
	return s
}

// ParseBallSet parses a candidate in the canonical "NN-NN-..+NN" form
// and validates counts and ranges against the game config.
func ParseBallSet(value string, cfg JackpotGame) (BallSet, error) {
	var bs BallSet

	sections := strings.SplitN(value, "+", 2)
	mainPart := strings.TrimSpace(sections[0])
	if mainPart == "" {
		return bs, fmt.Errorf("%s: empty ball set %q", cfg.Name, value)
	}

	for _, tok := range strings.Split(mainPart, "-") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return bs, fmt.Errorf("%s: bad main ball %q in %q", cfg.Name, tok, value)
		}
		bs.Main = append(bs.Main, n)
	}
	if len(bs.Main) != cfg.MainBalls {
		return bs, fmt.Errorf("%s: expected %d main balls, got %d in %q",
			cfg.Name, cfg.MainBalls, len(bs.Main), value)
	}
	for _, n := range bs.Main {
		if n < cfg.MainMin || n > cfg.MainMax {
			return bs, fmt.Errorf("%s: main ball %d outside %d-%d in %q",
				cfg.Name, n, cfg.MainMin, cfg.MainMax, value)
		}
	}

	if len(sections) == 2 {
		for _, tok := range strings.Split(strings.TrimSpace(sections[1]), "-") {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				return bs, fmt.Errorf("%s: bad bonus ball %q in %q", cfg.Name, tok, value)
			}
			bs.Bonus = append(bs.Bonus, n)
		}
	}
	if len(bs.Bonus) != cfg.BonusBalls {
		return bs, fmt.Errorf("%s: expected %d bonus balls, got %d in %q",
			cfg.Name, cfg.BonusBalls, len(bs.Bonus), value)
	}
	for _, n := range bs.Bonus {
		if n < cfg.BonusMin || n > cfg.BonusMax {
			return bs, fmt.Errorf("%s: bonus ball %d outside %d-%d in %q",
				cfg.Name, n, cfg.BonusMin, cfg.BonusMax, value)
		}
	}

	return bs, nil
}
