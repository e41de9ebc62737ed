package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// ForecastRow is one candidate number for one draw, plus every derived
// field the enrichment stages write. Each stage owns the columns it
// writes and treats upstream columns as read-only.
type ForecastRow struct {
	// Identity (supplied upstream, required)
	KitName      string
	Game         string
	DrawDate     string // YYYY-MM-DD
	ForecastDate string
	DrawTime     string // MIDDAY / EVENING / NIGHT / JACKPOT
	Number       string // zero-padded digits, or "NN-NN-..+NN" for jackpots

	// Sub-scores from upstream feature producers (0-100, optional)
	StatScore       *float64
	CycleScore      *float64
	PersonalScore   *float64
	NumerologyScore *float64
	AstroScore      *float64

	// Overlay weights (nominally [0,1], optional, default 1.0)
	MoonWeight       *float64
	ZodiacWeight     *float64
	NumerologyWeight *float64
	PlanetaryWeight  *float64

	// Pattern classifier outputs
	Pattern       string
	PatternCode   string
	PatternBucket string
	PermCount     int
	PlayType      string
	Volatility    float64
	ComboAllowed  bool
	OneOffAllowed bool

	// Composite scorer outputs
	ConfidenceScore float64 // 0-100
	ConfidenceBand  string  // STRONG / DECENT / LOW / SKIP
	WLS             float64 // 0-1 win-likelihood score
	MboOdds         int     // effective 1-in-N odds
	MboOddsText     string

	// Personalization aligner outputs
	AlignmentScore float64 // 0-1
	AlignmentBand  string  // CORE / GOOD / NEUTRAL / LOW

	// Resonance firewall outputs
	ResonanceScore    int
	ResonanceRelation string
	ResonanceLabel    string

	// Core-pick selector outputs
	CorePickRank *int // nil = not a core pick
	IsCorePick   bool
	BobAction    string
	BobNote      string

	// Jackpot selector outputs (jackpot rows only)
	JackpotScore *float64
	JackpotRank  *int
	JackpotTier  string
	JackpotPick  bool

	// Run metadata
	ForecastRunID string
}

// DrawGroup is the composite key scoping all grouped ranking
// operations. Rows in different groups are never compared.
type DrawGroup struct {
	KitName  string
	Game     string
	DrawDate string
	DrawTime string
}

// Group returns the row's draw group key.
func (r *ForecastRow) Group() DrawGroup {
	return DrawGroup{
		KitName:  r.KitName,
		Game:     r.Game,
		DrawDate: r.DrawDate,
		DrawTime: r.DrawTime,
	}
}

// Eligible reports whether the row carries the identity fields every
// stage depends on. Rows without a candidate value are never scored.
func (r *ForecastRow) Eligible() bool {
	return r.KitName != "" && r.Game != "" && r.DrawDate != "" && r.Number != ""
}

// Columns is the canonical forecast schema: exact names, exact order.
// Every table entering or leaving the pipeline must match it
// byte-for-byte; see ValidateSchema.
var Columns = []string{
	// identity
	"kit_name",
	"game",
	"draw_date",
	"forecast_date",
	"draw_time",
	"number",
	// upstream sub-scores
	"stat_score",
	"cycle_score",
	"personal_score",
	"numerology_score",
	"astro_score",
	// overlay weights
	"moon_weight",
	"zodiac_weight",
	"numerology_weight",
	"planetary_weight",
	// pattern
	"pattern",
	"pattern_code",
	"pattern_bucket",
	"perm_count",
	"play_type",
	"volatility",
	"combo_allowed",
	"one_off_allowed",
	// confidence / odds
	"confidence_score",
	"confidence_band",
	"wls",
	"mbo_odds",
	"mbo_odds_text",
	// personalization
	"personal_alignment_score",
	"personal_alignment_band",
	"resonance_score",
	"resonance_relation",
	"resonance_label",
	// core picks
	"core_pick_rank",
	"is_core_pick",
	"bob_action",
	"bob_note",
	// jackpot
	"jackpot_score",
	"jackpot_rank",
	"jackpot_tier",
	"jackpot_pick_flag",
	// metadata
	"forecast_run_id",
}

// RequiredFields are the business fields that must be non-empty in
// every row for a table to pass the schema gate.
var RequiredFields = []string{"kit_name", "game", "draw_date", "number"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatOptInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Record renders the row in canonical column order. The output is
// deterministic: re-encoding an unchanged row yields identical bytes.
func (r *ForecastRow) Record() []string {
	return []string{
		r.KitName,
		r.Game,
		r.DrawDate,
		r.ForecastDate,
		r.DrawTime,
		r.Number,
		formatOptFloat(r.StatScore),
		formatOptFloat(r.CycleScore),
		formatOptFloat(r.PersonalScore),
		formatOptFloat(r.NumerologyScore),
		formatOptFloat(r.AstroScore),
		formatOptFloat(r.MoonWeight),
		formatOptFloat(r.ZodiacWeight),
		formatOptFloat(r.NumerologyWeight),
		formatOptFloat(r.PlanetaryWeight),
		r.Pattern,
		r.PatternCode,
		r.PatternBucket,
		strconv.Itoa(r.PermCount),
		r.PlayType,
		formatFloat(r.Volatility),
		formatBool(r.ComboAllowed),
		formatBool(r.OneOffAllowed),
		formatFloat(r.ConfidenceScore),
		r.ConfidenceBand,
		formatFloat(r.WLS),
		strconv.Itoa(r.MboOdds),
		r.MboOddsText,
		formatFloat(r.AlignmentScore),
		r.AlignmentBand,
		strconv.Itoa(r.ResonanceScore),
		r.ResonanceRelation,
		r.ResonanceLabel,
		formatOptInt(r.CorePickRank),
		formatBool(r.IsCorePick),
		r.BobAction,
		r.BobNote,
		formatOptFloat(r.JackpotScore),
		formatOptInt(r.JackpotRank),
		r.JackpotTier,
		formatBool(r.JackpotPick),
		r.ForecastRunID,
	}
}

func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseOptInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}

// Unparseable numerics fall back to 0.0 rather than failing the row.
func parseFloatDefault(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0.0
	}
	return f
}

func parseIntDefault(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// RowFromRecord decodes a canonical-order record into a ForecastRow.
// The record must already have passed the schema gate; field count is
// assumed to match Columns.
func RowFromRecord(rec []string) (*ForecastRow, error) {
	if len(rec) != len(Columns) {
		return nil, fmt.Errorf("record has %d fields, schema requires %d", len(rec), len(Columns))
	}
	r := &ForecastRow{
		KitName:           rec[0],
		Game:              rec[1],
		DrawDate:          rec[2],
		ForecastDate:      rec[3],
		DrawTime:          rec[4],
		Number:            rec[5],
		StatScore:         parseOptFloat(rec[6]),
		CycleScore:        parseOptFloat(rec[7]),
		PersonalScore:     parseOptFloat(rec[8]),
		NumerologyScore:   parseOptFloat(rec[9]),
		AstroScore:        parseOptFloat(rec[10]),
		MoonWeight:        parseOptFloat(rec[11]),
		ZodiacWeight:      parseOptFloat(rec[12]),
		NumerologyWeight:  parseOptFloat(rec[13]),
		PlanetaryWeight:   parseOptFloat(rec[14]),
		Pattern:           rec[15],
		PatternCode:       rec[16],
		PatternBucket:     rec[17],
		PermCount:         parseIntDefault(rec[18]),
		PlayType:          rec[19],
		Volatility:        parseFloatDefault(rec[20]),
		ComboAllowed:      parseBool(rec[21]),
		OneOffAllowed:     parseBool(rec[22]),
		ConfidenceScore:   parseFloatDefault(rec[23]),
		ConfidenceBand:    rec[24],
		WLS:               parseFloatDefault(rec[25]),
		MboOdds:           parseIntDefault(rec[26]),
		MboOddsText:       rec[27],
		AlignmentScore:    parseFloatDefault(rec[28]),
		AlignmentBand:     rec[29],
		ResonanceScore:    parseIntDefault(rec[30]),
		ResonanceRelation: rec[31],
		ResonanceLabel:    rec[32],
		CorePickRank:      parseOptInt(rec[33]),
		IsCorePick:        parseBool(rec[34]),
		BobAction:         rec[35],
		BobNote:           rec[36],
		JackpotScore:      parseOptFloat(rec[37]),
		JackpotRank:       parseOptInt(rec[38]),
		JackpotTier:       rec[39],
		JackpotPick:       parseBool(rec[40]),
		ForecastRunID:     rec[41],
	}
	return r, nil
}

// Table is an ordered forecast table: a header plus one record per
// candidate row. It is the only input/output boundary of the pipeline.
type Table struct {
	Header  []string
	Records [][]string
}

// Encode renders rows as a canonical table.
func Encode(rows []*ForecastRow) Table {
	t := Table{Header: append([]string(nil), Columns...)}
	t.Records = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.Records = append(t.Records, r.Record())
	}
	return t
}
