// Package database provides persistence for the forecast enrichment
// system: forecast rows, pipeline run records, subscriber reference
// sets and imported draw history, backed by GORM and PostgreSQL.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the GORM database connection and provides access to the underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host, port, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ForecastRecord is one enriched candidate row as persisted after a
// pipeline run. Column names match the canonical forecast schema.
type ForecastRecord struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KitName      string `gorm:"size:50;not null;index:idx_forecasts_kit_draw" json:"kit_name"`
	Game         string `gorm:"size:20;not null;index" json:"game"`
	DrawDate     string `gorm:"size:10;not null;index:idx_forecasts_kit_draw" json:"draw_date"`
	ForecastDate string `gorm:"size:10" json:"forecast_date"`
	DrawTime     string `gorm:"size:10" json:"draw_time"`
	Number       string `gorm:"size:30;not null" json:"number"`

	StatScore       *float64 `json:"stat_score"`
	CycleScore      *float64 `json:"cycle_score"`
	PersonalScore   *float64 `json:"personal_score"`
	NumerologyScore *float64 `json:"numerology_score"`
	AstroScore      *float64 `json:"astro_score"`

	MoonWeight       *float64 `json:"moon_weight"`
	ZodiacWeight     *float64 `json:"zodiac_weight"`
	NumerologyWeight *float64 `json:"numerology_weight"`
	PlanetaryWeight  *float64 `json:"planetary_weight"`

	Pattern       string  `gorm:"size:20" json:"pattern"`
	PatternCode   string  `gorm:"size:10" json:"pattern_code"`
	PatternBucket string  `gorm:"size:20" json:"pattern_bucket"`
	PermCount     int     `json:"perm_count"`
	PlayType      string  `gorm:"size:30" json:"play_type"`
	Volatility    float64 `json:"volatility"`
	ComboAllowed  bool    `json:"combo_allowed"`
	OneOffAllowed bool    `json:"one_off_allowed"`

	ConfidenceScore float64 `json:"confidence_score"`
	ConfidenceBand  string  `gorm:"size:10" json:"confidence_band"`
	WLS             float64 `gorm:"column:wls" json:"wls"`
	MboOdds         int     `json:"mbo_odds"`
	MboOddsText     string  `gorm:"size:40" json:"mbo_odds_text"`

	AlignmentScore float64 `gorm:"column:personal_alignment_score" json:"personal_alignment_score"`
	AlignmentBand  string  `gorm:"column:personal_alignment_band;size:10" json:"personal_alignment_band"`

	ResonanceScore    int    `json:"resonance_score"`
	ResonanceRelation string `gorm:"size:60" json:"resonance_relation"`
	ResonanceLabel    string `gorm:"size:20" json:"resonance_label"`

	CorePickRank *int   `json:"core_pick_rank"`
	IsCorePick   bool   `gorm:"index" json:"is_core_pick"`
	BobAction    string `gorm:"size:30" json:"bob_action"`
	BobNote      string `gorm:"size:120" json:"bob_note"`

	JackpotScore *float64 `json:"jackpot_score"`
	JackpotRank  *int     `json:"jackpot_rank"`
	JackpotTier  string   `gorm:"size:10" json:"jackpot_tier"`
	JackpotPick  bool     `gorm:"column:jackpot_pick_flag" json:"jackpot_pick_flag"`

	ForecastRunID string    `gorm:"size:36;index" json:"forecast_run_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for ForecastRecord
func (ForecastRecord) TableName() string {
	return "forecasts"
}

// PipelineRun is the audit record of one completed (or failed)
// enrichment run.
type PipelineRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RunID      string    `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	KitName    string    `gorm:"size:50;not null;index" json:"kit_name"`
	RowCount   int       `json:"row_count"`
	CoreCount  int       `json:"core_count"`
	Status     string    `gorm:"size:20;not null" json:"status"` // COMPLETED / FAILED
	Error      string    `gorm:"size:300" json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for PipelineRun
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// Subscriber is a kit owner whose reference sets feed the resonance
// firewall. Reference values are private inputs and are never exposed
// through the API.
type Subscriber struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	KitName   string    `gorm:"size:50;not null;uniqueIndex" json:"kit_name"`
	Label     string    `gorm:"size:100" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Subscriber
func (Subscriber) TableName() string {
	return "subscribers"
}

// SubscriberReference is one reference number in a subscriber's
// per-game set.
type SubscriberReference struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID string    `gorm:"size:36;not null;index:idx_refs_subscriber_game" json:"subscriber_id"`
	Game         string    `gorm:"size:20;not null;index:idx_refs_subscriber_game" json:"game"`
	Value        string    `gorm:"size:10;not null" json:"value"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for SubscriberReference
func (SubscriberReference) TableName() string {
	return "subscriber_references"
}

// DrawResult is one official draw outcome, bulk-imported from the
// state lottery feeds.
type DrawResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Game      string    `gorm:"size:20;not null;index:idx_draws_game_date" json:"game"`
	DrawDate  string    `gorm:"size:10;not null;index:idx_draws_game_date" json:"draw_date"`
	DrawTime  string    `gorm:"size:10" json:"draw_time"`
	Number    string    `gorm:"size:30;not null" json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for DrawResult
func (DrawResult) TableName() string {
	return "draw_results"
}

// WebhookLog records every run-completion webhook delivery attempt.
type WebhookLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        string    `gorm:"size:36;index" json:"run_id"`
	URL          string    `gorm:"size:300" json:"url"`
	StatusCode   int       `json:"status_code"`
	Success      bool      `json:"success"`
	ErrorMessage string    `gorm:"size:300" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for WebhookLog
func (WebhookLog) TableName() string {
	return "webhook_logs"
}
