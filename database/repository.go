package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForecastRepository handles database operations for forecasts, runs,
// subscribers and draw history.
type ForecastRepository struct {
	db *Database
}

// NewForecastRepository creates a new forecast repository
func NewForecastRepository(db *Database) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// InitSchema performs auto-migration for all forecast tables
func (r *ForecastRepository) InitSchema() error {
	fmt.Println("🔄 Starting database schema initialization...")

	err := r.db.db.AutoMigrate(
		&ForecastRecord{},
		&PipelineRun{},
		&Subscriber{},
		&SubscriberReference{},
		&DrawResult{},
		&WebhookLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// Re-running a kit for the same draw replaces its rows; the unique
	// index backs the upsert in SaveForecasts.
	r.db.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_forecasts_unique_candidate
		ON forecasts (kit_name, game, draw_date, draw_time, number)
	`)

	r.db.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_draw_results_unique
		ON draw_results (game, draw_date, draw_time)
	`)

	fmt.Println("✅ Database schema initialized successfully")
	return nil
}

// SaveForecasts upserts a run's enriched rows. Conflicts on the
// candidate identity replace every derived column, so the table always
// reflects the latest run.
func (r *ForecastRepository) SaveForecasts(records []*ForecastRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := r.db.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "kit_name"}, {Name: "game"}, {Name: "draw_date"},
			{Name: "draw_time"}, {Name: "number"},
		},
		UpdateAll: true,
	}).CreateInBatches(records, 500).Error

	return WrapDBError("SaveForecasts", err)
}

// SaveRun records a pipeline run outcome.
func (r *ForecastRepository) SaveRun(run *PipelineRun) error {
	return WrapDBError("SaveRun", r.db.db.Create(run).Error)
}

// GetRun fetches a pipeline run by run ID.
func (r *ForecastRepository) GetRun(runID string) (*PipelineRun, error) {
	var run PipelineRun
	err := r.db.db.Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundErrorWithID("pipeline run", runID)
	}
	if err != nil {
		return nil, WrapDBError("GetRun", err)
	}
	return &run, nil
}

// RecentRuns returns the latest runs, newest first.
func (r *ForecastRepository) RecentRuns(limit int) ([]PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []PipelineRun
	err := r.db.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, WrapDBError("RecentRuns", err)
}

// ForecastsForKit returns a kit's rows for one draw date, core picks
// first, then by confidence.
func (r *ForecastRepository) ForecastsForKit(kitName, drawDate string) ([]ForecastRecord, error) {
	var records []ForecastRecord
	err := r.db.db.
		Where("kit_name = ? AND draw_date = ?", kitName, drawDate).
		Order("is_core_pick DESC, confidence_score DESC").
		Find(&records).Error
	return records, WrapDBError("ForecastsForKit", err)
}

// CorePicks returns only the tagged core picks for a kit and date,
// rank order.
func (r *ForecastRepository) CorePicks(kitName, drawDate string) ([]ForecastRecord, error) {
	var records []ForecastRecord
	err := r.db.db.
		Where("kit_name = ? AND draw_date = ? AND is_core_pick = ?", kitName, drawDate, true).
		Order("core_pick_rank ASC").
		Find(&records).Error
	return records, WrapDBError("CorePicks", err)
}

// JackpotPicks returns the flagged jackpot picks for a draw date
// across kits.
func (r *ForecastRepository) JackpotPicks(drawDate string) ([]ForecastRecord, error) {
	var records []ForecastRecord
	err := r.db.db.
		Where("draw_date = ? AND jackpot_pick_flag = ?", drawDate, true).
		Order("game ASC, jackpot_rank ASC").
		Find(&records).Error
	return records, WrapDBError("JackpotPicks", err)
}

// SubscriberByKit resolves the subscriber owning a kit, or a not-found
// error.
func (r *ForecastRepository) SubscriberByKit(kitName string) (*Subscriber, error) {
	var sub Subscriber
	err := r.db.db.Where("kit_name = ?", kitName).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundErrorWithID("subscriber", kitName)
	}
	if err != nil {
		return nil, WrapDBError("SubscriberByKit", err)
	}
	return &sub, nil
}

// ReferenceValues loads a subscriber's reference numbers for one game.
func (r *ForecastRepository) ReferenceValues(subscriberID, game string) ([]string, error) {
	var values []string
	err := r.db.db.Model(&SubscriberReference{}).
		Where("subscriber_id = ? AND game = ?", subscriberID, game).
		Order("value ASC").
		Pluck("value", &values).Error
	return values, WrapDBError("ReferenceValues", err)
}

// ReplaceReferenceValues swaps a subscriber's whole per-game set in
// one transaction. Reference sets are replaced atomically, never
// merged.
func (r *ForecastRepository) ReplaceReferenceValues(subscriberID, game string, values []string) error {
	err := r.db.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subscriber_id = ? AND game = ?", subscriberID, game).
			Delete(&SubscriberReference{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, v := range values {
			ref := SubscriberReference{
				SubscriberID: subscriberID,
				Game:         game,
				Value:        v,
				CreatedAt:    now,
			}
			if err := tx.Create(&ref).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return WrapDBError("ReplaceReferenceValues", err)
}

// DrawHistory returns official results for a game, newest first.
func (r *ForecastRepository) DrawHistory(game string, limit int) ([]DrawResult, error) {
	if limit <= 0 {
		limit = 100
	}
	var results []DrawResult
	err := r.db.db.
		Where("game = ?", game).
		Order("draw_date DESC, draw_time DESC").
		Limit(limit).
		Find(&results).Error
	return results, WrapDBError("DrawHistory", err)
}

// SaveWebhookLog records a webhook delivery attempt.
func (r *ForecastRepository) SaveWebhookLog(entry *WebhookLog) error {
	return WrapDBError("SaveWebhookLog", r.db.db.Create(entry).Error)
}

// KitNames lists every kit that has forecast rows.
func (r *ForecastRepository) KitNames() ([]string, error) {
	var names []string
	err := r.db.db.Model(&ForecastRecord{}).
		Distinct("kit_name").
		Order("kit_name ASC").
		Pluck("kit_name", &names).Error
	return names, WrapDBError("KitNames", err)
}
