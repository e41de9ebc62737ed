package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"mybestodds-engine/cache"
	"mybestodds-engine/config"
	"mybestodds-engine/database"
	"mybestodds-engine/games"
	"mybestodds-engine/notifications"
	"mybestodds-engine/pipeline"
	"mybestodds-engine/realtime"
)

// ForecastService orchestrates pipeline runs: it loads candidate rows
// and subscriber reference sets, runs the enrichment engine, persists
// the output and fans out notifications.
type ForecastService struct {
	engine  *pipeline.Engine
	repo    *database.ForecastRepository
	cache   *cache.ForecastCache
	broker  *realtime.Broker
	webhook *notifications.WebhookManager
	cfg     *config.Config
}

// NewForecastService creates a forecast service
func NewForecastService(
	engine *pipeline.Engine,
	repo *database.ForecastRepository,
	fc *cache.ForecastCache,
	broker *realtime.Broker,
	webhook *notifications.WebhookManager,
	cfg *config.Config,
) *ForecastService {
	return &ForecastService{
		engine:  engine,
		repo:    repo,
		cache:   fc,
		broker:  broker,
		webhook: webhook,
		cfg:     cfg,
	}
}

// RunTable runs the pipeline over a submitted forecast table and
// persists the enriched output. This is the API ingestion path.
func (s *ForecastService) RunTable(ctx context.Context, kitName string, t pipeline.Table) (*pipeline.Result, error) {
	rows, err := pipeline.Decode(kitName, t)
	if err != nil {
		return nil, err
	}
	return s.runRows(ctx, kitName, rows)
}

// RunStoredKit re-runs the pipeline over a kit's stored rows for one
// draw date. Derived columns are recomputed from scratch; the stored
// rows' upstream fields are the only inputs that matter.
func (s *ForecastService) RunStoredKit(ctx context.Context, kitName, drawDate string) (*pipeline.Result, error) {
	records, err := s.repo.ForecastsForKit(kitName, drawDate)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, database.NewNotFoundErrorWithID("forecasts", kitName+" "+drawDate)
	}

	rows := make([]*pipeline.ForecastRow, 0, len(records))
	for i := range records {
		rows = append(rows, recordToRow(&records[i]))
	}
	return s.runRows(ctx, kitName, rows)
}

func (s *ForecastService) runRows(ctx context.Context, kitName string, rows []*pipeline.ForecastRow) (*pipeline.Result, error) {
	s.broker.RunStarted(kitName, len(rows))

	// Fingerprint the inputs before enrichment touches them.
	inputHash := cache.GenerateDataHash(rows)

	refs, err := s.loadReferenceSets(ctx, kitName)
	if err != nil {
		return nil, err
	}

	res, runErr := s.engine.RunRows(kitName, rows, refs)
	if runErr != nil {
		s.recordFailedRun(kitName, runErr)
		return nil, runErr
	}

	if err := s.persistResult(ctx, res, inputHash); err != nil {
		return nil, err
	}
	return res, nil
}

// loadReferenceSets resolves the kit's subscriber and reference sets,
// cache first. A kit without a subscriber runs without personalization.
func (s *ForecastService) loadReferenceSets(ctx context.Context, kitName string) (*pipeline.ReferenceSets, error) {
	sub, err := s.repo.SubscriberByKit(kitName)
	if err != nil {
		if _, notFound := err.(*database.NotFoundError); notFound {
			return nil, nil
		}
		return nil, err
	}

	refs := &pipeline.ReferenceSets{SubscriberID: sub.ID}
	for _, game := range []string{games.Cash3, games.Cash4} {
		cfg, _ := s.engine.Games().DigitGame(game)
		values, hit := s.cache.GetReferenceSet(ctx, sub.ID, game)
		if !hit {
			values, err = s.repo.ReferenceValues(sub.ID, game)
			if err != nil {
				return nil, err
			}
			// Malformed sets never reach the cache.
			if err := pipeline.ValidateReferenceSet(values, cfg.Digits, game); err != nil {
				return nil, err
			}
			ttl := time.Duration(s.cfg.Forecast.ReferenceCacheTTLMinutes) * time.Minute
			_ = s.cache.SetReferenceSet(ctx, sub.ID, game, values, ttl)
		}
		switch game {
		case games.Cash3:
			refs.Cash3 = values
		case games.Cash4:
			refs.Cash4 = values
		}
	}
	return refs, nil
}

func (s *ForecastService) persistResult(ctx context.Context, res *pipeline.Result, inputHash string) error {
	records := make([]*database.ForecastRecord, 0, len(res.Rows))
	coreCount := 0
	var top *database.ForecastRecord
	for _, r := range res.Rows {
		rec := rowToRecord(r)
		records = append(records, rec)
		if r.IsCorePick {
			coreCount++
			if r.CorePickRank != nil && *r.CorePickRank == 1 && top == nil {
				top = rec
			}
		}
	}

	if err := s.repo.SaveForecasts(records); err != nil {
		return err
	}

	run := &database.PipelineRun{
		RunID:      res.RunID,
		KitName:    res.KitName,
		RowCount:   len(res.Rows),
		CoreCount:  coreCount,
		Status:     "COMPLETED",
		DurationMs: res.Duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.SaveRun(run); err != nil {
		return err
	}

	_ = s.cache.SetLastRun(ctx, &cache.RunSummary{
		RunID:      res.RunID,
		KitName:    res.KitName,
		RowCount:   run.RowCount,
		CoreCount:  coreCount,
		DurationMs: run.DurationMs,
		DataHash:   inputHash,
		FinishedAt: run.CreatedAt.Unix(),
	}, 24*time.Hour)

	s.broker.RunCompleted(res.RunID, res.KitName, run.RowCount, coreCount, run.DurationMs)
	s.webhook.NotifyRunComplete(run, top)
	return nil
}

func (s *ForecastService) recordFailedRun(kitName string, runErr error) {
	run := &database.PipelineRun{
		RunID:     fmt.Sprintf("failed-%d", time.Now().UnixNano()),
		KitName:   kitName,
		Status:    "FAILED",
		Error:     runErr.Error(),
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveRun(run); err != nil {
		log.Printf("⚠️  Failed to record failed run for %s: %v", kitName, err)
	}
}

// recordToRow converts a persisted record back into a pipeline row.
func recordToRow(rec *database.ForecastRecord) *pipeline.ForecastRow {
	return &pipeline.ForecastRow{
		KitName:      rec.KitName,
		Game:         rec.Game,
		DrawDate:     rec.DrawDate,
		ForecastDate: rec.ForecastDate,
		DrawTime:     rec.DrawTime,
		Number:       rec.Number,

		StatScore:       rec.StatScore,
		CycleScore:      rec.CycleScore,
		PersonalScore:   rec.PersonalScore,
		NumerologyScore: rec.NumerologyScore,
		AstroScore:      rec.AstroScore,

		MoonWeight:       rec.MoonWeight,
		ZodiacWeight:     rec.ZodiacWeight,
		NumerologyWeight: rec.NumerologyWeight,
		PlanetaryWeight:  rec.PlanetaryWeight,
	}
}

// rowToRecord converts an enriched pipeline row into its persisted
// shape.
func rowToRecord(r *pipeline.ForecastRow) *database.ForecastRecord {
	return &database.ForecastRecord{
		KitName:      r.KitName,
		Game:         r.Game,
		DrawDate:     r.DrawDate,
		ForecastDate: r.ForecastDate,
		DrawTime:     r.DrawTime,
		Number:       r.Number,

		StatScore:       r.StatScore,
		CycleScore:      r.CycleScore,
		PersonalScore:   r.PersonalScore,
		NumerologyScore: r.NumerologyScore,
		AstroScore:      r.AstroScore,

		MoonWeight:       r.MoonWeight,
		ZodiacWeight:     r.ZodiacWeight,
		NumerologyWeight: r.NumerologyWeight,
		PlanetaryWeight:  r.PlanetaryWeight,

		Pattern:       r.Pattern,
		PatternCode:   r.PatternCode,
		PatternBucket: r.PatternBucket,
		PermCount:     r.PermCount,
		PlayType:      r.PlayType,
		Volatility:    r.Volatility,
		ComboAllowed:  r.ComboAllowed,
		OneOffAllowed: r.OneOffAllowed,

		ConfidenceScore: r.ConfidenceScore,
		ConfidenceBand:  r.ConfidenceBand,
		WLS:             r.WLS,
		MboOdds:         r.MboOdds,
		MboOddsText:     r.MboOddsText,

		AlignmentScore: r.AlignmentScore,
		AlignmentBand:  r.AlignmentBand,

		ResonanceScore:    r.ResonanceScore,
		ResonanceRelation: r.ResonanceRelation,
		ResonanceLabel:    r.ResonanceLabel,

		CorePickRank: r.CorePickRank,
		IsCorePick:   r.IsCorePick,
		BobAction:    r.BobAction,
		BobNote:      r.BobNote,

		JackpotScore: r.JackpotScore,
		JackpotRank:  r.JackpotRank,
		JackpotTier:  r.JackpotTier,
		JackpotPick:  r.JackpotPick,

		ForecastRunID: r.ForecastRunID,
	}
}
