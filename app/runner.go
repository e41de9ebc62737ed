package app

import (
	"context"
	"log"
	"time"

	"mybestodds-engine/cache"
	"mybestodds-engine/database"
)

// ForecastRunner periodically re-runs the pipeline for every kit so
// stored forecasts track reference-set changes without manual
// triggering.
type ForecastRunner struct {
	service  *ForecastService
	repo     *database.ForecastRepository
	cache    *cache.ForecastCache
	interval time.Duration
	done     chan bool
}

// Cooldown between automatic runs for the same kit.
const runCooldown = 10 * time.Minute

// NewForecastRunner creates a new forecast runner
func NewForecastRunner(service *ForecastService, repo *database.ForecastRepository, fc *cache.ForecastCache, interval time.Duration) *ForecastRunner {
	return &ForecastRunner{
		service:  service,
		repo:     repo,
		cache:    fc,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start begins the run loop
func (fr *ForecastRunner) Start() {
	log.Printf("🔄 Forecast Runner started (interval %v)", fr.interval)

	ticker := time.NewTicker(fr.interval)
	defer ticker.Stop()

	// Initial run
	fr.runAllKits()

	for {
		select {
		case <-ticker.C:
			fr.runAllKits()
		case <-fr.done:
			log.Println("🔄 Forecast Runner stopped")
			return
		}
	}
}

// Stop stops the run loop
func (fr *ForecastRunner) Stop() {
	fr.done <- true
}

func (fr *ForecastRunner) runAllKits() {
	ctx := context.Background()

	kits, err := fr.repo.KitNames()
	if err != nil {
		log.Printf("⚠️  Forecast runner: failed to list kits: %v", err)
		return
	}
	if len(kits) == 0 {
		return
	}

	drawDate := time.Now().Format("2006-01-02")
	for _, kit := range kits {
		if fr.cache.IsInRunCooldown(ctx, kit) {
			continue
		}

		if _, err := fr.service.RunStoredKit(ctx, kit, drawDate); err != nil {
			if _, notFound := err.(*database.NotFoundError); notFound {
				// No rows for today's draw yet; normal early in the day.
				continue
			}
			log.Printf("⚠️  Forecast runner: %s failed: %v", kit, err)
			continue
		}

		_ = fr.cache.SetRunCooldown(ctx, kit, runCooldown)
	}
}
