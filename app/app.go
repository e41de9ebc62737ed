package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mybestodds-engine/api"
	"mybestodds-engine/cache"
	"mybestodds-engine/config"
	"mybestodds-engine/database"
	"mybestodds-engine/games"
	"mybestodds-engine/notifications"
	"mybestodds-engine/pipeline"
	"mybestodds-engine/realtime"
)

// App represents the main application
type App struct {
	config         *config.Config
	db             *database.Database
	rawDB          *database.DB
	redis          *cache.RedisClient
	repo           *database.ForecastRepository
	forecastCache  *cache.ForecastCache
	webhookManager *notifications.WebhookManager
	broker         *realtime.Broker
	service        *ForecastService
	runner         *ForecastRunner
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
	}
}

// Start starts the application
func (a *App) Start() error {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")
	db, err := database.Connect(
		a.config.DatabaseHost,
		a.config.DatabasePort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	// Raw connection for the COPY-protocol bulk import path. Losing it
	// only disables bulk import, not the engine.
	rawDB, err := database.NewConnection(database.Config{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		log.Printf("⚠️  Bulk import connection failed: %v", err)
	} else {
		a.rawDB = rawDB
	}

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}
	a.forecastCache = cache.NewForecastCache(a.redis)

	// 3. Schema initialization
	a.repo = database.NewForecastRepository(a.db)
	if err := a.repo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 4. Webhook manager and realtime broker
	a.webhookManager = notifications.NewWebhookManager(a.repo, a.config.WebhookURL, a.config.WebhookEnabled)
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 5. Pipeline engine + orchestration service
	weights := pipeline.ScoreWeights{
		Stat:       a.config.Forecast.StatWeight,
		Cycle:      a.config.Forecast.CycleWeight,
		Personal:   a.config.Forecast.PersonalWeight,
		Numerology: a.config.Forecast.NumerologyWeight,
		Astro:      a.config.Forecast.AstroWeight,
	}
	engine := pipeline.NewEngine(games.NewRegistry(), weights)
	a.service = NewForecastService(engine, a.repo, a.forecastCache, a.broker, a.webhookManager, a.config)

	// 6. Background forecast runner
	if a.config.Forecast.RunnerEnabled {
		log.Println("🚀 Starting forecast runner...")
		interval := time.Duration(a.config.Forecast.RunIntervalMinutes) * time.Minute
		a.runner = NewForecastRunner(a.service, a.repo, a.forecastCache, interval)
		go a.runner.Start()
	} else {
		log.Println("ℹ️  Forecast runner DISABLED")
	}

	// 7. API server
	port, err := strconv.Atoi(a.config.APIPort)
	if err != nil {
		return fmt.Errorf("invalid API port: %w", err)
	}
	apiServer := api.NewServer(a.repo, a.rawDB, a.service, a.forecastCache, a.broker)
	go func() {
		if err := apiServer.Start(port); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 8. Wait for interrupt and perform graceful shutdown
	return a.gracefulShutdown(cancel)
}

// Service exposes the orchestration service, mainly for the API layer.
func (a *App) Service() *ForecastService {
	return a.service
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown(cancel context.CancelFunc) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if a.runner != nil {
			fmt.Println("🔄 Stopping forecast runner...")
			a.runner.Stop()
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}
		if a.rawDB != nil {
			if err := a.rawDB.Close(); err != nil {
				log.Printf("Error closing bulk import connection: %v", err)
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
