package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"mybestodds-engine/cache"
	"mybestodds-engine/database"
	"mybestodds-engine/pipeline"
	"mybestodds-engine/realtime"
)

// Server handles HTTP API requests
type Server struct {
	repo    *database.ForecastRepository
	rawDB   *database.DB // COPY-protocol bulk import path
	service RunService
	cache   *cache.ForecastCache
	broker  *realtime.Broker
}

// RunService is the orchestration surface the API needs: table runs
// and stored-kit reruns.
type RunService interface {
	RunTable(ctx context.Context, kitName string, t pipeline.Table) (*pipeline.Result, error)
	RunStoredKit(ctx context.Context, kitName, drawDate string) (*pipeline.Result, error)
}

// NewServer creates a new API server instance
func NewServer(repo *database.ForecastRepository, rawDB *database.DB, service RunService, fc *cache.ForecastCache, broker *realtime.Broker) *Server {
	return &Server{
		repo:    repo,
		rawDB:   rawDB,
		service: service,
		cache:   fc,
		broker:  broker,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Register routes
	mux.Handle("GET /api/events", s.broker) // SSE Endpoint
	mux.HandleFunc("GET /api/live", s.handleLiveFeed)

	mux.HandleFunc("GET /api/games", s.handleGetGames)
	mux.HandleFunc("GET /api/games/{name}", s.handleGetGame)

	mux.HandleFunc("GET /api/forecasts", s.handleGetForecasts)
	mux.HandleFunc("GET /api/forecasts/core", s.handleGetCorePicks)
	mux.HandleFunc("GET /api/forecasts/jackpot", s.handleGetJackpotPicks)

	mux.HandleFunc("POST /api/runs", s.handleTriggerRun)
	mux.HandleFunc("POST /api/runs/{kit}/rerun", s.handleRerunKit)
	mux.HandleFunc("GET /api/runs", s.handleGetRuns)
	mux.HandleFunc("GET /api/runs/last", s.handleGetLastRun)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)

	mux.HandleFunc("PUT /api/subscribers/{kit}/references", s.handlePutReferences)

	mux.HandleFunc("POST /api/validate", s.handleValidateTable)

	mux.HandleFunc("GET /api/draws", s.handleGetDrawHistory)
	mux.HandleFunc("POST /api/draws/import", s.handleImportDraws)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Serve Static Files (Public UI)
	fs := http.FileServer(http.Dir("./public"))
	mux.Handle("GET /", fs)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Handlers are distributed across multiple files:
// - handlers_forecasts.go: Forecast rows, core picks, jackpot picks
// - handlers_runs.go: Run triggering, run history, table validation
// - handlers_references.go: Subscriber reference-set management
// - handlers_games.go: Game registry and draw history
// - live.go: WebSocket live feed
