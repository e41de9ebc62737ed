package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mybestodds-engine/database"
	"mybestodds-engine/pipeline"
)

// RunRequest is the POST /api/runs body: a kit name plus its raw
// forecast table.
type RunRequest struct {
	KitName string     `json:"kit_name"`
	Header  []string   `json:"header"`
	Records [][]string `json:"records"`
}

// handleTriggerRun validates and runs a submitted forecast table
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.KitName == "" {
		respondWithError(w, http.StatusBadRequest, "kit_name is required", nil)
		return
	}

	t := pipeline.Table{Header: req.Header, Records: req.Records}
	res, err := s.service.RunTable(r.Context(), req.KitName, t)
	if err != nil {
		s.respondRunError(w, err)
		return
	}

	log.Printf("✅ Run %s completed for %s (%d rows)", res.RunID, res.KitName, len(res.Rows))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      res.RunID,
		"kit_name":    res.KitName,
		"row_count":   len(res.Rows),
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// handleRerunKit re-runs the pipeline for a kit's stored rows
func (s *Server) handleRerunKit(w http.ResponseWriter, r *http.Request) {
	kit := r.PathValue("kit")
	date := getDateParam(r, "date")

	res, err := s.service.RunStoredKit(r.Context(), kit, date)
	if err != nil {
		s.respondRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      res.RunID,
		"kit_name":    res.KitName,
		"draw_date":   date,
		"row_count":   len(res.Rows),
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// respondRunError maps pipeline failures onto status codes: schema and
// firewall problems are the caller's fault, everything else is ours.
func (s *Server) respondRunError(w http.ResponseWriter, err error) {
	var schemaErr *pipeline.SchemaError
	var refErr *pipeline.ReferenceSetError
	var violation *pipeline.FirewallViolation
	var notFound *database.NotFoundError

	switch {
	case errors.As(err, &schemaErr):
		respondWithError(w, http.StatusUnprocessableEntity, schemaErr.Error(), nil)
	case errors.As(err, &refErr):
		respondWithError(w, http.StatusUnprocessableEntity, refErr.Error(), nil)
	case errors.As(err, &violation):
		respondWithError(w, http.StatusConflict, violation.Error(), nil)
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, notFound.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "pipeline run failed", err)
	}
}

// handleGetRuns returns recent pipeline runs
func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	minLimit, maxLimit := 1, 200
	limit := getIntParam(r, "limit", 20, &minLimit, &maxLimit)

	runs, err := s.repo.RecentRuns(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load runs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetLastRun returns the cached summary of a kit's most recent
// run, without touching Postgres
func (s *Server) handleGetLastRun(w http.ResponseWriter, r *http.Request) {
	kit := r.URL.Query().Get("kit")
	if kit == "" {
		respondWithError(w, http.StatusBadRequest, "kit parameter is required", nil)
		return
	}

	summary, hit := s.cache.GetLastRun(r.Context(), kit)
	if !hit {
		respondWithError(w, http.StatusNotFound, "no cached run for kit "+kit, nil)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleGetRun returns one pipeline run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")

	run, err := s.repo.GetRun(runID)
	if err != nil {
		var notFound *database.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, notFound.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load run", err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// handleValidateTable runs only the schema gate over a submitted
// table, without enrichment or persistence
func (s *Server) handleValidateTable(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t := pipeline.Table{Header: req.Header, Records: req.Records}
	if err := pipeline.ValidateSchema(req.KitName, t); err != nil {
		var schemaErr *pipeline.SchemaError
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"valid":    false,
				"kind":     schemaErr.Kind,
				"position": schemaErr.Position,
				"message":  schemaErr.Error(),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "validation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"row_count": len(req.Records),
	})
}

// handleHealth is the liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
