package api

import (
	"log"
	"net/http"
)

// handleGetForecasts returns a kit's enriched rows for a draw date
func (s *Server) handleGetForecasts(w http.ResponseWriter, r *http.Request) {
	kit := r.URL.Query().Get("kit")
	if kit == "" {
		respondWithError(w, http.StatusBadRequest, "kit parameter is required", nil)
		return
	}
	date := getDateParam(r, "date")

	records, err := s.repo.ForecastsForKit(kit, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load forecasts", err)
		return
	}

	log.Printf("📊 Returning %d forecasts for %s on %s", len(records), kit, date)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kit_name":  kit,
		"draw_date": date,
		"forecasts": records,
		"count":     len(records),
	})
}

// handleGetCorePicks returns only the tagged core picks, rank order
func (s *Server) handleGetCorePicks(w http.ResponseWriter, r *http.Request) {
	kit := r.URL.Query().Get("kit")
	if kit == "" {
		respondWithError(w, http.StatusBadRequest, "kit parameter is required", nil)
		return
	}
	date := getDateParam(r, "date")

	records, err := s.repo.CorePicks(kit, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load core picks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kit_name":   kit,
		"draw_date":  date,
		"core_picks": records,
		"count":      len(records),
	})
}

// handleGetJackpotPicks returns flagged jackpot picks across kits for
// a draw date
func (s *Server) handleGetJackpotPicks(w http.ResponseWriter, r *http.Request) {
	date := getDateParam(r, "date")

	records, err := s.repo.JackpotPicks(date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load jackpot picks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"draw_date":     date,
		"jackpot_picks": records,
		"count":         len(records),
	})
}
