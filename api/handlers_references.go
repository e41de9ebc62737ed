package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"mybestodds-engine/database"
	"mybestodds-engine/games"
	"mybestodds-engine/pipeline"
)

// ReferenceSetRequest is the PUT body for a subscriber's per-game
// reference numbers. The submitted set replaces the stored one whole.
type ReferenceSetRequest struct {
	Game   string   `json:"game"`
	Values []string `json:"values"`
}

// handlePutReferences replaces a subscriber's reference set for one
// game. The set is validated before anything is written; the cached
// copy is dropped so the next run reads the fresh values.
func (s *Server) handlePutReferences(w http.ResponseWriter, r *http.Request) {
	kit := r.PathValue("kit")

	var req ReferenceSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cfg, ok := games.NewRegistry().DigitGame(req.Game)
	if !ok {
		respondWithError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("reference sets only apply to digit games, got %q", req.Game), nil)
		return
	}
	if err := pipeline.ValidateReferenceSet(req.Values, cfg.Digits, req.Game); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}

	sub, err := s.repo.SubscriberByKit(kit)
	if err != nil {
		var notFound *database.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, notFound.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to resolve subscriber", err)
		return
	}

	if err := s.repo.ReplaceReferenceValues(sub.ID, req.Game, req.Values); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to replace reference set", err)
		return
	}
	if err := s.cache.InvalidateReferenceSet(r.Context(), sub.ID, req.Game); err != nil {
		log.Printf("⚠️  Failed to invalidate cached reference set for %s/%s: %v", kit, req.Game, err)
	}

	log.Printf("✅ Reference set replaced for %s/%s (%d values)", kit, req.Game, len(req.Values))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kit_name": kit,
		"game":     req.Game,
		"count":    len(req.Values),
	})
}
