package api

import (
	"encoding/json"
	"log"
	"net/http"

	"mybestodds-engine/database"
	"mybestodds-engine/games"
	"mybestodds-engine/helpers"
)

// gameInfo is the public shape of a game's configuration.
type gameInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // digit / jackpot
	BaseOdds  int    `json:"base_odds"`
	OddsText  string `json:"odds_text"`
	OddsFloor int    `json:"odds_floor"`
	PickLimit int    `json:"pick_limit"`
}

func describeGame(reg *games.Registry, name string) (gameInfo, bool) {
	if g, ok := reg.DigitGame(name); ok {
		return gameInfo{
			Name:      g.Name,
			Kind:      "digit",
			BaseOdds:  g.BaseOdds,
			OddsText:  helpers.FormatOdds(g.BaseOdds),
			OddsFloor: g.OddsFloor,
			PickLimit: g.PickLimit,
		}, true
	}
	if g, ok := reg.JackpotGame(name); ok {
		return gameInfo{
			Name:      g.Name,
			Kind:      "jackpot",
			BaseOdds:  g.BaseOdds,
			OddsText:  helpers.FormatOdds(g.BaseOdds),
			OddsFloor: g.OddsFloor,
			PickLimit: g.PickLimit,
		}, true
	}
	return gameInfo{}, false
}

// handleGetGames lists every configured game
func (s *Server) handleGetGames(w http.ResponseWriter, r *http.Request) {
	reg := games.NewRegistry()

	infos := make([]gameInfo, 0)
	for _, name := range reg.Names() {
		if info, ok := describeGame(reg, name); ok {
			infos = append(infos, info)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": infos,
		"count": len(infos),
	})
}

// handleGetGame returns one game's configuration
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	info, ok := describeGame(games.NewRegistry(), name)
	if !ok {
		respondWithError(w, http.StatusNotFound, "unknown game: "+name, nil)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handleGetDrawHistory returns official draw results for a game
func (s *Server) handleGetDrawHistory(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		respondWithError(w, http.StatusBadRequest, "game parameter is required", nil)
		return
	}

	minLimit, maxLimit := 1, 1000
	limit := getIntParam(r, "limit", 100, &minLimit, &maxLimit)

	results, err := s.repo.DrawHistory(game, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load draw history", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"game":    game,
		"results": results,
		"count":   len(results),
	})
}

// DrawImportRequest is the POST /api/draws/import body.
type DrawImportRequest struct {
	Results []database.DrawResult `json:"results"`
}

// handleImportDraws bulk-loads official draw results through the COPY
// path. Re-importing overlapping feed files is safe; duplicates are
// dropped on merge.
func (s *Server) handleImportDraws(w http.ResponseWriter, r *http.Request) {
	if s.rawDB == nil {
		respondWithError(w, http.StatusServiceUnavailable, "bulk import unavailable", nil)
		return
	}

	var req DrawImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Results) == 0 {
		respondWithError(w, http.StatusBadRequest, "results must not be empty", nil)
		return
	}

	reg := games.NewRegistry()
	for _, res := range req.Results {
		if res.Game == "" || res.DrawDate == "" || res.Number == "" {
			respondWithError(w, http.StatusUnprocessableEntity,
				"game, draw_date and number are required for every result", nil)
			return
		}
		if cfg, ok := reg.JackpotGame(res.Game); ok {
			if _, err := games.ParseBallSet(res.Number, cfg); err != nil {
				respondWithError(w, http.StatusUnprocessableEntity, err.Error(), nil)
				return
			}
		}
	}

	inserted, err := s.rawDB.BulkLoadDrawResults(req.Results)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "bulk import failed", err)
		return
	}

	log.Printf("📊 Imported %d draw results (%d submitted)", inserted, len(req.Results))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported":  inserted,
		"submitted": len(req.Results),
	})
}
