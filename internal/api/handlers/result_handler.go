package handlers

import (
	"net/http"
	"strconv"

	"github.com/tetris-arena/backend/internal/scorestore"
)

// ResultHandler exposes the optional leaderboard surface backed by
// scorestore.ScoreStore, mirroring result_repository.go's
// GetTopResults query generalized to this spec's plain result shape
// (SPEC_FULL.md §3).
type ResultHandler struct {
	store scorestore.ScoreStore
}

// NewResultHandler binds a ResultHandler to store. store may be nil, in
// which case every route reports the leaderboard as unavailable rather
// than panicking.
func NewResultHandler(store scorestore.ScoreStore) *ResultHandler {
	return &ResultHandler{store: store}
}

// TopScores serves GET /api/results/top?limit=N.
func (h *ResultHandler) TopScores(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "score store not configured")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.store.TopScores(r.Context(), limit)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, entries)
}
