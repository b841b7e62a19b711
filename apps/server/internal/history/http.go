package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hokm-lite/apps/server/internal/auth"
	"hokm-lite/hokm"
)

type HTTPHandler struct {
	auth  auth.Service
	store Store
}

type errorResponse struct {
	Error string `json:"error"`
}

type matchDetailResponse struct {
	Match MatchRecord  `json:"match"`
	Hands []HandRecord `json:"hands"`
}

func NewHTTPHandler(authService auth.Service, store Store) *HTTPHandler {
	return &HTTPHandler{auth: authService, store: store}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history/matches", h.handleListMatches)
	mux.HandleFunc("/api/history/matches/", h.handleMatchDetail)
	mux.HandleFunc("/api/history/hands/", h.handleHandTricks)
	mux.HandleFunc("/api/history/stats", h.handleStats)
}

func (h *HTTPHandler) authedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return "", false
	}
	userID, _, ok := h.auth.ResolveSession(token)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return "", false
	}
	return userID, true
}

func (h *HTTPHandler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	matches, err := h.store.ListPlayerMatches(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []MatchRecord{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *HTTPHandler) handleMatchDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := h.authedUser(w, r); !ok {
		return
	}

	matchID := strings.TrimPrefix(r.URL.Path, "/api/history/matches/")
	if matchID == "" || strings.Contains(matchID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	match, err := h.store.GetMatch(r.Context(), matchID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load match")
		return
	}
	hands, err := h.store.ListHands(r.Context(), matchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load hands")
		return
	}
	if hands == nil {
		hands = []HandRecord{}
	}
	writeJSON(w, http.StatusOK, matchDetailResponse{Match: *match, Hands: hands})
}

func (h *HTTPHandler) handleHandTricks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := h.authedUser(w, r); !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/history/hands/")
	handID := strings.TrimSuffix(rest, "/tricks")
	if handID == "" || strings.Contains(handID, "/") || handID == rest {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	tricks, err := h.store.ListTricks(r.Context(), handID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load tricks")
		return
	}
	if tricks == nil {
		tricks = []TrickRecord{}
	}
	writeJSON(w, http.StatusOK, tricks)
}

// handleStats aggregates the caller's finished matches into win/hand/trick
// totals.
func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	matches, err := h.store.ListPlayerMatches(r.Context(), userID, 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load matches")
		return
	}

	stats := hokm.PlayerStats{PlayerID: userID}
	for _, match := range matches {
		if match.FinishedAt == nil {
			continue
		}
		key := scoreKeyFor(match, userID)
		won := match.WinnerKey != "" && match.WinnerKey == key

		tricks := 0
		hands, err := h.store.ListHands(r.Context(), match.ID)
		if err == nil {
			for _, hand := range hands {
				tricks += hand.Scores[key]
			}
		}
		stats.AddMatch(won, match.FinalScore[key], tricks)
	}
	writeJSON(w, http.StatusOK, stats)
}

func scoreKeyFor(match MatchRecord, playerID string) string {
	for _, p := range match.Players {
		if p.ID == playerID && p.Team >= 0 {
			return hokm.TeamKey(p.Team)
		}
	}
	return playerID
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
