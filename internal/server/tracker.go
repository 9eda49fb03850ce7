package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tabletennis-tracker/internal/analytics"
	"tabletennis-tracker/internal/domain"
	"tabletennis-tracker/internal/middleware"
	"tabletennis-tracker/internal/repository"
	"tabletennis-tracker/internal/service"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type TrackerServer struct {
	matchSvc     *service.MatchService
	analyticsSvc *service.AnalyticsService
}

func NewTrackerServer(matchSvc *service.MatchService, analyticsSvc *service.AnalyticsService) *TrackerServer {
	return &TrackerServer{matchSvc: matchSvc, analyticsSvc: analyticsSvc}
}

func (s *TrackerServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /v1/matchups", s.getMatchup)
	mux.HandleFunc("GET /v1/matchups/top", s.topMatchups)
	mux.HandleFunc("POST /v1/matchups/recompute", s.recomputeAll)
	mux.HandleFunc("GET /v1/matches", s.listMatches)
	mux.HandleFunc("POST /v1/matches", s.recordMatch)
	mux.HandleFunc("GET /v1/matches/{id}", s.getMatch)
	mux.HandleFunc("GET /v1/players", s.searchPlayers)
	return mux
}

func (s *TrackerServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *TrackerServer) getMatchup(w http.ResponseWriter, r *http.Request) {
	pair, ok := pairParam(w, r)
	if !ok {
		return
	}

	snap, err := s.analyticsSvc.Get(r.Context(), pair)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchup(snap))
}

func (s *TrackerServer) topMatchups(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	snaps, err := s.analyticsSvc.Top(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Matchup, len(snaps))
	for i, snap := range snaps {
		out[i] = toMatchup(snap)
	}
	writeJSON(w, http.StatusOK, map[string]any{"matchups": out})
}

func (s *TrackerServer) recomputeAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.analyticsSvc.RecomputeAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pairs": n})
}

func (s *TrackerServer) listMatches(w http.ResponseWriter, r *http.Request) {
	pair, ok := pairParam(w, r)
	if !ok {
		return
	}

	history, err := s.matchSvc.History(r.Context(), pair)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Match, len(history))
	for i, m := range history {
		out[i] = toMatch(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func (s *TrackerServer) recordMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	stored, err := s.matchSvc.RecordMatch(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatch(*stored))
}

func (s *TrackerServer) getMatch(w http.ResponseWriter, r *http.Request) {
	detail, err := s.matchSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDetail(detail))
}

func (s *TrackerServer) searchPlayers(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	names, err := s.matchSvc.SearchPlayers(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"players": names})
}

func pairParam(w http.ResponseWriter, r *http.Request) (domain.PairKey, bool) {
	q := r.URL.Query()
	a := strings.TrimSpace(q.Get("player_a"))
	b := strings.TrimSpace(q.Get("player_b"))
	if a == "" || b == "" {
		writeMessage(w, r, http.StatusBadRequest, "player_a and player_b are required")
		return domain.PairKey{}, false
	}
	if a == b {
		writeMessage(w, r, http.StatusBadRequest, "player_a and player_b must differ")
		return domain.PairKey{}, false
	}
	return domain.NewPairKey(a, b), true
}

// intParam reads an optional non-negative integer; absent is 0.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeMessage(w, r, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidRecord):
		writeMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, r, http.StatusNotFound, "not found")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(r.Context())})
}
