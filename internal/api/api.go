package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/season"
)

// TeamView is a standings row.
type TeamView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Strength       int       `json:"strength"`
	Played         int       `json:"played"`
	Points         int       `json:"points"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
}

// PredictionView carries a nil percentage when it is NaN, which JSON cannot encode.
type PredictionView struct {
	Team       string   `json:"team"`
	Percentage *float64 `json:"percentage"`
}

type MatchupView struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

type ResultView struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
}

type StateView struct {
	Round    int  `json:"round"`
	Rounds   int  `json:"rounds"`
	Complete bool `json:"complete"`
}

type scoreRequest struct {
	HomeGoals *int `json:"home_goals"`
	AwayGoals *int `json:"away_goals"`
}

// Server exposes one season over HTTP. The engine serializes every call.
type Server struct {
	engine *season.Engine
	logger *logrus.Logger
	router *mux.Router
}

func NewServer(engine *season.Engine, logger *logrus.Logger) *Server {
	s := &Server{engine: engine, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	s.router.HandleFunc("/standings", s.getStandings).Methods(http.MethodGet)
	s.router.HandleFunc("/predictions", s.getPredictions).Methods(http.MethodGet)
	s.router.HandleFunc("/matchups", s.getMatchups).Methods(http.MethodGet)
	s.router.HandleFunc("/history", s.getHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/rounds/last", s.getLastRound).Methods(http.MethodGet)
	s.router.HandleFunc("/rounds", s.advanceRound).Methods(http.MethodPost)
	s.router.HandleFunc("/season", s.advanceSeason).Methods(http.MethodPost)
	s.router.HandleFunc("/reset", s.reset).Methods(http.MethodPost)
	s.router.HandleFunc("/rebuild", s.rebuild).Methods(http.MethodPost)
	s.router.HandleFunc("/history/{round:[0-9]+}/{match:[0-9]+}", s.correct).Methods(http.MethodPut)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("Handling request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() StateView {
	round := s.engine.RoundNumber()
	return StateView{Round: round, Rounds: s.engine.Rounds(), Complete: round >= s.engine.Rounds()}
}

func (s *Server) getStandings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, teamViews(s.engine.Standings()))
}

func (s *Server) getPredictions(w http.ResponseWriter, r *http.Request) {
	preds := s.engine.Predictions()
	out := make([]PredictionView, len(preds))
	for i, p := range preds {
		out[i] = PredictionView{Team: p.Team.Name}
		if !math.IsNaN(p.Percentage) {
			pct := p.Percentage
			out[i].Percentage = &pct
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMatchups(w http.ResponseWriter, r *http.Request) {
	names := s.names()
	matchups := s.engine.PendingMatchups()
	out := make([]MatchupView, len(matchups))
	for i, m := range matchups {
		out[i] = MatchupView{Home: names[m.Home], Away: names[m.Away]}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	names := s.names()
	history := s.engine.History()
	out := make([][]ResultView, len(history))
	for i, rnd := range history {
		out[i] = roundView(rnd, names)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLastRound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, roundView(s.engine.LastRound(), s.names()))
}

func (s *Server) advanceRound(w http.ResponseWriter, r *http.Request) {
	rnd, err := s.engine.AdvanceRound()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.WithField("round", s.engine.RoundNumber()).Info("Played round")
	s.writeJSON(w, http.StatusOK, roundView(rnd, s.names()))
}

func (s *Server) advanceSeason(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.AdvanceSeason(); err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("Played remaining rounds")
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset()
	s.logger.Info("Reset season")
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) rebuild(w http.ResponseWriter, r *http.Request) {
	s.engine.Rebuild()
	s.logger.Info("Rebuilt standings from history")
	s.writeJSON(w, http.StatusOK, teamViews(s.engine.Standings()))
}

// correct takes one-based round and match numbers, matching the workbook.
func (s *Server) correct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round, err := strconv.Atoi(vars["round"])
	if err != nil {
		http.Error(w, "Invalid round", http.StatusBadRequest)
		return
	}
	matchNum, err := strconv.Atoi(vars["match"])
	if err != nil {
		http.Error(w, "Invalid match", http.StatusBadRequest)
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HomeGoals == nil || req.AwayGoals == nil {
		http.Error(w, "Body must be {\"home_goals\": n, \"away_goals\": n}", http.StatusBadRequest)
		return
	}

	if err := s.engine.Correct(round-1, matchNum-1, *req.HomeGoals, *req.AwayGoals); err != nil {
		s.fail(w, err)
		return
	}
	s.logger.WithFields(logrus.Fields{
		"round": round,
		"match": matchNum,
		"score": strconv.Itoa(*req.HomeGoals) + "-" + strconv.Itoa(*req.AwayGoals),
	}).Info("Corrected result")

	history := s.engine.History()
	if round > len(history) {
		// Reset by another caller in between.
		s.writeJSON(w, http.StatusOK, []ResultView{})
		return
	}
	s.writeJSON(w, http.StatusOK, roundView(history[round-1], s.names()))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, season.ErrSeasonComplete):
		status = http.StatusConflict
	case errors.Is(err, season.ErrResultNotFound):
		status = http.StatusNotFound
	case errors.Is(err, season.ErrNegativeGoals):
		status = http.StatusBadRequest
	}
	entry := s.logger.WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) names() map[uuid.UUID]string {
	teams := s.engine.Teams()
	out := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out
}

func teamViews(teams []league.Team) []TeamView {
	out := make([]TeamView, len(teams))
	for i, t := range teams {
		out[i] = TeamView{
			ID:             t.ID,
			Name:           t.Name,
			Strength:       t.Strength,
			Played:         t.Played(),
			Points:         t.Points,
			Wins:           t.Wins,
			Draws:          t.Draws,
			Losses:         t.Losses,
			GoalsFor:       t.GoalsFor,
			GoalsAgainst:   t.GoalsAgainst,
			GoalDifference: t.GoalDifference(),
		}
	}
	return out
}

func roundView(rnd season.Round, names map[uuid.UUID]string) []ResultView {
	out := make([]ResultView, len(rnd))
	for i, res := range rnd {
		out[i] = ResultView{
			Home:      names[res.Team1],
			Away:      names[res.Team2],
			HomeGoals: res.Team1Goals,
			AwayGoals: res.Team2Goals,
		}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Writing response")
	}
}
