package season

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/derekprior/leaguesim/internal/config"
	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/match"
	"github.com/derekprior/leaguesim/internal/strategy"
)

var (
	ErrSeasonComplete = errors.New("season is complete")
	ErrResultNotFound = errors.New("no result at that position")
	ErrNegativeGoals  = errors.New("goals must not be negative")
)

// Round is the ordered set of results played together.
type Round []match.Result

// Prediction is a team's share of all points awarded so far, as a percentage.
type Prediction struct {
	Team       league.Team
	Percentage float64
}

// Options control season length and the behaviors that have more than one mode.
type Options struct {
	Rounds int

	// RecountOutcomes makes Correct move win/draw/loss tallies along with
	// points. When false, only points and goals move.
	RecountOutcomes bool

	// NaNOnZeroTotal reports NaN predictions before any point is awarded
	// instead of 0%.
	NaNOnZeroTotal bool
}

// Engine owns one league state. Every method takes the engine lock, so a
// single Engine can be shared between goroutines.
type Engine struct {
	mu sync.Mutex

	catalogue []config.TeamEntry
	opts      Options
	generator strategy.Generator
	resolver  *match.Resolver

	registry *league.Registry
	history  []Round
	round    int
	pending  []strategy.Matchup
}

// New creates a fresh season and schedules round zero.
func New(catalogue []config.TeamEntry, gen strategy.Generator, res *match.Resolver, opts Options) *Engine {
	if opts.Rounds <= 0 {
		opts.Rounds = config.DefaultRounds
	}
	e := &Engine{
		catalogue: catalogue,
		opts:      opts,
		generator: gen,
		resolver:  res,
		registry:  league.NewRegistry(catalogue),
	}
	e.schedule()
	return e
}

// FromConfig creates a fresh season using the configured strategy and seed.
func FromConfig(cfg *config.Config) (*Engine, error) {
	seed := uint64(cfg.Season.Seed)
	if seed == 0 {
		seed = rand.Uint64()
	}
	gen, err := strategy.Get(cfg.Strategy, rand.New(rand.NewPCG(seed, 1)))
	if err != nil {
		return nil, err
	}
	res := match.NewResolver(rand.New(rand.NewPCG(seed, 2)))
	return New(cfg.Teams, gen, res, OptionsFromConfig(cfg)), nil
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Rounds:          cfg.Season.Rounds,
		RecountOutcomes: cfg.Correction.RecountOutcomes,
		NaNOnZeroTotal:  cfg.Predictions.ZeroTotal == config.ZeroTotalNaN,
	}
}

// Restore rebuilds a season from recorded history. Statistics are a replay of
// the history and the round number is its length.
func Restore(cfg *config.Config, history []Round) (*Engine, error) {
	e, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if len(history) > e.opts.Rounds {
		return nil, fmt.Errorf("history has %d rounds, season allows %d", len(history), e.opts.Rounds)
	}
	for r, rnd := range history {
		for m, res := range rnd {
			if err := e.checkResult(res); err != nil {
				return nil, fmt.Errorf("round %d match %d: %w", r+1, m+1, err)
			}
		}
	}

	e.history = cloneHistory(history)
	e.registry = replay(e.catalogue, e.history)
	e.round = len(e.history)
	e.schedule()
	return e, nil
}

// Resume restores a season from history like Restore, then takes each team's
// statistics from tallies instead of the replay. Tallies carry what earlier
// corrections left behind, so a resumed season corrects the same way a live
// one does. Every catalogue team must appear exactly once.
func Resume(cfg *config.Config, history []Round, tallies []league.Team) (*Engine, error) {
	e, err := Restore(cfg, history)
	if err != nil {
		return nil, err
	}

	reg := league.NewRegistry(e.catalogue)
	seen := make(map[uuid.UUID]bool, len(tallies))
	for _, t := range tallies {
		if seen[t.ID] {
			return nil, fmt.Errorf("%s is listed twice", t.Name)
		}
		seen[t.ID] = true
		err := reg.Update(t.ID, league.Delta{
			Points:       t.Points,
			Wins:         t.Wins,
			Draws:        t.Draws,
			Losses:       t.Losses,
			GoalsFor:     t.GoalsFor,
			GoalsAgainst: t.GoalsAgainst,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
	}
	if len(seen) != reg.Len() {
		return nil, fmt.Errorf("tallies cover %d of %d teams", len(seen), reg.Len())
	}
	e.registry = reg
	return e, nil
}

func (e *Engine) checkResult(res match.Result) error {
	if _, ok := e.registry.Get(res.Team1); !ok {
		return fmt.Errorf("unknown team %s", res.Team1)
	}
	if _, ok := e.registry.Get(res.Team2); !ok {
		return fmt.Errorf("unknown team %s", res.Team2)
	}
	if res.Team1 == res.Team2 {
		return fmt.Errorf("team %s plays itself", res.Team1)
	}
	if res.Team1Goals < 0 || res.Team2Goals < 0 {
		return ErrNegativeGoals
	}
	return nil
}

func (e *Engine) schedule() {
	e.pending = e.generator.Generate(e.round, e.registry.IDs())
}

// RoundNumber is the count of rounds played.
func (e *Engine) RoundNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// Rounds is the season length.
func (e *Engine) Rounds() int {
	return e.opts.Rounds
}

func (e *Engine) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round >= e.opts.Rounds
}

// AdvanceRound plays every pending matchup, records the round and schedules
// the next one.
func (e *Engine) AdvanceRound() (Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advance()
}

func (e *Engine) advance() (Round, error) {
	if e.round >= e.opts.Rounds {
		return nil, ErrSeasonComplete
	}

	rnd := make(Round, 0, len(e.pending))
	for _, m := range e.pending {
		res := e.resolver.Resolve(e.registry.MustGet(m.Home), e.registry.MustGet(m.Away))
		e.apply(res)
		rnd = append(rnd, res)
	}

	e.history = append(e.history, rnd)
	e.round++
	// Scheduled even after the final round; nothing consumes it.
	e.schedule()

	return cloneRound(rnd), nil
}

func (e *Engine) apply(res match.Result) {
	d1, d2 := match.Deltas(res)
	e.mustUpdate(res.Team1, d1)
	e.mustUpdate(res.Team2, d2)
}

func (e *Engine) mustUpdate(id uuid.UUID, d league.Delta) {
	if err := e.registry.Update(id, d); err != nil {
		panic(fmt.Sprintf("season: %v", err))
	}
}

// AdvanceSeason plays rounds until the season is complete.
func (e *Engine) AdvanceSeason() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.round < e.opts.Rounds {
		if _, err := e.advance(); err != nil {
			return err
		}
	}
	return nil
}

// Reset zeroes the catalogue, clears history and schedules round zero.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry = league.NewRegistry(e.catalogue)
	e.history = nil
	e.round = 0
	e.schedule()
}

// Standings returns teams by points descending, ties in catalogue order.
func (e *Engine) Standings() []league.Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.SortedByPoints()
}

// Teams returns teams in catalogue order.
func (e *Engine) Teams() []league.Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Teams()
}

func (e *Engine) Team(id uuid.UUID) (league.Team, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Get(id)
}

// Predictions returns each team's share of all points, highest first.
func (e *Engine) Predictions() []Prediction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return predictions(e.registry, e.opts.NaNOnZeroTotal)
}

func predictions(reg *league.Registry, nanOnZero bool) []Prediction {
	total := reg.TotalPoints()
	teams := reg.Teams()

	out := make([]Prediction, len(teams))
	for i, t := range teams {
		var pct float64
		switch {
		case total != 0:
			pct = float64(t.Points) / float64(total) * 100
		case nanOnZero:
			pct = math.NaN()
		}
		out[i] = Prediction{Team: t, Percentage: pct}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

// PendingMatchups returns the pairings for the next round.
func (e *Engine) PendingMatchups() []strategy.Matchup {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]strategy.Matchup, len(e.pending))
	copy(out, e.pending)
	return out
}

// History returns a copy of every played round.
func (e *Engine) History() []Round {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneHistory(e.history)
}

// LastRound returns the most recently played round, or nil before round one.
func (e *Engine) LastRound() Round {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return nil
	}
	return cloneRound(e.history[len(e.history)-1])
}

func cloneRound(r Round) Round {
	if r == nil {
		return nil
	}
	out := make(Round, len(r))
	copy(out, r)
	return out
}

func cloneHistory(h []Round) []Round {
	out := make([]Round, len(h))
	for i, r := range h {
		out[i] = cloneRound(r)
	}
	return out
}
