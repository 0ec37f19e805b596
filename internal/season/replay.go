package season

import (
	"fmt"

	"github.com/derekprior/leaguesim/internal/config"
	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/match"
)

func replay(catalogue []config.TeamEntry, history []Round) *league.Registry {
	reg := league.NewRegistry(catalogue)
	for _, rnd := range history {
		for _, res := range rnd {
			d1, d2 := match.Deltas(res)
			// Results were checked against the catalogue when recorded.
			_ = reg.Update(res.Team1, d1)
			_ = reg.Update(res.Team2, d2)
		}
	}
	return reg
}

// StandingsAt returns the standings as they stood after the first n rounds,
// computed from history. The live state is not changed.
func (e *Engine) StandingsAt(n int) ([]league.Team, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 0 || n > len(e.history) {
		return nil, fmt.Errorf("round %d: %w", n, ErrResultNotFound)
	}
	return replay(e.catalogue, e.history[:n]).SortedByPoints(), nil
}

// Rebuild recomputes every team's statistics from history. This repairs
// win/draw/loss tallies left behind by corrections.
func (e *Engine) Rebuild() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry = replay(e.catalogue, e.history)
}
