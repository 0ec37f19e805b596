package season

import (
	"fmt"

	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/match"
)

// Correct replaces the score of a recorded result and rebalances both teams.
// Indices are zero-based. Out of range indices leave the state untouched and
// return ErrResultNotFound.
//
// By default the old score's goals are removed and its point swing reversed,
// then the new score's goals and point swing are applied. Win, draw and loss
// tallies are left alone, so after a correction points may no longer equal
// 3*wins + draws; Rebuild restores that. With Options.RecountOutcomes the old
// outcome is removed and the new one applied in full instead.
func (e *Engine) Correct(round, matchIndex, team1Goals, team2Goals int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if round < 0 || round >= len(e.history) {
		return fmt.Errorf("round %d: %w", round, ErrResultNotFound)
	}
	if matchIndex < 0 || matchIndex >= len(e.history[round]) {
		return fmt.Errorf("round %d match %d: %w", round, matchIndex, ErrResultNotFound)
	}
	if team1Goals < 0 || team2Goals < 0 {
		return ErrNegativeGoals
	}

	old := e.history[round][matchIndex]
	updated := old
	updated.Team1Goals = team1Goals
	updated.Team2Goals = team2Goals

	if e.opts.RecountOutcomes {
		e.recount(old, updated)
	} else {
		e.swing(old, updated)
	}

	e.history[round][matchIndex] = updated
	return nil
}

func (e *Engine) swing(old, updated match.Result) {
	o1, o2 := old.Team1Goals, old.Team2Goals
	e.mustUpdate(old.Team1, league.Delta{
		GoalsFor:     -o1,
		GoalsAgainst: -o2,
		Points:       match.PointSwing(o2, o1),
	})
	e.mustUpdate(old.Team2, league.Delta{
		GoalsFor:     -o2,
		GoalsAgainst: -o1,
		Points:       match.PointSwing(o1, o2),
	})

	n1, n2 := updated.Team1Goals, updated.Team2Goals
	e.mustUpdate(updated.Team1, league.Delta{
		GoalsFor:     n1,
		GoalsAgainst: n2,
		Points:       match.PointSwing(n1, n2),
	})
	e.mustUpdate(updated.Team2, league.Delta{
		GoalsFor:     n2,
		GoalsAgainst: n1,
		Points:       match.PointSwing(n2, n1),
	})
}

func (e *Engine) recount(old, updated match.Result) {
	o1, o2 := match.Deltas(old)
	e.mustUpdate(old.Team1, negate(o1))
	e.mustUpdate(old.Team2, negate(o2))
	e.apply(updated)
}

func negate(d league.Delta) league.Delta {
	return league.Delta{
		Points:       -d.Points,
		Wins:         -d.Wins,
		Draws:        -d.Draws,
		Losses:       -d.Losses,
		GoalsFor:     -d.GoalsFor,
		GoalsAgainst: -d.GoalsAgainst,
	}
}
