package season

import (
	"errors"
	"testing"

	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/match"
	"github.com/derekprior/leaguesim/internal/strategy"
)

func TestCorrectTwoOneToNilNil(t *testing.T) {
	e := headToHead(2, 1)
	e.AdvanceRound()

	if err := e.Correct(0, 0, 0, 0); err != nil {
		t.Fatalf("Correct() error: %v", err)
	}

	a := team(t, e, "Team A")
	// Reversal of the 2-1 win takes 3 points; a level score swings none.
	if a.Points != 0 {
		t.Errorf("Team A points = %d, want 0", a.Points)
	}
	if a.GoalsFor != 0 || a.GoalsAgainst != 0 {
		t.Errorf("Team A goals = %d/%d, want 0/0", a.GoalsFor, a.GoalsAgainst)
	}
	if a.Wins != 1 || a.Draws != 0 {
		t.Errorf("Team A tallies = %dW %dD, want 1W 0D", a.Wins, a.Draws)
	}

	b := team(t, e, "Team B")
	// Reversing Team B's loss gives it 3 points back.
	if b.Points != 3 {
		t.Errorf("Team B points = %d, want 3", b.Points)
	}
	if b.GoalsFor != 0 || b.GoalsAgainst != 0 {
		t.Errorf("Team B goals = %d/%d, want 0/0", b.GoalsFor, b.GoalsAgainst)
	}
	if b.Losses != 1 {
		t.Errorf("Team B losses = %d, want 1", b.Losses)
	}

	stored := e.History()[0][0]
	if stored.Team1Goals != 0 || stored.Team2Goals != 0 {
		t.Errorf("stored result = %d-%d, want 0-0", stored.Team1Goals, stored.Team2Goals)
	}
	if stored.Team1 != league.TeamID("Team A") || stored.Team2 != league.TeamID("Team B") {
		t.Error("correction changed the teams of the result")
	}
	if e.RoundNumber() != 1 || len(e.History()) != 1 {
		t.Error("correction changed the round count")
	}
}

func TestCorrectLossToWin(t *testing.T) {
	e := headToHead(0, 2)
	e.AdvanceRound()

	if err := e.Correct(0, 0, 3, 1); err != nil {
		t.Fatalf("Correct() error: %v", err)
	}

	a := team(t, e, "Team A")
	// Reversing the loss: +3. Applying the win: +3.
	if a.Points != 6 || a.GoalsFor != 3 || a.GoalsAgainst != 1 {
		t.Errorf("Team A = %+v, want 6 pts, 3 GF, 1 GA", a)
	}
	b := team(t, e, "Team B")
	if b.Points != -3 || b.GoalsFor != 1 || b.GoalsAgainst != 3 {
		t.Errorf("Team B = %+v, want -3 pts, 1 GF, 3 GA", b)
	}
}

func TestCorrectRoundTrip(t *testing.T) {
	e := seededEngine(t, 31)
	for range 8 {
		e.AdvanceRound()
	}

	cases := []struct{ round, match, g1, g2 int }{
		{0, 0, 5, 0},
		{3, 2, 1, 1},
		{7, 3, 0, 4},
		{5, 1, 2, 2},
	}

	for _, tc := range cases {
		before := e.Teams()
		old := e.History()[tc.round][tc.match]

		if err := e.Correct(tc.round, tc.match, tc.g1, tc.g2); err != nil {
			t.Fatalf("Correct() error: %v", err)
		}
		if err := e.Correct(tc.round, tc.match, old.Team1Goals, old.Team2Goals); err != nil {
			t.Fatalf("Correct() back error: %v", err)
		}

		after := e.Teams()
		for i := range before {
			b, a := before[i], after[i]
			if a.Points != b.Points || a.GoalsFor != b.GoalsFor || a.GoalsAgainst != b.GoalsAgainst {
				t.Errorf("%s not restored: %+v, want %+v", b.Name, a, b)
			}
		}
		if got := e.History()[tc.round][tc.match]; got != old {
			t.Errorf("stored result = %+v, want %+v", got, old)
		}
	}
}

func TestCorrectOutOfRange(t *testing.T) {
	e := headToHead(2, 1)
	e.AdvanceRound()
	before := e.Teams()

	cases := []struct {
		name         string
		round, match int
	}{
		{"round past history", 1, 0},
		{"negative round", -1, 0},
		{"match past round", 0, 1},
		{"negative match", 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := e.Correct(tc.round, tc.match, 0, 0)
			if !errors.Is(err, ErrResultNotFound) {
				t.Errorf("err = %v, want ErrResultNotFound", err)
			}
		})
	}

	t.Run("negative goals", func(t *testing.T) {
		if err := e.Correct(0, 0, -1, 2); !errors.Is(err, ErrNegativeGoals) {
			t.Errorf("err = %v, want ErrNegativeGoals", err)
		}
	})

	t.Run("state untouched", func(t *testing.T) {
		after := e.Teams()
		for i := range before {
			if after[i] != before[i] {
				t.Errorf("%s changed: %+v, want %+v", before[i].Name, after[i], before[i])
			}
		}
		if r := e.History()[0][0]; r.Team1Goals != 2 || r.Team2Goals != 1 {
			t.Errorf("stored result = %d-%d, want 2-1", r.Team1Goals, r.Team2Goals)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		fresh := headToHead()
		if err := fresh.Correct(0, 0, 1, 1); !errors.Is(err, ErrResultNotFound) {
			t.Errorf("err = %v, want ErrResultNotFound", err)
		}
	})
}

func TestCorrectRecountOutcomes(t *testing.T) {
	gen := fixedGenerator{[]strategy.Matchup{{Home: league.TeamID("Team A"), Away: league.TeamID("Team B")}}}
	e := New(twoTeams(), gen, match.NewResolver(match.NewScripted(2, 1, 0, 0)), Options{RecountOutcomes: true})
	e.AdvanceRound()
	e.AdvanceRound()

	if err := e.Correct(0, 0, 0, 0); err != nil {
		t.Fatalf("Correct() error: %v", err)
	}

	a := team(t, e, "Team A")
	if a.Points != 2 || a.Wins != 0 || a.Draws != 2 || a.Losses != 0 {
		t.Errorf("Team A = %+v, want 2 pts from 2 draws", a)
	}
	b := team(t, e, "Team B")
	if b.Points != 2 || b.Draws != 2 || b.Losses != 0 {
		t.Errorf("Team B = %+v, want 2 pts from 2 draws", b)
	}
	checkInvariant(t, e.Teams())

	standings, _ := e.StandingsAt(2)
	for _, tm := range standings {
		live := team(t, e, tm.Name)
		if live != tm {
			t.Errorf("%s live %+v differs from replay %+v", tm.Name, live, tm)
		}
	}
}

func TestRebuildAfterCorrection(t *testing.T) {
	e := seededEngine(t, 37)
	for range 10 {
		e.AdvanceRound()
	}

	// Flip every result in round 4 so tallies drift.
	for m, res := range e.History()[4] {
		if err := e.Correct(4, m, res.Team2Goals+1, res.Team1Goals); err != nil {
			t.Fatalf("Correct() error: %v", err)
		}
	}

	e.Rebuild()
	checkInvariant(t, e.Teams())

	played := 0
	goalsFor, goalsAgainst := 0, 0
	for _, tm := range e.Teams() {
		played += tm.Played()
		goalsFor += tm.GoalsFor
		goalsAgainst += tm.GoalsAgainst
	}
	if played != 80 {
		t.Errorf("appearances after rebuild = %d, want 80", played)
	}
	if goalsFor != goalsAgainst {
		t.Errorf("goals for %d != goals against %d", goalsFor, goalsAgainst)
	}
}
