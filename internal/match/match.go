package match

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/derekprior/leaguesim/internal/league"
)

// Points awarded per outcome.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// Result is the recorded score of a played matchup.
type Result struct {
	Team1      uuid.UUID
	Team2      uuid.UUID
	Team1Goals int
	Team2Goals int
}

func (r Result) String() string {
	return fmt.Sprintf("%s %d - %d %s", r.Team1, r.Team1Goals, r.Team2Goals, r.Team2)
}

// Source draws integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Resolver scores matchups from team strength.
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// NewRandomResolver resolves with a PCG generator. A zero seed picks one at random.
func NewRandomResolver(seed int64) *Resolver {
	if seed == 0 {
		return NewResolver(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}
	return NewResolver(rand.New(rand.NewPCG(uint64(seed), uint64(seed))))
}

// Resolve draws each side's goals independently from [0, 2*strength].
func (r *Resolver) Resolve(team1, team2 league.Team) Result {
	return Result{
		Team1:      team1.ID,
		Team2:      team2.ID,
		Team1Goals: r.goals(team1),
		Team2Goals: r.goals(team2),
	}
}

func (r *Resolver) goals(t league.Team) int {
	return r.src.IntN(2*t.Strength + 1)
}

// Deltas returns the statistic changes a result applies to each side.
func Deltas(res Result) (team1, team2 league.Delta) {
	return outcome(res.Team1Goals, res.Team2Goals), outcome(res.Team2Goals, res.Team1Goals)
}

func outcome(goalsFor, goalsAgainst int) league.Delta {
	d := league.Delta{GoalsFor: goalsFor, GoalsAgainst: goalsAgainst}
	switch {
	case goalsFor > goalsAgainst:
		d.Points = WinPoints
		d.Wins = 1
	case goalsFor < goalsAgainst:
		d.Losses = 1
	default:
		d.Points = DrawPoints
		d.Draws = 1
	}
	return d
}

// PointSwing is the correction rule: +3 when goalsFor exceeds goalsAgainst,
// -3 when it trails, 0 when level. A level score swings nothing even though
// a draw earned a point.
func PointSwing(goalsFor, goalsAgainst int) int {
	switch {
	case goalsFor > goalsAgainst:
		return WinPoints
	case goalsFor < goalsAgainst:
		return -WinPoints
	default:
		return 0
	}
}

// Scripted replays a fixed sequence of draws and then repeats the last one.
// Values are clamped into [0, n).
type Scripted struct {
	values []int
	next   int
}

func NewScripted(values ...int) *Scripted {
	return &Scripted{values: values}
}

func (s *Scripted) IntN(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	i := s.next
	if i >= len(s.values) {
		i = len(s.values) - 1
	} else {
		s.next++
	}
	v := s.values[i]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
