package league

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/derekprior/leaguesim/internal/config"
)

// teamNamespace scopes team ids so the same catalogue always yields the same ids.
var teamNamespace = uuid.MustParse("6f1c3a52-3d0e-4b8e-9a57-3c1f2a7e9b40")

// Team is a competing club and its cumulative season statistics.
type Team struct {
	ID       uuid.UUID
	Name     string
	Strength int

	Points       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

func (t Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}

func (t Team) Played() int {
	return t.Wins + t.Draws + t.Losses
}

// Delta is an additive change to a team's statistics. Fields may be negative.
type Delta struct {
	Points       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

// TeamID derives the stable id for a team name.
func TeamID(name string) uuid.UUID {
	return uuid.NewSHA1(teamNamespace, []byte(name))
}

// Registry holds the fixed team catalogue in insertion order.
type Registry struct {
	teams []Team
	index map[uuid.UUID]int
}

// NewRegistry builds a registry with zeroed statistics from the catalogue entries.
func NewRegistry(entries []config.TeamEntry) *Registry {
	r := &Registry{
		teams: make([]Team, 0, len(entries)),
		index: make(map[uuid.UUID]int, len(entries)),
	}
	for _, e := range entries {
		id := TeamID(e.Name)
		r.index[id] = len(r.teams)
		r.teams = append(r.teams, Team{ID: id, Name: e.Name, Strength: e.Strength})
	}
	return r
}

func (r *Registry) Len() int {
	return len(r.teams)
}

// Get returns a copy of the team with the given id.
func (r *Registry) Get(id uuid.UUID) (Team, bool) {
	i, ok := r.index[id]
	if !ok {
		return Team{}, false
	}
	return r.teams[i], true
}

// MustGet is Get for ids that are known to be registered, such as those in history.
func (r *Registry) MustGet(id uuid.UUID) Team {
	t, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("league: team %s not in registry", id))
	}
	return t
}

// Lookup finds a team by name.
func (r *Registry) Lookup(name string) (Team, bool) {
	return r.Get(TeamID(name))
}

// Update adds d to the statistics of the team with the given id.
func (r *Registry) Update(id uuid.UUID, d Delta) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("unknown team %s", id)
	}
	t := &r.teams[i]
	t.Points += d.Points
	t.Wins += d.Wins
	t.Draws += d.Draws
	t.Losses += d.Losses
	t.GoalsFor += d.GoalsFor
	t.GoalsAgainst += d.GoalsAgainst
	return nil
}

// Teams returns a copy of all teams in registry order.
func (r *Registry) Teams() []Team {
	out := make([]Team, len(r.teams))
	copy(out, r.teams)
	return out
}

// IDs returns all team ids in registry order.
func (r *Registry) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.teams))
	for i, t := range r.teams {
		ids[i] = t.ID
	}
	return ids
}

// SortedByPoints returns teams by points descending. Ties keep registry order.
func (r *Registry) SortedByPoints() []Team {
	out := r.Teams()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out
}

// TotalPoints sums points across every team.
func (r *Registry) TotalPoints() int {
	total := 0
	for _, t := range r.teams {
		total += t.Points
	}
	return total
}

// Reset zeroes every team's statistics, keeping the catalogue.
func (r *Registry) Reset() {
	for i := range r.teams {
		t := &r.teams[i]
		r.teams[i] = Team{ID: t.ID, Name: t.Name, Strength: t.Strength}
	}
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		teams: r.Teams(),
		index: make(map[uuid.UUID]int, len(r.index)),
	}
	for id, i := range r.index {
		c.index[id] = i
	}
	return c
}
