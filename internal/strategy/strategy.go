package strategy

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/derekprior/leaguesim/internal/config"
)

// Matchup is an unplayed pairing for one round.
type Matchup struct {
	Home uuid.UUID
	Away uuid.UUID
}

// Generator produces the pairings for a round. round is zero-based.
type Generator interface {
	Generate(round int, teams []uuid.UUID) []Matchup
}

// Get returns a Generator by name.
func Get(name string, rng *rand.Rand) (Generator, error) {
	switch name {
	case config.StrategyShuffled:
		return &Shuffled{rng: rng}, nil
	case config.StrategyRoundRobin:
		return &RoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// shuffledSlots is how many shuffled positions are paired each round.
const shuffledSlots = 8

// Shuffled reshuffles all teams every round and pairs only the first eight
// positions, so at most four matches are played no matter how many teams exist.
type Shuffled struct {
	rng *rand.Rand
}

func NewShuffled(rng *rand.Rand) *Shuffled {
	return &Shuffled{rng: rng}
}

func (s *Shuffled) Generate(_ int, teams []uuid.UUID) []Matchup {
	order := s.rng.Perm(len(teams))

	var matchups []Matchup
	for i := 0; i < shuffledSlots; i += 2 {
		if i+1 >= len(teams) {
			break
		}
		matchups = append(matchups, Matchup{
			Home: teams[order[i]],
			Away: teams[order[i+1]],
		})
	}
	return matchups
}

// RoundRobin uses the circle method so every team meets every other team once
// per half. The second half swaps home and away. Rounds past the end of the
// double round robin start the cycle again.
type RoundRobin struct{}

func (s *RoundRobin) Generate(round int, teams []uuid.UUID) []Matchup {
	n := len(teams)
	if n < 2 {
		return nil
	}

	// Odd team counts get a bye slot.
	slots := make([]*uuid.UUID, 0, n+1)
	for i := range teams {
		slots = append(slots, &teams[i])
	}
	if n%2 != 0 {
		slots = append(slots, nil)
	}
	size := len(slots)
	perHalf := size - 1

	cycle := round % (2 * perHalf)
	secondHalf := cycle >= perHalf
	rotation := cycle % perHalf

	// Rotate everything but the first slot.
	for r := 0; r < rotation; r++ {
		last := slots[size-1]
		copy(slots[2:], slots[1:size-1])
		slots[1] = last
	}

	var matchups []Matchup
	for j := 0; j < size/2; j++ {
		home, away := slots[j], slots[size-1-j]
		if home == nil || away == nil {
			continue
		}
		// Alternate the fixed team's venue so it is not always at home.
		if j == 0 && rotation%2 == 1 {
			home, away = away, home
		}
		if secondHalf {
			home, away = away, home
		}
		matchups = append(matchups, Matchup{Home: *home, Away: *away})
	}
	return matchups
}
