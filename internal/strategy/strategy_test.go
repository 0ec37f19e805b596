package strategy

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
)

func testTeams(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 42))
}

func TestGet(t *testing.T) {
	if _, err := Get("shuffled", testRand()); err != nil {
		t.Errorf("Get(shuffled) error: %v", err)
	}
	if _, err := Get("round_robin", testRand()); err != nil {
		t.Errorf("Get(round_robin) error: %v", err)
	}
	if _, err := Get("swiss", testRand()); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestShuffled(t *testing.T) {
	s := NewShuffled(testRand())

	t.Run("twenty teams yield four matchups", func(t *testing.T) {
		teams := testTeams(20)
		for round := range 38 {
			got := s.Generate(round, teams)
			if len(got) != 4 {
				t.Fatalf("round %d: %d matchups, want 4", round, len(got))
			}
		}
	})

	t.Run("no team appears twice in a round", func(t *testing.T) {
		teams := testTeams(20)
		for round := range 38 {
			seen := make(map[uuid.UUID]bool)
			for _, m := range s.Generate(round, teams) {
				if m.Home == m.Away {
					t.Fatalf("round %d: team plays itself", round)
				}
				if seen[m.Home] || seen[m.Away] {
					t.Fatalf("round %d: team scheduled twice", round)
				}
				seen[m.Home] = true
				seen[m.Away] = true
			}
		}
	})

	t.Run("only registered teams are scheduled", func(t *testing.T) {
		teams := testTeams(12)
		known := make(map[uuid.UUID]bool)
		for _, id := range teams {
			known[id] = true
		}
		for _, m := range s.Generate(0, teams) {
			if !known[m.Home] || !known[m.Away] {
				t.Fatal("matchup references an unknown team")
			}
		}
	})

	t.Run("small leagues", func(t *testing.T) {
		cases := []struct {
			teams int
			want  int
		}{
			{0, 0}, {1, 0}, {2, 1}, {5, 2}, {7, 3}, {8, 4}, {9, 4},
		}
		for _, tc := range cases {
			got := s.Generate(0, testTeams(tc.teams))
			if len(got) != tc.want {
				t.Errorf("%d teams: %d matchups, want %d", tc.teams, len(got), tc.want)
			}
		}
	})

	t.Run("same seed same pairings", func(t *testing.T) {
		teams := testTeams(20)
		a := NewShuffled(testRand()).Generate(0, teams)
		b := NewShuffled(testRand()).Generate(0, teams)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("matchup %d differs between identically seeded generators", i)
			}
		}
	})
}

func TestRoundRobin(t *testing.T) {
	s := &RoundRobin{}

	type pair struct{ a, b uuid.UUID }
	normalize := func(m Matchup) pair {
		if m.Home.String() > m.Away.String() {
			return pair{m.Away, m.Home}
		}
		return pair{m.Home, m.Away}
	}

	t.Run("even league plays everyone once per half", func(t *testing.T) {
		teams := testTeams(6)
		firstHalf := make(map[pair]int)
		secondHalf := make(map[pair]int)
		for round := range 5 {
			matchups := s.Generate(round, teams)
			if len(matchups) != 3 {
				t.Fatalf("round %d: %d matchups, want 3", round, len(matchups))
			}
			for _, m := range matchups {
				firstHalf[normalize(m)]++
			}
		}
		for round := 5; round < 10; round++ {
			for _, m := range s.Generate(round, teams) {
				secondHalf[normalize(m)]++
			}
		}
		if len(firstHalf) != 15 {
			t.Errorf("first half has %d distinct pairs, want 15", len(firstHalf))
		}
		for p, n := range firstHalf {
			if n != 1 {
				t.Errorf("pair %v met %d times in the first half", p, n)
			}
			if secondHalf[p] != 1 {
				t.Errorf("pair %v met %d times in the second half", p, secondHalf[p])
			}
		}
	})

	t.Run("second half swaps venues", func(t *testing.T) {
		teams := testTeams(4)
		first := s.Generate(0, teams)
		second := s.Generate(3, teams)
		for i := range first {
			if first[i].Home != second[i].Away || first[i].Away != second[i].Home {
				t.Errorf("matchup %d not mirrored: %v vs %v", i, first[i], second[i])
			}
		}
	})

	t.Run("odd league gives one bye per round", func(t *testing.T) {
		teams := testTeams(5)
		pairs := make(map[pair]int)
		for round := range 5 {
			matchups := s.Generate(round, teams)
			if len(matchups) != 2 {
				t.Fatalf("round %d: %d matchups, want 2", round, len(matchups))
			}
			for _, m := range matchups {
				pairs[normalize(m)]++
			}
		}
		if len(pairs) != 10 {
			t.Errorf("%d distinct pairs, want 10", len(pairs))
		}
	})

	t.Run("schedule cycles", func(t *testing.T) {
		teams := testTeams(4)
		a := s.Generate(1, teams)
		b := s.Generate(7, teams)
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("round 7 does not repeat round 1")
			}
		}
	})

	t.Run("every team plays every first-half round", func(t *testing.T) {
		teams := testTeams(20)
		home := make(map[uuid.UUID]int)
		away := make(map[uuid.UUID]int)
		for round := range 19 {
			for _, m := range s.Generate(round, teams) {
				home[m.Home]++
				away[m.Away]++
			}
		}
		for _, id := range teams {
			if home[id]+away[id] != 19 {
				t.Errorf("team played %d games, want 19", home[id]+away[id])
			}
		}
	})
}
