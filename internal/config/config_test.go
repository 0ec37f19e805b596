package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
season:
  rounds: 10
  seed: 7

strategy: round_robin

correction:
  recount_outcomes: true

predictions:
  zero_total: nan

teams:
  - name: Angels
    strength: 6
  - name: Astros
    strength: 4
  - name: Cubs
    strength: 9
  - name: Padres
    strength: 0
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("season", func(t *testing.T) {
		if cfg.Season.Rounds != 10 {
			t.Errorf("rounds = %d, want 10", cfg.Season.Rounds)
		}
		if cfg.Season.Seed != 7 {
			t.Errorf("seed = %d, want 7", cfg.Season.Seed)
		}
	})

	t.Run("strategy", func(t *testing.T) {
		if cfg.Strategy != StrategyRoundRobin {
			t.Errorf("strategy = %q, want %q", cfg.Strategy, StrategyRoundRobin)
		}
	})

	t.Run("correction", func(t *testing.T) {
		if !cfg.Correction.RecountOutcomes {
			t.Error("recount_outcomes should be true")
		}
	})

	t.Run("predictions", func(t *testing.T) {
		if cfg.Predictions.ZeroTotal != ZeroTotalNaN {
			t.Errorf("zero_total = %q, want %q", cfg.Predictions.ZeroTotal, ZeroTotalNaN)
		}
	})

	t.Run("teams", func(t *testing.T) {
		if len(cfg.Teams) != 4 {
			t.Fatalf("teams = %d, want 4", len(cfg.Teams))
		}
		if cfg.Teams[2].Name != "Cubs" || cfg.Teams[2].Strength != 9 {
			t.Errorf("teams[2] = %+v, want Cubs/9", cfg.Teams[2])
		}
		names := cfg.TeamNames()
		if names[0] != "Angels" || names[3] != "Padres" {
			t.Errorf("TeamNames() = %v", names)
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("season:\n  seed: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Season.Rounds != DefaultRounds {
		t.Errorf("rounds = %d, want %d", cfg.Season.Rounds, DefaultRounds)
	}
	if cfg.Strategy != StrategyShuffled {
		t.Errorf("strategy = %q, want %q", cfg.Strategy, StrategyShuffled)
	}
	if cfg.Predictions.ZeroTotal != ZeroTotalZero {
		t.Errorf("zero_total = %q, want %q", cfg.Predictions.ZeroTotal, ZeroTotalZero)
	}
	if len(cfg.Teams) != 20 {
		t.Errorf("teams = %d, want the 20 team catalogue", len(cfg.Teams))
	}
	if cfg.Correction.RecountOutcomes {
		t.Error("recount_outcomes should default to false")
	}
}

func TestDefaultCatalogue(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Teams[12].Name != "Manchester City" || cfg.Teams[12].Strength != 10 {
		t.Errorf("teams[12] = %+v, want Manchester City/10", cfg.Teams[12])
	}
	if cfg.Teams[9].Name != "Ipswich Town" || cfg.Teams[9].Strength != 4 {
		t.Errorf("teams[9] = %+v, want Ipswich Town/4", cfg.Teams[9])
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"negative rounds", "season:\n  rounds: -1\n"},
		{"unknown strategy", "strategy: swiss\n"},
		{"unknown zero mode", "predictions:\n  zero_total: infinity\n"},
		{"single team", "teams:\n  - name: Angels\n    strength: 3\n"},
		{"duplicate team names", `
teams:
  - name: Angels
    strength: 3
  - name: Angels
    strength: 5
`},
		{"empty team name", `
teams:
  - name: Angels
    strength: 3
  - strength: 5
`},
		{"negative strength", `
teams:
  - name: Angels
    strength: 3
  - name: Cubs
    strength: -2
`},
		{"malformed yaml", "teams: [\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(tc.yaml)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if len(cfg.Teams) != 4 {
		t.Errorf("teams = %d, want 4", len(cfg.Teams))
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
