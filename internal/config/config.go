package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRounds is the length of a season when the config does not set one.
const DefaultRounds = 38

// Strategy names accepted in the config.
const (
	StrategyShuffled   = "shuffled"
	StrategyRoundRobin = "round_robin"
)

// Modes for predictions.zero_total.
const (
	ZeroTotalZero = "zero"
	ZeroTotalNaN  = "nan"
)

type TeamEntry struct {
	Name     string `yaml:"name"`
	Strength int    `yaml:"strength"`
}

type Season struct {
	Rounds int   `yaml:"rounds"`
	Seed   int64 `yaml:"seed"`
}

type Correction struct {
	RecountOutcomes bool `yaml:"recount_outcomes"`
}

type Predictions struct {
	ZeroTotal string `yaml:"zero_total"`
}

type Config struct {
	Season      Season      `yaml:"season"`
	Strategy    string      `yaml:"strategy"`
	Correction  Correction  `yaml:"correction"`
	Predictions Predictions `yaml:"predictions"`
	Teams       []TeamEntry `yaml:"teams"`
}

// TeamNames returns the catalogue names in registry order.
func (c *Config) TeamNames() []string {
	names := make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		names = append(names, t.Name)
	}
	return names
}

// Default returns the built-in twenty team catalogue.
func Default() *Config {
	return &Config{
		Season:      Season{Rounds: DefaultRounds},
		Strategy:    StrategyShuffled,
		Predictions: Predictions{ZeroTotal: ZeroTotalZero},
		Teams: []TeamEntry{
			{"Arsenal", 8},
			{"Aston Villa", 6},
			{"Bournemouth", 5},
			{"Brentford", 6},
			{"Brighton and Hove Albion", 7},
			{"Chelsea", 8},
			{"Crystal Palace", 6},
			{"Everton", 6},
			{"Fulham", 6},
			{"Ipswich Town", 4},
			{"Leicester City", 6},
			{"Liverpool", 9},
			{"Manchester City", 10},
			{"Manchester United", 8},
			{"Newcastle United", 8},
			{"Nottingham Forest", 5},
			{"Southampton", 5},
			{"Tottenham Hotspur", 7},
			{"West Ham United", 6},
			{"Wolverhampton Wanderers", 6},
		},
	}
}

// LoadFromBytes parses YAML bytes into a Config, fills defaults and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Season.Rounds == 0 {
		c.Season.Rounds = DefaultRounds
	}
	if c.Strategy == "" {
		c.Strategy = StrategyShuffled
	}
	if c.Predictions.ZeroTotal == "" {
		c.Predictions.ZeroTotal = ZeroTotalZero
	}
	if len(c.Teams) == 0 {
		c.Teams = Default().Teams
	}
}

func (c *Config) validate() error {
	if c.Season.Rounds < 1 {
		return fmt.Errorf("season rounds must be at least 1, got %d", c.Season.Rounds)
	}

	switch c.Strategy {
	case StrategyShuffled, StrategyRoundRobin:
	default:
		return fmt.Errorf("unknown strategy: %q", c.Strategy)
	}

	switch c.Predictions.ZeroTotal {
	case ZeroTotalZero, ZeroTotalNaN:
	default:
		return fmt.Errorf("unknown predictions zero_total mode: %q", c.Predictions.ZeroTotal)
	}

	if len(c.Teams) < 2 {
		return fmt.Errorf("at least two teams are required, got %d", len(c.Teams))
	}

	seen := make(map[string]bool)
	for i, t := range c.Teams {
		if t.Name == "" {
			return fmt.Errorf("team %d has no name", i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("team %q appears more than once", t.Name)
		}
		seen[t.Name] = true
		if t.Strength < 0 {
			return fmt.Errorf("team %q: strength must not be negative, got %d", t.Name, t.Strength)
		}
	}

	return nil
}
