package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/derekprior/leaguesim/internal/api"
	"github.com/derekprior/leaguesim/internal/config"
	"github.com/derekprior/leaguesim/internal/excel"
	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/season"
	"github.com/derekprior/leaguesim/internal/validator"
)

const defaultConfigFile = "league.yaml"

// loadConfig reads the config named by the flag, then league.yaml in the
// current directory, then falls back to the built-in catalogue.
func loadConfig(configFlag string) (*config.Config, error) {
	path := configFlag
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.Default(), nil
		}
		path = defaultConfigFile
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaguesim",
		Short: "Round-based league season simulator",
	}

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: league.yaml in current directory, else the built-in league)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter league.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	seasonCmd := &cobra.Command{
		Use:   "season",
		Short: "Simulate, correct and validate seasons",
	}

	var outputFile string
	var rounds int
	simulateCmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Play a season and save it as a workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runSimulate(cfg, rounds, outputFile)
		},
	}
	simulateCmd.Flags().StringVarP(&outputFile, "output", "o", "season.xlsx", "Output Excel file path")
	simulateCmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "Rounds to play (default: the whole season)")

	var round, matchNum int
	var score string
	var rebuild bool
	correctCmd := &cobra.Command{
		Use:          "correct <season.xlsx>",
		Short:        "Change a recorded score and rebalance the standings",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runCorrect(cfg, args[0], round, matchNum, score, rebuild)
		},
	}
	correctCmd.Flags().IntVar(&round, "round", 0, "Round number (1-based)")
	correctCmd.Flags().IntVar(&matchNum, "match", 0, "Match number within the round (1-based)")
	correctCmd.Flags().StringVar(&score, "score", "", "New score as HOME-AWAY, e.g. 2-1")
	correctCmd.Flags().BoolVar(&rebuild, "rebuild", false, "Recompute every tally from the results after correcting")
	correctCmd.MarkFlagRequired("round")
	correctCmd.MarkFlagRequired("match")
	correctCmd.MarkFlagRequired("score")

	validateCmd := &cobra.Command{
		Use:          "validate <season.xlsx>",
		Short:        "Check a season workbook against its results",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runValidate(cfg, args[0])
		},
	}

	var addr string
	var verbose bool
	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve a season over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runServe(cfg, addr, verbose)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")

	seasonCmd.AddCommand(simulateCmd, correctCmd, validateCmd)
	rootCmd.AddCommand(initCmd, seasonCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# League Season Configuration
# ===========================

season:
  # The season is complete once this many rounds have been played.
  rounds: 38

  # Seed for matchups and scores. 0 picks a new seed every run; any other
  # value replays the same season.
  seed: 0

# Strategy decides each round's pairings.
#   shuffled:    reshuffle every team each round and pair the first eight,
#                so four matches are played per round whatever the league size.
#   round_robin: circle method; everyone meets everyone once per half,
#                venues swap in the second half.
strategy: shuffled

correction:
  # false: a corrected score moves goals and points only; win/draw/loss
  #        tallies keep the original outcome until the standings are rebuilt.
  # true:  the old outcome is removed and the new one applied in full.
  recount_outcomes: false

predictions:
  # What championship predictions show before any point is awarded.
  # zero: 0% for every team.  nan: NaN for every team.
  zero_total: zero

# Teams in standings tie-break order. Each side's goals in a match are drawn
# uniformly from 0 to twice its strength.
teams:
  - name: Arsenal
    strength: 8
  - name: Aston Villa
    strength: 6
  - name: Bournemouth
    strength: 5
  - name: Brentford
    strength: 6
  - name: Brighton and Hove Albion
    strength: 7
  - name: Chelsea
    strength: 8
  - name: Crystal Palace
    strength: 6
  - name: Everton
    strength: 6
  - name: Fulham
    strength: 6
  - name: Ipswich Town
    strength: 4
  - name: Leicester City
    strength: 6
  - name: Liverpool
    strength: 9
  - name: Manchester City
    strength: 10
  - name: Manchester United
    strength: 8
  - name: Newcastle United
    strength: 8
  - name: Nottingham Forest
    strength: 5
  - name: Southampton
    strength: 5
  - name: Tottenham Hotspur
    strength: 7
  - name: West Ham United
    strength: 6
  - name: Wolverhampton Wanderers
    strength: 6
`

func runSimulate(cfg *config.Config, rounds int, outputPath string) error {
	e, err := season.FromConfig(cfg)
	if err != nil {
		return err
	}

	if rounds <= 0 || rounds > e.Rounds() {
		rounds = e.Rounds()
	}
	fmt.Printf("Playing %d of %d rounds with %d teams (%s)...\n", rounds, e.Rounds(), len(cfg.Teams), cfg.Strategy)
	for range rounds {
		if _, err := e.AdvanceRound(); err != nil {
			return err
		}
	}

	printStandings(e.Standings())
	printPredictions(e.Predictions())

	if err := excel.Save(e, outputPath); err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	fmt.Printf("\n✓ Season saved to %s\n", outputPath)
	return nil
}

func runCorrect(cfg *config.Config, path string, round, matchNum int, score string, rebuild bool) error {
	var g1, g2 int
	if _, err := fmt.Sscanf(score, "%d-%d", &g1, &g2); err != nil {
		return fmt.Errorf("score %q must look like 2-1", score)
	}

	e, err := excel.OpenSeason(path, cfg)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	history := e.History()
	if err := e.Correct(round-1, matchNum-1, g1, g2); err != nil {
		if errors.Is(err, season.ErrResultNotFound) {
			return fmt.Errorf("round %d match %d has not been played", round, matchNum)
		}
		return err
	}
	res := history[round-1][matchNum-1]
	home, _ := e.Team(res.Team1)
	away, _ := e.Team(res.Team2)
	fmt.Printf("✓ Round %d match %d: %s %d - %d %s is now %d - %d\n",
		round, matchNum, home.Name, res.Team1Goals, res.Team2Goals, away.Name, g1, g2)

	if rebuild {
		e.Rebuild()
	} else if !cfg.Correction.RecountOutcomes {
		fmt.Println("⚠ Win/draw/loss tallies keep the old outcome; pass --rebuild or run season validate to recompute them")
	}

	printStandings(e.Standings())
	if err := excel.Save(e, path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	fmt.Printf("\n✓ Workbook updated: %s\n", path)
	return nil
}

func runValidate(cfg *config.Config, path string) error {
	violations, err := validator.Validate(cfg, path)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation (row %d): %s\n", v.Row, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Guideline violation: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errors, warnings)

	// Standings are derived from results, so rewrite them from a replay.
	if err := validator.Refresh(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Standings not rebuilt: %s\n", err)
	} else {
		fmt.Printf("✓ Standings and predictions rebuilt in %s\n", path)
	}

	if errors > 0 {
		return fmt.Errorf("%d rule violations found", errors)
	}
	return nil
}

func runServe(cfg *config.Config, addr string, verbose bool) error {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	e, err := season.FromConfig(cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"addr":     addr,
		"teams":    len(cfg.Teams),
		"strategy": cfg.Strategy,
	}).Info("Serving season")
	return http.ListenAndServe(addr, api.NewServer(e, logger))
}

func printStandings(teams []league.Team) {
	fmt.Println("\nStandings:")
	fmt.Printf("  %3s %-26s %3s %3s %3s %3s %4s %4s %4s %4s\n",
		"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
	for i, t := range teams {
		fmt.Printf("  %3d %-26s %3d %3d %3d %3d %4d %4d %4d %4d\n",
			i+1, t.Name, t.Played(), t.Wins, t.Draws, t.Losses,
			t.GoalsFor, t.GoalsAgainst, t.GoalDifference(), t.Points)
	}
}

func printPredictions(preds []season.Prediction) {
	fmt.Println("\nChampionship predictions:")
	for _, p := range preds {
		if math.IsNaN(p.Percentage) {
			fmt.Printf("  %-26s    NaN\n", p.Team.Name)
			continue
		}
		fmt.Printf("  %-26s %5.1f%%\n", p.Team.Name, p.Percentage)
	}
}
