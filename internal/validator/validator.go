package validator

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/leaguesim/internal/config"
	"github.com/derekprior/leaguesim/internal/excel"
	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/season"
)

// Violation is a problem found in a season workbook.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// Validate reads a season workbook and checks its Results sheet against the
// config, then checks the Standings sheet against a replay of those results.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := excel.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	var violations []Violation

	// Rules
	violations = append(violations, checkTeams(cfg, rows)...)
	violations = append(violations, checkGoals(rows)...)
	violations = append(violations, checkSeasonLength(cfg, rows)...)
	violations = append(violations, checkDoubleBooking(rows)...)

	// Rows that broke a rule above are not grouped into rounds.
	if countErrors(violations) > 0 {
		return violations, nil
	}
	history, err := excel.Rounds(rows, cfg.Season.Rounds, excel.MaxMatches(cfg))
	if err != nil {
		return append(violations, Violation{Type: "error", Message: err.Error()}), nil
	}

	// Guidelines
	violations = append(violations, checkRoundSize(cfg, history)...)

	e, err := season.Restore(cfg, history)
	if err != nil {
		return nil, fmt.Errorf("replaying results: %w", err)
	}
	standings, err := excel.ReadStandings(f)
	if err != nil {
		return nil, fmt.Errorf("reading standings: %w", err)
	}
	violations = append(violations, checkStandings(e, standings)...)
	violations = append(violations, checkPointsInvariant(standings)...)

	return violations, nil
}

// Refresh rewrites the workbook at path from a replay of its Results sheet.
func Refresh(cfg *config.Config, path string) error {
	history, err := excel.Open(path, cfg)
	if err != nil {
		return err
	}
	e, err := season.Restore(cfg, history)
	if err != nil {
		return fmt.Errorf("replaying results: %w", err)
	}
	return excel.Save(e, path)
}

func countErrors(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.Type == "error" {
			n++
		}
	}
	return n
}

func checkTeams(cfg *config.Config, rows []excel.ResultRow) []Violation {
	known := make(map[string]bool)
	for _, name := range cfg.TeamNames() {
		known[name] = true
	}

	var violations []Violation
	for _, r := range rows {
		for _, name := range []string{r.Home, r.Away} {
			if !known[name] {
				violations = append(violations, Violation{
					Row:     r.Row,
					Type:    "error",
					Message: fmt.Sprintf("round %d match %d: unknown team %q", r.Round, r.Match, name),
				})
			}
		}
		if r.Home == r.Away {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    "error",
				Message: fmt.Sprintf("round %d match %d: %s plays itself", r.Round, r.Match, r.Home),
			})
		}
	}
	return violations
}

func checkGoals(rows []excel.ResultRow) []Violation {
	var violations []Violation
	for _, r := range rows {
		if r.HomeGoals < 0 || r.AwayGoals < 0 {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    "error",
				Message: fmt.Sprintf("round %d match %d: negative score %d-%d", r.Round, r.Match, r.HomeGoals, r.AwayGoals),
			})
		}
	}
	return violations
}

func checkSeasonLength(cfg *config.Config, rows []excel.ResultRow) []Violation {
	var violations []Violation
	for _, r := range rows {
		if r.Round > cfg.Season.Rounds {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    "error",
				Message: fmt.Sprintf("round %d is past the end of a %d round season", r.Round, cfg.Season.Rounds),
			})
		}
	}
	return violations
}

func checkDoubleBooking(rows []excel.ResultRow) []Violation {
	type teamRound struct {
		team  string
		round int
	}
	seen := make(map[teamRound][]int)
	for _, r := range rows {
		seen[teamRound{r.Home, r.Round}] = append(seen[teamRound{r.Home, r.Round}], r.Row)
		if r.Away != r.Home {
			seen[teamRound{r.Away, r.Round}] = append(seen[teamRound{r.Away, r.Round}], r.Row)
		}
	}

	var violations []Violation
	for tr, rowNums := range seen {
		if len(rowNums) > 1 {
			violations = append(violations, Violation{
				Row:     rowNums[1],
				Type:    "error",
				Message: fmt.Sprintf("%s plays %d matches in round %d", tr.team, len(rowNums), tr.round),
			})
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Row < violations[j].Row
	})
	return violations
}

// expectedRoundSize is how many matches the configured strategy schedules.
func expectedRoundSize(cfg *config.Config) int {
	n := len(cfg.Teams)
	if cfg.Strategy == config.StrategyShuffled {
		return min(4, n/2)
	}
	return n / 2
}

func checkRoundSize(cfg *config.Config, history []season.Round) []Violation {
	want := expectedRoundSize(cfg)
	var violations []Violation
	for i, rnd := range history {
		if len(rnd) != want {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("round %d has %d matches, %s schedules %d", i+1, len(rnd), cfg.Strategy, want),
			})
		}
	}
	return violations
}

func checkStandings(e *season.Engine, rows []excel.StandingRow) []Violation {
	var violations []Violation
	listed := make(map[string]bool)

	for _, r := range rows {
		listed[r.Team] = true
		t, ok := e.Team(league.TeamID(r.Team))
		if !ok {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    "error",
				Message: fmt.Sprintf("standings list unknown team %q", r.Team),
			})
			continue
		}
		if r.Points != t.Points || r.GoalsFor != t.GoalsFor || r.GoalsAgainst != t.GoalsAgainst {
			violations = append(violations, Violation{
				Row:  r.Row,
				Type: "error",
				Message: fmt.Sprintf("%s shows %d pts %d-%d, results give %d pts %d-%d",
					r.Team, r.Points, r.GoalsFor, r.GoalsAgainst, t.Points, t.GoalsFor, t.GoalsAgainst),
			})
		}
		if r.Wins != t.Wins || r.Draws != t.Draws || r.Losses != t.Losses {
			violations = append(violations, Violation{
				Row:  r.Row,
				Type: "error",
				Message: fmt.Sprintf("%s shows %d-%d-%d, results give %d-%d-%d",
					r.Team, r.Wins, r.Draws, r.Losses, t.Wins, t.Draws, t.Losses),
			})
		}
	}

	for _, t := range e.Teams() {
		if !listed[t.Name] {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s is missing from the standings", t.Name),
			})
		}
	}
	return violations
}

func checkPointsInvariant(rows []excel.StandingRow) []Violation {
	var violations []Violation
	for _, r := range rows {
		if r.Points != 3*r.Wins+r.Draws {
			violations = append(violations, Violation{
				Row:  r.Row,
				Type: "warning",
				Message: fmt.Sprintf("%s shows %d pts from %d wins and %d draws",
					r.Team, r.Points, r.Wins, r.Draws),
			})
		}
	}
	return violations
}
