package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/leaguesim/internal/config"
	"github.com/derekprior/leaguesim/internal/league"
	"github.com/derekprior/leaguesim/internal/match"
	"github.com/derekprior/leaguesim/internal/season"
)

// ResultRow is one line of the Results sheet. Round and Match are one-based.
type ResultRow struct {
	Row       int
	Round     int
	Match     int
	Home      string
	HomeGoals int
	AwayGoals int
	Away      string
}

// StandingRow is one line of the Standings sheet.
type StandingRow struct {
	Row          int
	Team         string
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// ReadResults parses the Results sheet. Rows with a blank round cell are skipped.
func ReadResults(f *excelize.File) ([]ResultRow, error) {
	rows, err := f.GetRows(ResultsSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ResultsSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", ResultsSheet)
	}

	var out []ResultRow
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < len(resultsHeaders) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", ResultsSheet, i+1, len(resultsHeaders), len(row))
		}

		nums, err := atoiAll(row[0], row[1], row[3], row[4])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ResultsSheet, i+1, err)
		}
		if nums[0] < 1 || nums[1] < 1 {
			return nil, fmt.Errorf("%s row %d: round and match start at 1", ResultsSheet, i+1)
		}

		out = append(out, ResultRow{
			Row:       i + 1,
			Round:     nums[0],
			Match:     nums[1],
			Home:      strings.TrimSpace(row[2]),
			HomeGoals: nums[2],
			AwayGoals: nums[3],
			Away:      strings.TrimSpace(row[5]),
		})
	}
	return out, nil
}

// ReadStandings parses the Standings sheet.
func ReadStandings(f *excelize.File) ([]StandingRow, error) {
	rows, err := f.GetRows(StandingsSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", StandingsSheet, err)
	}

	var out []StandingRow
	for i, row := range rows {
		if i == 0 || len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			continue
		}
		if len(row) < len(standingsHeaders) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", StandingsSheet, i+1, len(standingsHeaders), len(row))
		}
		nums, err := atoiAll(row[2], row[3], row[4], row[5], row[6], row[7], row[9])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", StandingsSheet, i+1, err)
		}
		out = append(out, StandingRow{
			Row:          i + 1,
			Team:         strings.TrimSpace(row[1]),
			Played:       nums[0],
			Wins:         nums[1],
			Draws:        nums[2],
			Losses:       nums[3],
			GoalsFor:     nums[4],
			GoalsAgainst: nums[5],
			Points:       nums[6],
		})
	}
	return out, nil
}

// Rounds groups result rows into history order by round and match number.
// Team names become catalogue ids; unknown names are left for the caller
// to reject. Positions past maxRounds or maxMatches are errors.
func Rounds(rows []ResultRow, maxRounds, maxMatches int) ([]season.Round, error) {
	last := 0
	for _, r := range rows {
		if r.Round > maxRounds {
			return nil, fmt.Errorf("row %d: round %d is past the end of a %d round season", r.Row, r.Round, maxRounds)
		}
		if r.Match > maxMatches {
			return nil, fmt.Errorf("row %d: match %d is more than a round can hold (%d)", r.Row, r.Match, maxMatches)
		}
		last = max(last, r.Round)
	}

	history := make([]season.Round, last)
	for _, r := range rows {
		rnd := history[r.Round-1]
		for len(rnd) < r.Match {
			rnd = append(rnd, match.Result{})
		}
		if rnd[r.Match-1] != (match.Result{}) {
			return nil, fmt.Errorf("row %d: round %d match %d appears twice", r.Row, r.Round, r.Match)
		}
		rnd[r.Match-1] = match.Result{
			Team1:      league.TeamID(r.Home),
			Team2:      league.TeamID(r.Away),
			Team1Goals: r.HomeGoals,
			Team2Goals: r.AwayGoals,
		}
		history[r.Round-1] = rnd
	}

	for i, rnd := range history {
		for j, res := range rnd {
			if res == (match.Result{}) {
				return nil, fmt.Errorf("round %d match %d is missing", i+1, j+1)
			}
		}
	}
	return history, nil
}

// MaxMatches is the most matches one round can hold: every team plays at most once.
func MaxMatches(cfg *config.Config) int {
	return len(cfg.Teams) / 2
}

// Open reads the Results sheet of the workbook at path as history.
func Open(path string, cfg *config.Config) ([]season.Round, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return readHistory(f, cfg)
}

func readHistory(f *excelize.File, cfg *config.Config) ([]season.Round, error) {
	rows, err := ReadResults(f)
	if err != nil {
		return nil, err
	}
	return Rounds(rows, cfg.Season.Rounds, MaxMatches(cfg))
}

// OpenSeason loads the season saved at path. Statistics come from the
// Standings sheet so that earlier corrections carry over; when that sheet
// is missing or does not describe the league, they are replayed from Results.
func OpenSeason(path string, cfg *config.Config) (*season.Engine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	history, err := readHistory(f, cfg)
	if err != nil {
		return nil, err
	}

	if rows, err := ReadStandings(f); err == nil && len(rows) > 0 {
		if e, err := season.Resume(cfg, history, tallies(rows)); err == nil {
			return e, nil
		}
	}
	return season.Restore(cfg, history)
}

// tallies converts standings rows to team statistics keyed by catalogue id.
func tallies(rows []StandingRow) []league.Team {
	out := make([]league.Team, len(rows))
	for i, r := range rows {
		out[i] = league.Team{
			ID:           league.TeamID(r.Team),
			Name:         r.Team,
			Points:       r.Points,
			Wins:         r.Wins,
			Draws:        r.Draws,
			Losses:       r.Losses,
			GoalsFor:     r.GoalsFor,
			GoalsAgainst: r.GoalsAgainst,
		}
	}
	return out
}

func atoiAll(cells ...string) ([]int, error) {
	out := make([]int, len(cells))
	for i, c := range cells {
		n, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", c)
		}
		out[i] = n
	}
	return out, nil
}
