package excel

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/leaguesim/internal/season"
)

// Sheet names.
const (
	StandingsSheet   = "Standings"
	PredictionsSheet = "Predictions"
	NextRoundSheet   = "Next Round"
	ResultsSheet     = "Results"
)

var (
	standingsHeaders   = []string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}
	predictionsHeaders = []string{"Team", "Championship %"}
	nextRoundHeaders   = []string{"Home", "Away"}
	resultsHeaders     = []string{"Round", "Match", "Home", "Home Goals", "Away Goals", "Away"}
)

// Generate creates a workbook with standings, predictions, the next round and
// every recorded result.
func Generate(e *season.Engine) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	names := make(map[uuid.UUID]string)
	for _, t := range e.Teams() {
		names[t.ID] = t.Name
	}

	if err := writeStandings(f, e); err != nil {
		return nil, fmt.Errorf("writing standings sheet: %w", err)
	}
	if err := writePredictions(f, e); err != nil {
		return nil, fmt.Errorf("writing predictions sheet: %w", err)
	}
	if err := writeNextRound(f, e, names); err != nil {
		return nil, fmt.Errorf("writing next round sheet: %w", err)
	}
	if err := writeResults(f, e, names); err != nil {
		return nil, fmt.Errorf("writing results sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// Save generates the workbook and writes it to path.
func Save(e *season.Engine, path string) error {
	f, err := Generate(e)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeStandings(f *excelize.File, e *season.Engine) error {
	sheet := StandingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, standingsHeaders)

	cellStyle := bodyStyle(f, "left")
	numStyle := bodyStyle(f, "center")

	for i, t := range e.Standings() {
		row := i + 2
		values := []any{i + 1, t.Name, t.Played(), t.Wins, t.Draws, t.Losses,
			t.GoalsFor, t.GoalsAgainst, t.GoalDifference(), t.Points}
		for col, v := range values {
			f.SetCellValue(sheet, cellRef(col+1, row), v)
			style := numStyle
			if col == 1 {
				style = cellStyle
			}
			if style != 0 {
				f.SetCellStyle(sheet, cellRef(col+1, row), cellRef(col+1, row), style)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 34)
	f.SetColWidth(sheet, "C", "J", 8)
	return nil
}

func writePredictions(f *excelize.File, e *season.Engine) error {
	sheet := PredictionsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, predictionsHeaders)

	cellStyle := bodyStyle(f, "left")
	for i, p := range e.Predictions() {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), p.Team.Name)
		// Cells cannot hold NaN.
		if math.IsNaN(p.Percentage) {
			f.SetCellValue(sheet, cellRef(2, row), "NaN")
		} else {
			f.SetCellValue(sheet, cellRef(2, row), math.Round(p.Percentage*100)/100)
		}
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(2, row), cellStyle)
		}
	}

	f.SetColWidth(sheet, "A", "A", 34)
	f.SetColWidth(sheet, "B", "B", 20)
	return nil
}

func writeNextRound(f *excelize.File, e *season.Engine, names map[uuid.UUID]string) error {
	sheet := NextRoundSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, nextRoundHeaders)

	if e.Complete() {
		return nil
	}
	cellStyle := bodyStyle(f, "left")
	for i, m := range e.PendingMatchups() {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), names[m.Home])
		f.SetCellValue(sheet, cellRef(2, row), names[m.Away])
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(2, row), cellStyle)
		}
	}

	f.SetColWidth(sheet, "A", "B", 34)
	return nil
}

func writeResults(f *excelize.File, e *season.Engine, names map[uuid.UUID]string) error {
	sheet := ResultsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, resultsHeaders)

	cellStyle := bodyStyle(f, "left")
	numStyle := bodyStyle(f, "center")

	row := 2
	for r, rnd := range e.History() {
		for m, res := range rnd {
			f.SetCellValue(sheet, cellRef(1, row), r+1)
			f.SetCellValue(sheet, cellRef(2, row), m+1)
			f.SetCellValue(sheet, cellRef(3, row), names[res.Team1])
			f.SetCellValue(sheet, cellRef(4, row), res.Team1Goals)
			f.SetCellValue(sheet, cellRef(5, row), res.Team2Goals)
			f.SetCellValue(sheet, cellRef(6, row), names[res.Team2])
			if numStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(2, row), numStyle)
				f.SetCellStyle(sheet, cellRef(4, row), cellRef(5, row), numStyle)
			}
			if cellStyle != 0 {
				f.SetCellStyle(sheet, cellRef(3, row), cellRef(3, row), cellStyle)
				f.SetCellStyle(sheet, cellRef(6, row), cellRef(6, row), cellStyle)
			}
			row++
		}
	}

	f.SetColWidth(sheet, "A", "B", 10)
	f.SetColWidth(sheet, "C", "C", 34)
	f.SetColWidth(sheet, "D", "E", 14)
	f.SetColWidth(sheet, "F", "F", 34)
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#37003C"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), headerStyle)
	}
}

func bodyStyle(f *excelize.File, align string) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: align},
	})
	return style
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
