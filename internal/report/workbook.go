package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/store"
)

const (
	sessionsSheet  = "Sessions"
	responsesSheet = "Responses"
)

var (
	sessionsHeader  = []any{"Session", "Date", "Job role", "Questions", "Score", "Band"}
	responsesHeader = []any{"Session", "#", "Question", "Answer", "Score", "Feedback", "Strengths", "Areas to improve"}
)

// WriteWorkbook writes an Excel workbook with one row per session and, for
// every session in details, one row per response.
func WriteWorkbook(w io.Writer, summaries []store.SessionSummary, details []*store.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sessionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(responsesSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, sessionsSheet, 1, sessionsHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{
			s.ID,
			s.CreatedAt.Local().Format(dateLayout),
			s.JobRole,
			s.QuestionCount,
			s.TotalScore,
			string(feedback.BandFor(s.TotalScore)),
		}
		if err := writeRow(f, sessionsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, responsesSheet, 1, responsesHeader); err != nil {
		return err
	}
	line := 2
	for _, s := range details {
		for _, r := range s.Responses {
			var score any
			if r.Score != nil {
				score = *r.Score
			}
			var fb string
			if r.Feedback != nil {
				fb = *r.Feedback
			}
			row := []any{
				s.ID,
				r.Position + 1,
				r.Question,
				r.Answer,
				score,
				fb,
				strings.Join(r.Strengths, "; "),
				strings.Join(r.AreasToImprove, "; "),
			}
			if err := writeRow(f, responsesSheet, line, row); err != nil {
				return err
			}
			line++
		}
	}

	for _, sheet := range []struct {
		name string
		cols int
	}{{sessionsSheet, len(sessionsHeader)}, {responsesSheet, len(responsesHeader)}} {
		last, err := excelize.CoordinatesToCellName(sheet.cols, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.name, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
