package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

const (
	sheetSummary = "Summary"
	sheetClauses = "Clauses"
)

// XLSX writes a workbook with a summary sheet and one row per clause.
func XLSX(w io.Writer, r analysis.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetClauses); err != nil {
		return err
	}

	st := analysis.Summarize(r)
	md := r.DealMetadata
	summary := [][2]any{
		{"Deal Name", md.DealName},
		{"Borrower", md.Borrower},
		{"Facility Size", md.FacilitySize},
		{"Margin", md.Margin},
		{"Tenor", md.Tenor},
		{"Governing Law", md.GoverningLaw},
		{"Risk Score", st.RiskScore},
		{"Clauses", st.Total},
		{"Red", st.Red},
		{"Amber", st.Amber},
		{"Green", st.Green},
		{"Deviations", st.Deviations},
		{"Deviation %", st.DeviationPct},
		{"Missing", st.Missing},
		{"Time Saved (hours)", r.Summary.TimeSavedHours},
		{"Overview", r.Summary.Overview},
	}
	sw := &sheetWriter{f: f}
	for i, kv := range summary {
		row := i + 1
		sw.set(sheetSummary, 1, row, kv[0])
		sw.set(sheetSummary, 2, row, kv[1])
	}
	sw.width(sheetSummary, "A", "A", 22)
	sw.width(sheetSummary, "B", "B", 80)

	headers := []string{
		"ID", "Topic", "Heading", "Severity", "Deviation", "Missing",
		"Legal", "Compliance", "Operational", "Snippet", "Rationale", "Suggested Position",
	}
	for i, h := range headers {
		sw.set(sheetClauses, i+1, 1, h)
	}
	for i, c := range r.Clauses {
		row := i + 2
		values := []any{
			c.ID, string(c.Topic), c.Heading, string(c.Severity.Normalized()), yesNo(c.IsDeviation), yesNo(c.IsMissing),
			int(c.RiskScores.Legal), int(c.RiskScores.Compliance), int(c.RiskScores.Operational),
			c.Snippet, c.Rationale, c.SuggestedPosition,
		}
		for col, v := range values {
			sw.set(sheetClauses, col+1, row, v)
		}
	}
	sw.width(sheetClauses, "C", "C", 28)
	sw.width(sheetClauses, "J", "L", 48)
	if sw.err != nil {
		return fmt.Errorf("xlsx build: %w", sw.err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// sheetWriter keeps the first excelize error and skips every call after it.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) set(sheet string, col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, v)
}

func (w *sheetWriter) width(sheet, from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, from, to, width)
}
