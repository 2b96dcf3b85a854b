package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

func sampleResult() analysis.Result {
	return analysis.Result{
		DealMetadata: analysis.DealMetadata{DealName: "Project <Atlas>", Borrower: "Atlas Ltd", Margin: "3.25%"},
		Clauses: []analysis.Clause{
			{ID: "san_1", Topic: analysis.TopicSanctions, Severity: analysis.SeverityRed, IsMissing: true,
				RiskScores: analysis.RiskScores{Legal: 80, Compliance: 90, Operational: 60}},
			{ID: "cov_1", Topic: analysis.TopicCovenants, Heading: "Financial Covenants", Severity: "Green",
				Snippet: "Leverage <= 3.0x", Rationale: "Market standard"},
		},
		Summary: analysis.Summary{Overview: "Mostly standard.", TimeSavedHours: 2.5},
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleResult(), time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)))
	out := buf.String()

	assert.Contains(t, out, "Project &lt;Atlas&gt;")
	assert.NotContains(t, out, "Project <Atlas>")
	assert.Contains(t, out, "Generated 2025-01-01 09:30 UTC")
	assert.Contains(t, out, `class="sev sev-green">GREEN`)
	assert.Contains(t, out, "Financial Covenants")
	assert.Contains(t, out, "Sanctions")
	assert.Contains(t, out, "50/100")
	assert.Contains(t, out, "2.5 hours")
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Project <Atlas>", v)

	rows, err := f.GetRows(sheetClauses)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, []string{"san_1", "sanctions", "", "red", "no", "yes", "80", "90", "60"}, rows[1][:9])
	assert.Equal(t, "green", rows[2][3])
}

func TestSheetWriterKeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sw := &sheetWriter{f: f}
	sw.set("Sheet1", 1, 1, "ok")
	require.NoError(t, sw.err)

	sw.set("Missing", 1, 1, "x")
	require.Error(t, sw.err)
	first := sw.err

	sw.set("Sheet1", 0, 1, "bad coordinates")
	sw.width("Missing", "A", "A", 10)
	sw.set("Sheet1", 2, 1, "skipped")
	assert.Equal(t, first, sw.err)

	v, err := f.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, ".xlsx", f.Ext())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResult(), time.Now()))

	var got analysis.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleResult().DealMetadata, got.DealMetadata)
	assert.Contains(t, buf.String(), "\n  \"deal_metadata\"")
}
