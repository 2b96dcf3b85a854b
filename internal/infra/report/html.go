package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": func(s analysis.Severity) string { return string(s.Normalized()) },
	"upper": func(s analysis.Severity) string { return strings.ToUpper(string(s)) },
	"topic": topicLabel,
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>SmartDocs Analysis Report - {{if .Result.DealMetadata.DealName}}{{.Result.DealMetadata.DealName}}{{else}}Loan Agreement{{end}}</title>
<style>
body{font-family:-apple-system,'Segoe UI',Roboto,Arial,sans-serif;color:#333;background:#f5f5f5;padding:40px 20px}
.container{max-width:1000px;margin:0 auto;background:#fff;padding:40px;border-radius:8px}
h1{color:#1890ff}
.grid{display:grid;grid-template-columns:repeat(2,1fr);gap:12px}
.item{padding:10px;background:#fafafa;border-left:3px solid #1890ff}
.clause{border:1px solid #e8e8e8;border-radius:6px;padding:16px;margin-bottom:12px}
.sev{font-weight:600;padding:2px 8px;border-radius:4px;color:#fff}
.sev-red{background:#ff4d4f}.sev-amber{background:#faad14}.sev-green{background:#52c41a}
</style>
</head>
<body>
<div class="container">
<h1>SmartDocs Analysis Report</h1>
<p>Generated {{.Generated}}</p>

<h2>Deal Metadata</h2>
<div class="grid">
<div class="item"><b>Deal Name</b><br>{{orDash .Result.DealMetadata.DealName}}</div>
<div class="item"><b>Borrower</b><br>{{orDash .Result.DealMetadata.Borrower}}</div>
<div class="item"><b>Facility Size</b><br>{{orDash .Result.DealMetadata.FacilitySize}}</div>
<div class="item"><b>Margin</b><br>{{orDash .Result.DealMetadata.Margin}}</div>
<div class="item"><b>Tenor</b><br>{{orDash .Result.DealMetadata.Tenor}}</div>
<div class="item"><b>Governing Law</b><br>{{orDash .Result.DealMetadata.GoverningLaw}}</div>
</div>

<h2>Risk Summary</h2>
<div class="grid">
<div class="item"><b>Risk Score</b><br>{{.Stats.RiskScore}}/100</div>
<div class="item"><b>Clauses</b><br>{{.Stats.Total}} ({{.Stats.Red}} red, {{.Stats.Amber}} amber, {{.Stats.Green}} green)</div>
<div class="item"><b>Deviations</b><br>{{.Stats.Deviations}} ({{.Stats.DeviationPct}}%)</div>
<div class="item"><b>Missing</b><br>{{.Stats.Missing}}</div>
</div>
<p>{{.Result.Summary.Overview}}</p>
<p>Estimated review time saved: {{printf "%.1f" .Result.Summary.TimeSavedHours}} hours</p>

<h2>Clauses</h2>
{{range .Result.Clauses}}<div class="clause">
<span class="sev sev-{{lower .Severity}}">{{upper .Severity}}</span>
<b>{{if .Heading}}{{.Heading}}{{else}}{{.ID}}{{end}}</b> <i>{{topic .Topic}}</i>
{{if .IsMissing}}<em>missing</em>{{end}}{{if .IsDeviation}} <em>deviation</em>{{end}}
<p>Scores: legal {{.RiskScores.Legal}}, compliance {{.RiskScores.Compliance}}, operational {{.RiskScores.Operational}}</p>
{{if .Snippet}}<blockquote>{{.Snippet}}</blockquote>{{end}}
<p><b>Rationale:</b> {{orDash .Rationale}}</p>
<p><b>Suggested position:</b> {{orDash .SuggestedPosition}}</p>
</div>
{{end}}</div>
</body>
</html>
`))

type htmlData struct {
	Result    analysis.Result
	Stats     analysis.Stats
	Generated string
}

// HTML writes a standalone report page.
func HTML(w io.Writer, r analysis.Result, generated time.Time) error {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, htmlData{
		Result:    r,
		Stats:     analysis.Summarize(r),
		Generated: generated.UTC().Format("2006-01-02 15:04 MST"),
	}); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func topicLabel(t analysis.Topic) string {
	switch t {
	case analysis.TopicCovenants:
		return "Covenants"
	case analysis.TopicEventsOfDefault:
		return "Events of Default"
	case analysis.TopicTransferability:
		return "Transferability"
	case analysis.TopicSanctions:
		return "Sanctions"
	case analysis.TopicESG:
		return "ESG"
	case analysis.TopicOther:
		return "Other"
	default:
		return string(t)
	}
}
