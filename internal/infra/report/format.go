package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

// Format is an output rendering of a Result.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, html or xlsx in any case. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatHTML, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (allowed: json, html, xlsx)", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

func (f Format) Ext() string { return "." + string(f) }

// Write renders r in format f. JSON is indented the way the CLI writes
// analysis_output.json.
func Write(w io.Writer, f Format, r analysis.Result, generated time.Time) error {
	switch f {
	case FormatHTML:
		return HTML(w, r, generated)
	case FormatXLSX:
		return XLSX(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
