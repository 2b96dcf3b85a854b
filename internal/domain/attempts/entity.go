package attempts

import (
	"encoding/json"
	"strings"
	"time"
)

// Failure is one failed model attempt of an analysis.
type Failure struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	AnalysisID  string    `json:"analysis_id"`
	Attempt     int       `json:"attempt"`
	Phase       string    `json:"phase,omitempty"` // model | parse | validate | policy
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}

// Normalize fills the columns the log never stores empty.
func (f *Failure) Normalize(now time.Time) {
	f.TenantID = dashIfEmpty(f.TenantID)
	f.AnalysisID = dashIfEmpty(f.AnalysisID)
	f.Phase = dashIfEmpty(f.Phase)
	f.Message = dashIfEmpty(f.Message)
	if strings.TrimSpace(f.DetailsJSON) == "" {
		f.DetailsJSON = "{}"
	} else {
		// invalid json is kept as a string field
		var js any
		if json.Unmarshal([]byte(f.DetailsJSON), &js) != nil {
			b, _ := json.Marshal(map[string]string{"raw": f.DetailsJSON})
			f.DetailsJSON = string(b)
		}
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
