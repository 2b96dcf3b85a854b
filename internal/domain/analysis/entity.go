package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Topic string

const (
	TopicCovenants       Topic = "covenants"
	TopicEventsOfDefault Topic = "events_of_default"
	TopicTransferability Topic = "transferability"
	TopicSanctions       Topic = "sanctions"
	TopicESG             Topic = "esg"
	TopicOther           Topic = "other"
)

// Topics lists every clause topic in report order.
var Topics = []Topic{
	TopicCovenants,
	TopicEventsOfDefault,
	TopicTransferability,
	TopicSanctions,
	TopicESG,
	TopicOther,
}

// Normalized lower-cases and trims the topic.
func (t Topic) Normalized() Topic {
	return Topic(strings.ToLower(strings.TrimSpace(string(t))))
}

type Severity string

const (
	SeverityRed   Severity = "red"
	SeverityAmber Severity = "amber"
	SeverityGreen Severity = "green"
)

// Normalized lower-cases and trims the severity as the model may answer "Red" or " AMBER".
func (s Severity) Normalized() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// Score is a 0-100 risk score. The model is not trusted to send integers, so
// decoding accepts floats (truncated), numeric strings and null. Values
// outside [0,100] are rejected.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = 0
		return nil
	}
	raw = strings.TrimSpace(strings.Trim(raw, `"`))
	if raw == "" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("risk score %s: %w", string(b), err)
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return fmt.Errorf("risk score %s out of range [0,100]", string(b))
	}
	*s = Score(int(f))
	return nil
}

type RiskScores struct {
	Legal       Score `json:"legal"`
	Compliance  Score `json:"compliance"`
	Operational Score `json:"operational"`
}

type Clause struct {
	ID                string     `json:"id"`
	Topic             Topic      `json:"topic"`
	Heading           string     `json:"heading"`
	Severity          Severity   `json:"severity"`
	IsDeviation       bool       `json:"is_deviation"`
	IsMissing         bool       `json:"is_missing"`
	RiskScores        RiskScores `json:"risk_scores"`
	Snippet           string     `json:"snippet"`
	Rationale         string     `json:"rationale"`
	SuggestedPosition string     `json:"suggested_position"`
}

type DealMetadata struct {
	DealName     string `json:"deal_name"`
	Borrower     string `json:"borrower"`
	FacilitySize string `json:"facility_size"`
	Margin       string `json:"margin"`
	Tenor        string `json:"tenor"`
	GoverningLaw string `json:"governing_law"`
}

type Summary struct {
	Overview       string  `json:"overview"`
	TimeSavedHours float64 `json:"time_saved_hours"`
}

// Result is the structured risk analysis of one loan agreement.
type Result struct {
	DealMetadata DealMetadata `json:"deal_metadata"`
	Clauses      []Clause     `json:"clauses"`
	Summary      Summary      `json:"summary"`
}

// Clone returns a copy whose clause slice is not shared with r.
func (r Result) Clone() Result {
	out := r
	out.Clauses = make([]Clause, len(r.Clauses))
	copy(out.Clauses, r.Clauses)
	return out
}
