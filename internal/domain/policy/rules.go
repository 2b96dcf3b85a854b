package policy

import "github.com/bryanwahyu/smartdocs/internal/domain/analysis"

// Floors are minimum risk scores. A zero floor leaves the score alone.
type Floors struct {
	Legal       analysis.Score
	Compliance  analysis.Score
	Operational analysis.Score
}

func (f Floors) raise(s analysis.RiskScores) analysis.RiskScores {
	return analysis.RiskScores{
		Legal:       max(s.Legal, f.Legal),
		Compliance:  max(s.Compliance, f.Compliance),
		Operational: max(s.Operational, f.Operational),
	}
}

// Rule forces a severity and raises scores on clauses matching When.
// When is a CEL expression over topic, severity (lower-cased),
// is_missing and is_deviation. An empty Severity keeps the clause's own.
type Rule struct {
	Name     string
	When     string
	Severity analysis.Severity
	Floors   Floors
}

// DefaultRules is the LMA floor table for clauses missing from an agreement.
var DefaultRules = []Rule{
	{
		Name:     "missing_sanctions",
		When:     `topic == "sanctions" && is_missing`,
		Severity: analysis.SeverityRed,
		Floors:   Floors{Legal: 80, Compliance: 90, Operational: 60},
	},
	{
		Name:     "missing_events_of_default",
		When:     `topic == "events_of_default" && is_missing`,
		Severity: analysis.SeverityRed,
		Floors:   Floors{Legal: 85, Compliance: 70},
	},
	{
		Name:     "missing_esg",
		When:     `topic == "esg" && is_missing && severity != "red"`,
		Severity: analysis.SeverityAmber,
		Floors:   Floors{Legal: 40, Compliance: 50},
	},
}
