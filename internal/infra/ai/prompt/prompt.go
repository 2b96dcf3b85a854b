package prompt

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/smartdocs/internal/domain/hints"
)

const template = `You are an expert loan documentation lawyer familiar with LMA-style syndicated loan agreements.

You will receive:
- The full text of a loan or credit agreement (may not be exactly LMA but similar).
- Pre-extracted metadata hints (facility_size_hint, facility_size_canonical_hint, margin_hint, tenor_hint).

Task:
1. Extract key deal metadata:
   - deal_name
   - borrower
   - facility_size (prefer explicit amounts; if multiple currencies present, list primary with currency)
   - margin (exact text or formula, e.g., "LIBOR + 6.50% (1.00% floor)")
   - tenor (express as months, years, or explicit date)
   - governing_law

2. Extract a list of key clauses. For each clause:
   - id: short identifier like "cov_1"
   - topic: one of [covenants, events_of_default, transferability, sanctions, esg, other]
   - heading: heading or short title if available
   - severity: "red", "amber", or "green" based on deviation from LMA-standard positions
   - is_deviation: true if text is materially borrower-favourable or unusual vs LMA standard
   - is_missing: true if this topic is expected but missing
   - risk_scores:
        - legal: integer 0-100
        - compliance: integer 0-100
        - operational: integer 0-100
   - snippet: 1-3 sentence excerpt or summary of the clause
   - rationale: short explanation of why this is the severity chosen
   - suggested_position: short recommendation for a more LMA-standard position.

3. Provide a summary:
   - overview: 3-5 sentence high-level summary of risks and key features of the agreement.
   - time_saved_hours: rough estimate of manual review time saved if this analysis is done automatically instead of manually. Use a value between 1 and 6.

IMPORTANT LMA-BASED RULES:
- Treat your baseline as current LMA investment grade / leveraged documentation and mainstream European/NY market practice.
- RED (high risk):
  * Missing or materially weakened core protections that are standard in LMA templates:
    - Sanctions / AML / Anti-bribery clauses in syndicated or cross-border lending.
    - Core Events of Default (non-payment, breach of covenants, insolvency, etc.).
    - Transfer restrictions that permit unrestricted transfers to distressed investors,
      sanctioned persons, or competitors.
  * Clauses that create obvious enforcement, ranking, or regulatory problems versus LMA.
- AMBER (medium risk):
  * Borrower-favourable tweaks still seen in practice (larger baskets, longer cure periods,
    tighter transfer consent rights, etc.).
  * Missing ESG provisions should usually be AMBER in older or purely domestic deals.
- GREEN (low risk):
  * Clauses broadly aligned with current LMA wording or only mildly off-market.
- For RED clauses, at least one of legal/compliance/operational scores should be >= 80.
- For AMBER clauses, typical scores 40-70.
- For GREEN clauses, scores are usually below 40.

- Use the pre-extracted hints provided for facility_size, margin, and tenor only as suggestions.
- When the document states a different value than a hint, the document wins.
- If a hint is empty, search the document for the term; do NOT invent values or defaults.
- ALWAYS output valid JSON that matches exactly the schema shown below.
- Do not include any free text outside the JSON.

SCHEMA:
{json_schema}

HINTS:
facility_size_hint: "{facility_size_hint}"
facility_size_canonical_hint: "{facility_size_canonical_hint}"
margin_hint: "{margin_hint}"
tenor_hint: "{tenor_hint}"
`

// example mirrors the result layout with placeholder values; field order is
// the order the model sees.
type example struct {
	DealMetadata struct {
		DealName     string `json:"deal_name"`
		Borrower     string `json:"borrower"`
		FacilitySize string `json:"facility_size"`
		Margin       string `json:"margin"`
		Tenor        string `json:"tenor"`
		GoverningLaw string `json:"governing_law"`
	} `json:"deal_metadata"`
	Clauses []exampleClause `json:"clauses"`
	Summary struct {
		Overview       string  `json:"overview"`
		TimeSavedHours float64 `json:"time_saved_hours"`
	} `json:"summary"`
}

type exampleClause struct {
	ID          string `json:"id"`
	Topic       string `json:"topic"`
	Heading     string `json:"heading"`
	Severity    string `json:"severity"`
	IsDeviation bool   `json:"is_deviation"`
	IsMissing   bool   `json:"is_missing"`
	RiskScores  struct {
		Legal       int `json:"legal"`
		Compliance  int `json:"compliance"`
		Operational int `json:"operational"`
	} `json:"risk_scores"`
	Snippet           string `json:"snippet"`
	Rationale         string `json:"rationale"`
	SuggestedPosition string `json:"suggested_position"`
}

// SchemaExample returns the indented JSON example embedded in the prompt.
func SchemaExample() string {
	var ex example
	ex.DealMetadata.DealName = "string"
	ex.DealMetadata.Borrower = "string"
	ex.DealMetadata.FacilitySize = "string"
	ex.DealMetadata.Margin = "string"
	ex.DealMetadata.Tenor = "string"
	ex.DealMetadata.GoverningLaw = "string"
	ex.Clauses = []exampleClause{{
		ID:                "string",
		Topic:             "string",
		Heading:           "string",
		Severity:          "string",
		IsDeviation:       true,
		Snippet:           "string",
		Rationale:         "string",
		SuggestedPosition: "string",
	}}
	ex.Summary.Overview = "string"
	ex.Summary.TimeSavedHours = 2.0

	b, _ := json.MarshalIndent(ex, "", "  ")
	return string(b)
}

var hintQuotes = strings.NewReplacer(`"`, "'")

// Compose builds the full model input: instructions, schema, hints and the
// document text.
func Compose(h hints.Hints, document string) string {
	payload := strings.NewReplacer(
		"{json_schema}", SchemaExample(),
		"{facility_size_hint}", hintQuotes.Replace(h.FacilitySize),
		"{facility_size_canonical_hint}", hintQuotes.Replace(h.FacilitySizeCanonical),
		"{margin_hint}", hintQuotes.Replace(h.Margin),
		"{tenor_hint}", hintQuotes.Replace(h.Tenor),
	).Replace(template)
	return payload + "\n\nDOCUMENT TEXT:\n" + document
}
