package hints

import (
	"regexp"
	"strings"
)

// Hints are regex pre-extracted deal figures handed to the model as suggestions.
type Hints struct {
	FacilitySize          string `json:"facility_size"`
	Margin                string `json:"margin"`
	Tenor                 string `json:"tenor"`
	FacilitySizeCanonical string `json:"facility_size_canonical"`
}

var FacilitySizePatterns = Matcher{
	P("labelled_total", `(?:Total (?:Loan|Facility|Commitments|Commitment|Amount)[\s:\x{2014}-]{1,10}|\bLoan Amount[:\s]*|\bFacility Size[:\s]*)((?:USD|US\$|\$|CAD|Cdn\.|\x{20AC}|EUR|GBP|£)?\s*[\d{1,3},]+(?:\.\d+)?(?:\s*(?:million|billion))?)`),
	P("total_commitments", `\bTotal Commitments[:\s]*([A-Z]{3}\s*[\d,]+(?:\.\d+)?)`),
	P("aggregate_commitments", `\bAggregate Commitments[:\s]*([A-Z]{3}\s*[\d,]+(?:\.\d+)?)`),
	P("symbol_amount", `([£\$\x{20AC}]\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?)`),
	P("iso_amount", `([A-Z]{3}\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?)`),
	P("scaled_amount", `(\d+(?:\.\d+)?\s*(?:million|billion))`),
}

var MarginPatterns = Matcher{
	P("libor_plus", `LIBOR\s*(?:\+|plus)\s*([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("rfr_plus", `(?:SOFR|RFR|SONIA)\s*(?:\+|plus)\s*([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("prime_rate", `Prime Rate(?: Margin)?\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("interest_libor", `Interest\s*=\s*LIBOR\s*(?:\+|plus)\s*([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("interest_rate", `Interest Rate\s*[:=]\s*(?:LIBOR\s*\+\s*)?([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("margin", `Margin\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)\s*%?`),
	P("libor_words", `LIBOR\s*(?:\+|plus)\s*([a-z\s\-]+?)\s*percent`),
}

var TenorPatterns = Matcher{
	P("maturity_date", `(?:Maturity Date|Final Maturity|Termination Date)[:\s]*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	P("years", `\b(\d{1,2}\s*(?:years|year))\b`),
	P("months", `\b(\d{1,3})\s*months?\b`),
	P("term", `\bTerm[:\s]*([0-9]+)\s*(?:years?|months?)\b`),
	P("matures_on", `\bMatures\s+on\s+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	P("months_after_closing", `(\d+\s*months(?:\s*after\s*closing|following\s*the\s*closing)?)`),
}

var (
	wordedPercentRe = regexp.MustCompile(`(?i)([a-z\s\-]+?)\s*percent`)
	bareNumberRe    = regexp.MustCompile(`^\d+(\.\d+)?$`)
	nonDecimalRe    = regexp.MustCompile(`[^0-9.]`)
)

// Extract runs the three ranked pattern lists over the document text.
// Categories without a match stay empty.
func Extract(text string) Hints {
	var h Hints
	if v, ok := FacilitySizePatterns.Match(text); ok {
		h.FacilitySize = v
		h.FacilitySizeCanonical = NormalizeAmount(v)
	}
	if v, ok := MarginPatterns.Match(text); ok {
		h.Margin = normalizeMargin(v)
	}
	if v, ok := TenorPatterns.Match(text); ok {
		h.Tenor = v
	}
	return h
}

// normalizeMargin turns "3.25" into "3.25%" and "three point two five
// percent" style matches into digits where the words carry any.
func normalizeMargin(m string) string {
	if wm := wordedPercentRe.FindStringSubmatch(m); wm != nil {
		digits := nonDecimalRe.ReplaceAllString(strings.ReplaceAll(wm[1], "point", "."), "")
		if digits != "" {
			return digits + "%"
		}
		return m
	}
	if bareNumberRe.MatchString(m) {
		return m + "%"
	}
	return m
}
