package hints

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	scaledAmountRe = regexp.MustCompile(`(?i)([\d.,]+)\s*(million|billion)`)
	nonAmountRe    = regexp.MustCompile(`[^\d.,]`)

	million = decimal.NewFromInt(1_000_000)
	billion = decimal.NewFromInt(1_000_000_000)
)

// NormalizeAmount turns a facility amount such as "$43,700,000.00",
// "EUR 4,500,000" or "4.5 million" into a plain integer string. Input it
// cannot read is returned unchanged.
func NormalizeAmount(s string) string {
	if s == "" {
		return ""
	}

	if m := scaledAmountRe.FindStringSubmatch(s); m != nil {
		n, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return s
		}
		factor := million
		if strings.EqualFold(m[2], "billion") {
			factor = billion
		}
		return n.Mul(factor).Truncate(0).String()
	}

	clean := nonAmountRe.ReplaceAllString(s, "")
	if clean == "" {
		return s
	}
	clean = strings.ReplaceAll(clean, ",", "")

	n, err := decimal.NewFromString(clean)
	if err != nil {
		return s
	}
	if !strings.Contains(clean, ".") || n.IsInteger() {
		return n.Truncate(0).String()
	}
	return n.String()
}
