package analysis

import (
	"regexp"
	"strings"

	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

// RecoverJSON pulls the JSON object out of model text that may be wrapped in
// markdown fences or chatter. When no balanced {...} span is found the
// fence-stripped text is returned for the JSON decoder to reject.
func RecoverJSON(text string) (string, error) {
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	stripped := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	first := strings.Index(stripped, "{")
	last := strings.LastIndex(stripped, "}")
	if first == -1 || last == -1 || last < first {
		return stripped, nil
	}
	candidate := stripped[first : last+1]
	if strings.Count(candidate, "{") != strings.Count(candidate, "}") {
		return stripped, nil
	}
	return candidate, nil
}
