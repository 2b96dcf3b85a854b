package analysis

import (
	"math"
	"slices"
)

type TopicStats struct {
	Topic Topic `json:"topic"`
	Red   int   `json:"red"`
	Amber int   `json:"amber"`
	Green int   `json:"green"`
}

func (t TopicStats) Total() int { return t.Red + t.Amber + t.Green }

// Stats summarises a result the way the review dashboard shows it.
type Stats struct {
	Total        int          `json:"total"`
	Red          int          `json:"red"`
	Amber        int          `json:"amber"`
	Green        int          `json:"green"`
	Deviations   int          `json:"deviations"`
	Missing      int          `json:"missing"`
	DeviationPct int          `json:"deviation_pct"`
	RiskScore    int          `json:"risk_score"`
	ByTopic      []TopicStats `json:"by_topic"`
}

// Summarize counts severities and computes the weighted document score:
// red weighs 1, amber 0.5, green 0. An empty result scores 100.
func Summarize(r Result) Stats {
	st := Stats{Total: len(r.Clauses)}
	perTopic := make(map[Topic]*TopicStats, len(Topics))
	var extra []Topic
	for _, c := range r.Clauses {
		ts, ok := perTopic[c.Topic]
		if !ok {
			ts = &TopicStats{Topic: c.Topic}
			perTopic[c.Topic] = ts
			if !slices.Contains(Topics, c.Topic) {
				extra = append(extra, c.Topic)
			}
		}
		switch c.Severity.Normalized() {
		case SeverityRed:
			st.Red++
			ts.Red++
		case SeverityAmber:
			st.Amber++
			ts.Amber++
		case SeverityGreen:
			st.Green++
			ts.Green++
		}
		if c.IsDeviation {
			st.Deviations++
		}
		if c.IsMissing {
			st.Missing++
		}
	}

	st.RiskScore = 100
	if st.Total > 0 {
		weighted := float64(st.Red) + 0.5*float64(st.Amber)
		st.RiskScore = int(math.Round(100 * (1 - weighted/float64(st.Total))))
		st.DeviationPct = int(math.Round(100 * float64(st.Deviations) / float64(st.Total)))
	}

	for _, t := range append(append([]Topic{}, Topics...), extra...) {
		if ts, ok := perTopic[t]; ok {
			st.ByTopic = append(st.ByTopic, *ts)
		}
	}
	return st
}
