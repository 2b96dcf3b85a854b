package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

// resultSchema checks structure, the topic and severity vocabularies and
// numeric ranges. Scores may be numbers, numeric strings or null; Score
// decoding handles all three.
const resultSchema = `{
  "type": "object",
  "required": ["deal_metadata", "clauses", "summary"],
  "properties": {
    "deal_metadata": {
      "type": "object",
      "properties": {
        "deal_name": {"type": ["string", "null"]},
        "borrower": {"type": ["string", "null"]},
        "facility_size": {"type": ["string", "null"]},
        "margin": {"type": ["string", "null"]},
        "tenor": {"type": ["string", "null"]},
        "governing_law": {"type": ["string", "null"]}
      }
    },
    "clauses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["topic", "severity"],
        "properties": {
          "id": {"type": ["string", "null"]},
          "topic": {"enum": ["covenants", "events_of_default", "transferability", "sanctions", "esg", "other"]},
          "heading": {"type": ["string", "null"]},
          "severity": {"enum": ["red", "amber", "green"]},
          "is_deviation": {"type": ["boolean", "null"]},
          "is_missing": {"type": ["boolean", "null"]},
          "risk_scores": {
            "type": "object",
            "properties": {
              "legal": {"$ref": "#/$defs/score"},
              "compliance": {"$ref": "#/$defs/score"},
              "operational": {"$ref": "#/$defs/score"}
            }
          },
          "snippet": {"type": ["string", "null"]},
          "rationale": {"type": ["string", "null"]},
          "suggested_position": {"type": ["string", "null"]}
        }
      }
    },
    "summary": {
      "type": "object",
      "properties": {
        "overview": {"type": ["string", "null"]},
        "time_saved_hours": {"type": "number", "minimum": 1, "maximum": 6}
      }
    }
  },
  "$defs": {
    "score": {
      "type": ["number", "string", "null"],
      "minimum": 0,
      "maximum": 100,
      "pattern": "^\\s*(100(\\.0+)?|[0-9]{1,2}(\\.[0-9]+)?)?\\s*$"
    }
  }
}`

var schema = jsonschema.MustCompileString("analysis_result.json", resultSchema)

// decodeResult validates a decoded JSON value against the result schema and
// converts it into a Result. Topic and severity are case-folded first.
func decodeResult(v any) (domain.Result, error) {
	normalizeCase(v)
	if err := schema.Validate(v); err != nil {
		return domain.Result{}, fmt.Errorf("json does not match schema: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return domain.Result{}, fmt.Errorf("marshal model json: %w", err)
	}
	var r domain.Result
	if err := json.Unmarshal(b, &r); err != nil {
		return domain.Result{}, fmt.Errorf("decode result: %w", err)
	}
	if r.Clauses == nil {
		r.Clauses = []domain.Clause{}
	}
	seen := make(map[string]struct{}, len(r.Clauses))
	for _, c := range r.Clauses {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			return domain.Result{}, fmt.Errorf("%w: duplicate clause id %q", domain.ErrInvalidResult, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return r, nil
}

func normalizeCase(v any) {
	root, ok := v.(map[string]any)
	if !ok {
		return
	}
	clauses, ok := root["clauses"].([]any)
	if !ok {
		return
	}
	for _, item := range clauses {
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"topic", "severity"} {
			if s, ok := c[key].(string); ok {
				c[key] = strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
}
