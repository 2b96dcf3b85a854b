package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/smartdocs/internal/domain/hints"
)

func TestCompose(t *testing.T) {
	h := hints.Hints{
		FacilitySize:          `USD "50,000,000"`,
		FacilitySizeCanonical: "50000000",
		Margin:                "3.25%",
		Tenor:                 "5 years",
	}
	doc := "THIS AGREEMENT is dated 1 January 2024."

	p := Compose(h, doc)

	assert.Contains(t, p, `facility_size_hint: "USD '50,000,000'"`)
	assert.Contains(t, p, `facility_size_canonical_hint: "50000000"`)
	assert.Contains(t, p, `margin_hint: "3.25%"`)
	assert.Contains(t, p, `tenor_hint: "5 years"`)
	assert.Contains(t, p, SchemaExample())
	assert.True(t, strings.HasSuffix(p, "\n\nDOCUMENT TEXT:\n"+doc))
	assert.NotContains(t, p, "{json_schema}")
}

func TestComposeEmptyHints(t *testing.T) {
	p := Compose(hints.Hints{}, "text")
	assert.Contains(t, p, `margin_hint: ""`)
	assert.Contains(t, p, "do NOT invent values")
}

func TestSchemaExampleIsValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(SchemaExample()), &v))
	assert.Contains(t, v, "deal_metadata")
	assert.Contains(t, v, "clauses")
	assert.Contains(t, v, "summary")

	clauses := v["clauses"].([]any)
	require.Len(t, clauses, 1)
	c := clauses[0].(map[string]any)
	assert.Equal(t, true, c["is_deviation"])
	assert.Equal(t, false, c["is_missing"])
	assert.Equal(t, 2.0, v["summary"].(map[string]any)["time_saved_hours"])
}
