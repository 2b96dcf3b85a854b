package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper fence", "```JSON\n{\"a\":1}```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"chatter", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"no braces", "no braces here", "no braces here"},
		{"unbalanced open", "{unbalanced", "{unbalanced"},
		{"unbalanced slice", `{"a": {"b": 1}`, `{"a": {"b": 1}`},
		{"closing first", "} then {", "} then {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecoverJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecoverJSONEmpty(t *testing.T) {
	_, err := RecoverJSON("")
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}
