package attempts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	f := &Failure{Attempt: 2, DetailsJSON: "not json"}
	f.Normalize(now)
	assert.Equal(t, "-", f.TenantID)
	assert.Equal(t, "-", f.AnalysisID)
	assert.Equal(t, "-", f.Phase)
	assert.Equal(t, "-", f.Message)
	assert.JSONEq(t, `{"raw":"not json"}`, f.DetailsJSON)
	assert.Equal(t, now, f.CreatedAt)

	created := now.Add(-time.Hour)
	g := &Failure{TenantID: "acme", Phase: "parse", Message: "boom", DetailsJSON: `{"model":"gpt"}`, CreatedAt: created}
	g.Normalize(now)
	assert.Equal(t, "acme", g.TenantID)
	assert.Equal(t, `{"model":"gpt"}`, g.DetailsJSON)
	assert.Equal(t, created, g.CreatedAt)

	h := &Failure{}
	h.Normalize(now)
	assert.Equal(t, "{}", h.DetailsJSON)
}
