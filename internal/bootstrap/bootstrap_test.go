package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/smartdocs/internal/config"
	"github.com/bryanwahyu/smartdocs/internal/domain/attempts"
	"github.com/bryanwahyu/smartdocs/internal/infra/ai/openai"
	"github.com/bryanwahyu/smartdocs/internal/infra/pdftext"
)

func TestNewModel(t *testing.T) {
	cfg := config.Default()
	_, ok := NewModel(cfg).(*openai.Client)
	assert.True(t, ok)

	cfg.OpenAI.API = "responses"
	rc, ok := NewModel(cfg).(*openai.ResponsesClient)
	require.True(t, ok)
	assert.Equal(t, "https://api.openai.com/v1/responses", rc.Endpoint)
}

func TestOpenFailureLog(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Database.Driver = ""
	repo, db, err := OpenFailureLog(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.Nil(t, db)

	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = ":memory:"
	repo, db, err = OpenFailureLog(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repo.Save(ctx, &attempts.Failure{TenantID: "acme", AnalysisID: "a1", Attempt: 1, Phase: "parse", Message: "bad"}))
	list, err := repo.ListByAnalysis(ctx, "acme", "a1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	cfg.Database.Driver = "oracle"
	_, _, err = OpenFailureLog(ctx, cfg)
	assert.Error(t, err)
}

func TestOpenArchive_Disabled(t *testing.T) {
	a, err := OpenArchive(context.Background(), config.Default())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewService(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAI.Model = "gpt-4.1-mini"
	cfg.Analysis.MaxRetries = 4
	cfg.Analysis.BaseDelayMS = 10
	cfg.Analysis.IncrementMS = 5

	svc := NewService(cfg, Options{})
	assert.Equal(t, 4, svc.Retrier.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, svc.Retrier.BaseDelay)
	assert.Equal(t, 5*time.Millisecond, svc.Retrier.Increment)
	assert.NotNil(t, svc.Retrier.Engine)
	assert.Equal(t, "gpt-4.1-mini", svc.Generation.Model)
	assert.True(t, svc.Generation.JSONOutput)
	assert.Zero(t, svc.Generation.Temperature)

	ext, ok := svc.Extractor.(*pdftext.Extractor)
	require.True(t, ok)
	assert.Equal(t, "pdftotext", ext.Binary)
}
