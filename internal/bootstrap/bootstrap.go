// Package bootstrap wires configuration into the analysis service and its
// optional backends. cmd/api and cmd/smartdocs share it.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bryanwahyu/smartdocs/internal/application"
	appanalysis "github.com/bryanwahyu/smartdocs/internal/application/analysis"
	"github.com/bryanwahyu/smartdocs/internal/config"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/domain/attempts"
	"github.com/bryanwahyu/smartdocs/internal/domain/policy"
	"github.com/bryanwahyu/smartdocs/internal/infra/ai/openai"
	"github.com/bryanwahyu/smartdocs/internal/infra/db/mysql"
	"github.com/bryanwahyu/smartdocs/internal/infra/db/postgres"
	"github.com/bryanwahyu/smartdocs/internal/infra/db/sqlite"
	"github.com/bryanwahyu/smartdocs/internal/infra/pdftext"
	"github.com/bryanwahyu/smartdocs/internal/infra/storage"
)

// NewModel picks the chat-completions or the responses adapter.
func NewModel(cfg *config.Config) domain.Model {
	if cfg.OpenAI.API == "responses" {
		return openai.NewResponsesClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAITimeout())
	}
	return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model,
		&http.Client{Timeout: cfg.OpenAITimeout()})
}

// OpenFailureLog connects the configured failure-log database. With no driver
// configured it returns a nil repository and a nil *sql.DB.
func OpenFailureLog(ctx context.Context, cfg *config.Config) (attempts.Repository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "":
		return nil, nil, nil
	case "mysql":
		db, err := mysql.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return mysql.NewAttemptFailureRepository(db), db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return postgres.NewAttemptFailureRepository(db), db, nil
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		return sqlite.NewAttemptFailureRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// OpenArchive returns nil when the object store is disabled.
func OpenArchive(ctx context.Context, cfg *config.Config) (*storage.Archive, error) {
	if !cfg.Minio.Enabled {
		return nil, nil
	}
	return storage.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
}

// Options carries the pieces callers may swap; zero values get defaults.
type Options struct {
	Model       domain.Model
	Extractor   domain.TextExtractor
	Failures    attempts.Repository
	AttemptHook func(phase string)
	Logger      *slog.Logger
}

func NewService(cfg *config.Config, opts Options) *appanalysis.Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	model := opts.Model
	if model == nil {
		model = NewModel(cfg)
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = pdftext.NewExtractor(cfg.PDF.PdftotextPath, cfg.PDFTimeout(), logger)
	}

	rt := appanalysis.NewRetrier(policy.Default(), logger)
	rt.MaxRetries = cfg.Analysis.MaxRetries
	rt.BaseDelay = time.Duration(cfg.Analysis.BaseDelayMS) * time.Millisecond
	rt.Increment = time.Duration(cfg.Analysis.IncrementMS) * time.Millisecond

	return &appanalysis.Service{
		Extractor: extractor,
		Model:     model,
		Generation: domain.GenerationConfig{
			Model:       cfg.OpenAI.Model,
			Temperature: 0,
			JSONOutput:  true,
		},
		Retrier:     rt,
		Failures:    opts.Failures,
		AttemptHook: opts.AttemptHook,
		Clock:       application.SystemClock{},
		Logger:      logger,
	}
}
