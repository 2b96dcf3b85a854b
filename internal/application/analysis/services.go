package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bryanwahyu/smartdocs/internal/application"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/domain/attempts"
	"github.com/bryanwahyu/smartdocs/internal/domain/hints"
	"github.com/bryanwahyu/smartdocs/internal/infra/ai/prompt"
)

// Service runs one document through extraction, hinting, the model and the
// rule engine. It keeps no per-analysis state and is safe for concurrent use.
type Service struct {
	Extractor  domain.TextExtractor
	Model      domain.Model
	Generation domain.GenerationConfig
	Retrier    *Retrier
	// Failures is optional; when set every failed attempt is logged there.
	Failures attempts.Repository
	// AttemptHook is optional and sees every failed attempt (metrics).
	AttemptHook func(phase string)
	Clock       application.Clock
	Logger      *slog.Logger
}

type Request struct {
	TenantID   string
	AnalysisID string
	Path       string
}

func (s *Service) Analyze(ctx context.Context, req Request) (domain.Result, error) {
	log := s.logger().With("tenant", req.TenantID, "analysis_id", req.AnalysisID)

	log.Info("analysis.extract_text", "path", req.Path)
	text, err := s.Extractor.Extract(ctx, req.Path)
	if err != nil {
		return domain.Result{}, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Result{}, domain.ErrNoText
	}

	h := hints.Extract(text)
	log.Info("analysis.hints",
		"facility_size", h.FacilitySize,
		"facility_size_canonical", h.FacilitySizeCanonical,
		"margin", h.Margin,
		"tenor", h.Tenor,
	)
	input := prompt.Compose(h, text)

	rt := s.retrier()
	rt.Logger = log
	rt.OnFailure = func(attempt int, phase string, err error) {
		if s.AttemptHook != nil {
			s.AttemptHook(phase)
		}
		s.recordFailure(ctx, log, req, attempt, phase, err)
	}

	res, err := rt.Run(ctx, func(ctx context.Context) (domain.ModelResponse, error) {
		return s.Model.Generate(ctx, input, s.Generation)
	})
	if err != nil {
		return domain.Result{}, err
	}
	log.Info("analysis.done", "clauses", len(res.Clauses))
	return res, nil
}

func (s *Service) recordFailure(ctx context.Context, log *slog.Logger, req Request, attempt int, phase string, cause error) {
	if s.Failures == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"model":      s.Generation.Model,
		"error_type": fmt.Sprintf("%T", cause),
	})
	f := &attempts.Failure{
		TenantID:    req.TenantID,
		AnalysisID:  req.AnalysisID,
		Attempt:     attempt,
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.clock().Now(),
	}
	// kegagalan simpan log tidak boleh menggagalkan analisis
	if err := s.Failures.Save(context.WithoutCancel(ctx), f); err != nil {
		log.Warn("analysis.failure_log_error", "error", err)
	}
}

// retrier returns a per-call copy so hooks never leak between analyses.
func (s *Service) retrier() Retrier {
	if s.Retrier == nil {
		return *NewRetrier(nil, s.logger())
	}
	return *s.Retrier
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}
