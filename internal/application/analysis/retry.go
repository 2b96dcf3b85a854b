package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwahyu/smartdocs/internal/application"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/domain/policy"
)

// Attempt phases reported to OnFailure and the failure log.
const (
	PhaseModel    = "model"
	PhaseParse    = "parse"
	PhaseValidate = "validate"
	PhasePolicy   = "policy"
)

const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
	DefaultIncrement  = 500 * time.Millisecond
	// DefaultMaxRetryAfter caps how long a provider's Retry-After may stretch
	// one backoff.
	DefaultMaxRetryAfter = 30 * time.Second
)

// Call performs one model request.
type Call func(ctx context.Context) (domain.ModelResponse, error)

// Retrier runs a model call until its answer parses, validates and passes
// the rule engine. Attempt n that fails waits BaseDelay + n*Increment before
// the next one, or longer when the error carries a Retry-After (up to
// MaxRetryAfter). The last failure is returned inside *ExhaustedError.
type Retrier struct {
	MaxRetries    int
	BaseDelay     time.Duration
	Increment     time.Duration
	MaxRetryAfter time.Duration
	Clock         application.Clock
	Engine        *policy.Engine
	Logger        *slog.Logger
	OnFailure     func(attempt int, phase string, err error)
}

func NewRetrier(engine *policy.Engine, logger *slog.Logger) *Retrier {
	return &Retrier{
		MaxRetries:    DefaultMaxRetries,
		BaseDelay:     DefaultBaseDelay,
		Increment:     DefaultIncrement,
		MaxRetryAfter: DefaultMaxRetryAfter,
		Clock:         application.SystemClock{},
		Engine:        engine,
		Logger:        logger,
	}
}

func (r *Retrier) Run(ctx context.Context, call Call) (domain.Result, error) {
	attempts := r.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	log := r.logger()

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Result{}, err
		}
		log.Debug("analysis.model_request", "attempt", attempt, "max_attempts", attempts)

		res, phase, err := r.attempt(ctx, call)
		if err == nil {
			if attempt > 1 {
				log.Info("analysis.recovered", "attempt", attempt)
			}
			return res, nil
		}
		last = err
		log.Warn("analysis.attempt_failed", "attempt", attempt, "phase", phase, "error", err)
		if r.OnFailure != nil {
			r.OnFailure(attempt, phase, err)
		}
		if attempt == attempts {
			break
		}

		delay := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return domain.Result{}, ctx.Err()
		case <-r.clock().After(delay):
		}
	}

	log.Error("analysis.model_exhausted", "attempts", attempts, "error", last)
	return domain.Result{}, &domain.ExhaustedError{Attempts: attempts, Last: last}
}

func (r *Retrier) backoff(attempt int, err error) time.Duration {
	delay := r.BaseDelay + time.Duration(attempt)*r.Increment
	if ra, ok := domain.RetryAfter(err); ok {
		if r.MaxRetryAfter > 0 && ra > r.MaxRetryAfter {
			ra = r.MaxRetryAfter
		}
		delay = max(delay, ra)
	}
	return delay
}

func (r *Retrier) attempt(ctx context.Context, call Call) (domain.Result, string, error) {
	resp, err := call(ctx)
	if err != nil {
		return domain.Result{}, PhaseModel, err
	}
	v, err := resolve(resp)
	if err != nil {
		return domain.Result{}, PhaseParse, err
	}
	res, err := decodeResult(v)
	if err != nil {
		return domain.Result{}, PhaseValidate, err
	}
	engine := r.Engine
	if engine == nil {
		engine = policy.Default()
	}
	res, err = engine.Apply(res)
	if err != nil {
		return domain.Result{}, PhasePolicy, err
	}
	return res, "", nil
}

// resolve turns either response shape into a decoded JSON value.
func resolve(resp domain.ModelResponse) (any, error) {
	if obj, ok := resp.Object(); ok {
		if obj == nil {
			return nil, domain.ErrEmptyResponse
		}
		return obj, nil
	}
	if text, ok := resp.Text(); ok {
		if strings.TrimSpace(text) == "" {
			return nil, domain.ErrEmptyResponse
		}
		js, err := RecoverJSON(text)
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, fmt.Errorf("decode model json: %w", err)
		}
		return v, nil
	}
	return nil, domain.ErrUnknownResponseShape
}

func (r *Retrier) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Retrier) clock() application.Clock {
	if r.Clock == nil {
		return application.SystemClock{}
	}
	return r.Clock
}
