package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appanalysis "github.com/bryanwahyu/smartdocs/internal/application/analysis"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/domain/attempts"
	"github.com/bryanwahyu/smartdocs/internal/infra/report"
	"github.com/bryanwahyu/smartdocs/internal/infra/storage"
	"github.com/bryanwahyu/smartdocs/internal/middleware"
)

var (
	errForbidden = errors.New("tenant does not match API key")
	errNotFound  = errors.New("not found")
)

// badRequest marks client input errors.
type badRequest struct{ error }

func (e badRequest) Unwrap() error { return e.error }

// Analyzer is the application service behind POST /analyze.
type Analyzer interface {
	Analyze(ctx context.Context, req appanalysis.Request) (domain.Result, error)
}

type Deps struct {
	Analyzer Analyzer
	// Failures and Archive are optional.
	Failures       attempts.Repository
	Archive        domain.DocumentStore
	Checks         map[string]middleware.HealthChecker
	UploadDir      string
	MaxUploadBytes int64
	Logger         *slog.Logger
	Now            func() time.Time
}

type Router struct {
	deps Deps
	log  *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 25 << 20
	}
	if deps.UploadDir == "" {
		deps.UploadDir = os.TempDir()
	}
	r := &Router{deps: deps, log: deps.Logger}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(deps.Checks))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses/{id}/failures", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= 500 {
			r.log.Error("http.handler_error", "path", req.URL.Path, "status", status, "error", err)
		}
		http.Error(w, err.Error(), status)
	}
}

// statusFor maps handler errors to HTTP status codes. Quota is checked before
// exhaustion since an exhausted run keeps its last cause.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var bad badRequest
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrModelExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) tenant(req *http.Request) (string, error) {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return "", badRequest{err}
	}
	if !middleware.TenantAllowed(req.Context(), tenant) {
		return "", errForbidden
	}
	return tenant, nil
}

// POST /v1/{tenant}/analyze?format=json|html|xlsx
// multipart field "file" (.pdf or .txt)
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant, err := r.tenant(req)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		return badRequest{err}
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.deps.MaxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest{fmt.Errorf("file: %w", err)}
	}
	defer file.Close()

	name := middleware.SanitizeString(header.Filename)
	if err := middleware.ValidateUploadName(name); err != nil {
		return badRequest{err}
	}

	id := uuid.NewString()
	log := r.log.With("tenant", tenant, "analysis_id", id)

	path, err := r.saveUpload(file, id, name)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	if r.deps.Archive != nil {
		key := storage.ObjectKey(tenant, id, name, r.deps.Now())
		if url, err := r.deps.Archive.Upload(req.Context(), path, key); err != nil {
			// arsip gagal tidak menghentikan analisis
			log.Warn("analysis.archive_failed", "key", key, "error", err)
		} else {
			log.Info("analysis.archived", "url", url)
		}
	}

	w.Header().Set("X-Analysis-ID", id)
	done := middleware.IncrementAnalyses()
	res, err := r.deps.Analyzer.Analyze(req.Context(), appanalysis.Request{
		TenantID:   tenant,
		AnalysisID: id,
		Path:       path,
	})
	done(err != nil)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatXLSX {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.xlsx"`, id))
	}
	return report.Write(w, format, res, r.deps.Now())
}

func (r *Router) saveUpload(src multipart.File, id, name string) (string, error) {
	if err := os.MkdirAll(r.deps.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	dst, err := os.CreateTemp(r.deps.UploadDir, id+"-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return dst.Name(), nil
}

// GET /v1/{tenant}/analyses/{id}/failures?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant, err := r.tenant(req)
	if err != nil {
		return err
	}
	if r.deps.Failures == nil {
		return fmt.Errorf("failure log disabled: %w", errNotFound)
	}
	id := chi.URLParam(req, "id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest{fmt.Errorf("invalid analysis id: %w", err)}
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.deps.Failures.ListByAnalysis(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*attempts.Failure{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
