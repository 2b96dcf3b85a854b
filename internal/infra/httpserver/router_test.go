package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/bryanwahyu/smartdocs/internal/application/analysis"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/domain/attempts"
)

type fakeAnalyzer struct {
	mu   sync.Mutex
	res  domain.Result
	err  error
	reqs []appanalysis.Request
	body []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req appanalysis.Request) (domain.Result, error) {
	b, _ := os.ReadFile(req.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	f.body = append(f.body, string(b))
	return f.res, f.err
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Upload(_ context.Context, _, key string) (string, error) {
	a.keys = append(a.keys, key)
	return "http://minio/bucket/" + key, a.err
}

type memFailures struct {
	list  []*attempts.Failure
	limit int
}

func (m *memFailures) Save(context.Context, *attempts.Failure) error { return nil }

func (m *memFailures) ListByAnalysis(_ context.Context, _, _ string, limit int) ([]*attempts.Failure, error) {
	m.limit = limit
	return m.list, nil
}

func sampleResult() domain.Result {
	return domain.Result{
		DealMetadata: domain.DealMetadata{Borrower: "Acme Holdings", FacilitySize: "USD 50,000,000"},
		Clauses: []domain.Clause{
			{Topic: domain.TopicSanctions, Severity: domain.SeverityRed, IsMissing: true},
		},
	}
}

func newTestRouter(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	deps.UploadDir = t.TempDir()
	deps.Now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return NewRouter(deps)
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyze_JSON(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	arch := &fakeArchive{}
	h := newTestRouter(t, Deps{Analyzer: an, Archive: arch})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze", "facility.txt", "Total Facility Amount: $50,000,000"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	id := rec.Header().Get("X-Analysis-ID")
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	var got domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme Holdings", got.DealMetadata.Borrower)
	require.Len(t, got.Clauses, 1)

	require.Len(t, an.reqs, 1)
	assert.Equal(t, "acme", an.reqs[0].TenantID)
	assert.Equal(t, id, an.reqs[0].AnalysisID)
	assert.Equal(t, "Total Facility Amount: $50,000,000", an.body[0])
	assert.Equal(t, []string{"acme/2026/03/04/" + id + ".txt"}, arch.keys)

	_, err = os.Stat(an.reqs[0].Path)
	assert.True(t, os.IsNotExist(err), "upload is removed after the analysis")
}

func TestAnalyze_ArchiveFailureIsNotFatal(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	h := newTestRouter(t, Deps{Analyzer: an, Archive: &fakeArchive{err: errors.New("bucket down")}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze", "facility.pdf", "%PDF"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyze_Formats(t *testing.T) {
	h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{res: sampleResult()}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze?format=html", "f.txt", "x"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Acme Holdings")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze?format=xlsx", "f.txt", "x"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip container")
}

func TestAnalyze_BadInput(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	h := newTestRouter(t, Deps{Analyzer: an})

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"bad format", uploadRequest(t, "/v1/acme/analyze?format=csv", "f.txt", "x")},
		{"bad extension", uploadRequest(t, "/v1/acme/analyze", "f.docx", "x")},
		{"bad tenant", uploadRequest(t, "/v1/acme.corp/analyze", "f.txt", "x")},
		{"no file", httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", strings.NewReader(""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, an.reqs)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no text", fmt.Errorf("analyze: %w", domain.ErrNoText), http.StatusUnprocessableEntity},
		{"exhausted", &domain.ExhaustedError{Attempts: 3, Last: errors.New("bad json")}, http.StatusBadGateway},
		{"quota", &domain.ExhaustedError{Attempts: 3, Last: domain.ErrQuotaExceeded}, http.StatusTooManyRequests},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{err: tt.err}})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze", "f.txt", "x"))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Analysis-ID"))
		})
	}
}

func TestAnalyze_TooLarge(t *testing.T) {
	h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{}, MaxUploadBytes: 64})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/v1/acme/analyze", "f.txt", strings.Repeat("a", 4096)))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)
}

func TestFailures(t *testing.T) {
	id := uuid.NewString()
	repo := &memFailures{list: []*attempts.Failure{
		{ID: 1, TenantID: "acme", AnalysisID: id, Attempt: 1, Phase: "parse", Message: "unexpected end of JSON input"},
	}}
	h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{}, Failures: repo})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/"+id+"/failures?limit=500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, repo.limit)
	var got []attempts.Failure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "parse", got[0].Phase)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/not-a-uuid/failures", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailures_EmptyAndDisabled(t *testing.T) {
	id := uuid.NewString()

	h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{}, Failures: &memFailures{}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/"+id+"/failures", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	h = newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{}})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/"+id+"/failures", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProbes(t *testing.T) {
	h := newTestRouter(t, Deps{Analyzer: &fakeAnalyzer{}})
	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
