package middleware

import (
	"encoding/json"
	"maps"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64
	AnalysesTotal      atomic.Uint64
	AnalysesRunning    atomic.Int64
	AnalysesFailed     atomic.Uint64
	StartTime          time.Time

	mu            sync.Mutex
	modelFailures map[string]uint64 // by phase
}

var globalMetrics = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{StartTime: time.Now(), modelFailures: map[string]uint64{}}
}

// IncrementAnalyses marks the start of an analysis and returns the func that
// marks its end.
func IncrementAnalyses() (done func(failed bool)) {
	globalMetrics.AnalysesTotal.Add(1)
	globalMetrics.AnalysesRunning.Add(1)
	return func(failed bool) {
		globalMetrics.AnalysesRunning.Add(-1)
		if failed {
			globalMetrics.AnalysesFailed.Add(1)
		}
	}
}

// IncrementModelFailures counts one failed model attempt in the given phase.
func IncrementModelFailures(phase string) {
	globalMetrics.mu.Lock()
	globalMetrics.modelFailures[phase]++
	globalMetrics.mu.Unlock()
}

// GetMetrics returns current metrics
func GetMetrics() map[string]any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	globalMetrics.mu.Lock()
	failures := maps.Clone(globalMetrics.modelFailures)
	globalMetrics.mu.Unlock()

	return map[string]any{
		"requests_total":       globalMetrics.RequestsTotal.Load(),
		"requests_in_progress": globalMetrics.RequestsInProgress.Load(),
		"requests_success":     globalMetrics.RequestsSuccess.Load(),
		"requests_failed":      globalMetrics.RequestsFailed.Load(),
		"analyses_total":       globalMetrics.AnalysesTotal.Load(),
		"analyses_running":     globalMetrics.AnalysesRunning.Load(),
		"analyses_failed":      globalMetrics.AnalysesFailed.Load(),
		"model_failures":       failures,
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.RequestsTotal.Add(1)
		globalMetrics.RequestsInProgress.Add(1)
		defer globalMetrics.RequestsInProgress.Add(-1)

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			globalMetrics.RequestsSuccess.Add(1)
		} else {
			globalMetrics.RequestsFailed.Add(1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
