package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner lets tests stub the external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	if err := cmd.Run(); err != nil {
		r.logger.Error("pdftext.exec_failed",
			"cmd", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(truncate(errb.String(), 512)))
	}
	r.logger.Debug("pdftext.exec_ok", "cmd", name, "duration_ms", time.Since(start).Milliseconds(), "stdout_bytes", out.Len())
	return out.Bytes(), nil
}

// Extractor reads text out of PDFs with poppler's pdftotext. Plain .txt
// files are read as-is.
type Extractor struct {
	Binary  string
	Timeout time.Duration
	Runner  Runner
	Logger  *slog.Logger
}

func NewExtractor(binary string, timeout time.Duration, logger *slog.Logger) *Extractor {
	if binary == "" {
		binary = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Binary: binary, Timeout: timeout, Runner: execRunner{logger: logger}, Logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(b), nil
	case ".pdf":
	default:
		return "", fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	out, err := e.Runner.Run(ctx, e.Binary, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", filepath.Base(path), err)
	}
	// pages are separated by form feeds
	text := strings.ReplaceAll(string(out), "\f", "\n")
	e.Logger.Debug("pdftext.extracted", "file", filepath.Base(path), "chars", len(text))
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
