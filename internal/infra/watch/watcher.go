package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultExts are the document types the analyzer accepts.
var DefaultExts = []string{".pdf", ".txt"}

type Config struct {
	Dir         string
	Exts        []string      // lower-case with dot; nil means DefaultExts
	InitialScan bool          // emit files already in Dir
	Debounce    time.Duration // coalesce create/write bursts per file
	Logger      *slog.Logger
}

// Start watches cfg.Dir and emits the path of every new or rewritten
// document once it has been quiet for cfg.Debounce. The channel closes when
// ctx is done.
func Start(ctx context.Context, cfg Config) (<-chan string, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: no directory")
	}
	if cfg.Exts == nil {
		cfg.Exts = DefaultExts
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	var initial []string
	if cfg.InitialScan {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		for _, e := range entries {
			p := filepath.Join(cfg.Dir, e.Name())
			if !e.IsDir() && allowed(p, cfg.Exts) {
				initial = append(initial, p)
			}
		}
	}

	out := make(chan string, 64)
	go loop(ctx, w, cfg, initial, out)
	return out, nil
}

func loop(ctx context.Context, w *fsnotify.Watcher, cfg Config, initial []string, out chan<- string) {
	defer close(out)
	defer w.Close()

	emit := func(p string) bool {
		select {
		case out <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for _, p := range initial {
		if !emit(p) {
			return
		}
	}

	pending := map[string]time.Time{}
	tick := time.NewTicker(tickInterval(cfg.Debounce))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !allowed(e.Name, cfg.Exts) {
				continue
			}
			pending[e.Name] = time.Now()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cfg.Logger.Warn("watch.error", "error", err)
		case now := <-tick.C:
			for p, last := range pending {
				if now.Sub(last) < cfg.Debounce {
					continue
				}
				delete(pending, p)
				if _, err := os.Stat(p); err != nil {
					continue // renamed away or deleted
				}
				if !emit(p) {
					return
				}
			}
		}
	}
}

func tickInterval(debounce time.Duration) time.Duration {
	if d := debounce / 2; d > 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}

func allowed(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
