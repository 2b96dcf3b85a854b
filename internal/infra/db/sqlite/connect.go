package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/smartdocs/internal/infra/db/migrations"
)

// Connect opens (and creates) a local SQLite failure log and applies the
// embedded schema. Use ":memory:" in tests.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	dir, err := migrations.Dir("sqlite")
	if err != nil {
		return err
	}
	ups, err := fs.Glob(dir, "*.up.sql")
	if err != nil {
		return err
	}
	for _, name := range ups {
		b, err := fs.ReadFile(dir, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}
