package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/smartdocs/internal/domain/attempts"
)

type AttemptFailureRepository struct {
	db *sql.DB
}

func NewAttemptFailureRepository(db *sql.DB) *AttemptFailureRepository {
	return &AttemptFailureRepository{db: db}
}

func (r *AttemptFailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_attempt_failures
  (tenant_id, analysis_id, attempt, phase, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?)
`
	f.Normalize(time.Now())
	res, err := r.db.ExecContext(ctx, q, f.TenantID, f.AnalysisID, f.Attempt, f.Phase, f.Message, f.DetailsJSON, f.CreatedAt)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

func (r *AttemptFailureRepository) ListByAnalysis(ctx context.Context, tenant, analysisID string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, analysis_id, attempt, phase, message, details_json, created_at
FROM analysis_attempt_failures
WHERE tenant_id = ? AND analysis_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, analysisID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.TenantID, &f.AnalysisID, &f.Attempt, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
