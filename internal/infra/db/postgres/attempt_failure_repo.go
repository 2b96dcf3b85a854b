package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/smartdocs/internal/domain/attempts"
)

type AttemptFailureRepository struct{ db *sql.DB }

func NewAttemptFailureRepository(db *sql.DB) *AttemptFailureRepository {
	return &AttemptFailureRepository{db: db}
}

func (r *AttemptFailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_attempt_failures
  (tenant_id, analysis_id, attempt, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7)
RETURNING id;`
	f.Normalize(time.Now())
	return r.db.QueryRowContext(ctx, q,
		f.TenantID, f.AnalysisID, f.Attempt, f.Phase, f.Message, f.DetailsJSON, f.CreatedAt,
	).Scan(&f.ID)
}

func (r *AttemptFailureRepository) ListByAnalysis(ctx context.Context, tenant, analysisID string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, analysis_id, attempt, phase, message, details_json::text, created_at
FROM analysis_attempt_failures
WHERE tenant_id = $1 AND analysis_id = $2
ORDER BY created_at DESC, id DESC
LIMIT $3;`
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
