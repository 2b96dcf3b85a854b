package attempts

import "context"

// Repository defines persistence for attempt failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByAnalysis(ctx context.Context, tenant, analysisID string, limit int) ([]*Failure, error)
}
