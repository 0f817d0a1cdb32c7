package repo

import (
	"context"

	"github.com/hamed0406/safewarmer/internal/domain"
)

// ResultStore keeps sweep results for the status API. Latest returns the most
// recent result per (safe, kind) in the order the pair was first seen.
type ResultStore interface {
	Append(ctx context.Context, r *domain.SweepResult) error
	Latest(ctx context.Context) ([]domain.SweepResult, error)
}
