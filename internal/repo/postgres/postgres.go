package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

const Schema = `
CREATE TABLE IF NOT EXISTS sweep_results (
  id          BIGSERIAL PRIMARY KEY,
  safe        TEXT NOT NULL,
  kind        TEXT NOT NULL,
  url         TEXT NOT NULL,
  http_status INTEGER NULL,
  latency_ms  DOUBLE PRECISION NOT NULL,
  reason      TEXT NOT NULL DEFAULT '',
  checked_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sweep_results_safe_kind_time
  ON sweep_results (safe, kind, checked_at DESC);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New connects, pings and applies Schema.
func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Append(ctx context.Context, r *domain.SweepResult) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	var statusPtr *int
	if r.HTTPStatus != 0 {
		statusPtr = &r.HTTPStatus
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sweep_results
		   (safe, kind, url, http_status, latency_ms, reason, checked_at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7)`,
		string(r.Safe), r.Kind.String(), r.URL, statusPtr, r.LatencyMS, r.Reason, r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sweep result: %w", err)
	}
	return nil
}

// Latest returns the newest row per (safe, kind), pairs ordered by their first insert.
func (s *Store) Latest(ctx context.Context) ([]domain.SweepResult, error) {
	rows, err := s.pool.Query(ctx, `
SELECT safe, kind, url, http_status, latency_ms, reason, checked_at
  FROM (
    SELECT DISTINCT ON (safe, kind)
           safe, kind, url, http_status, latency_ms, reason, checked_at,
           MIN(id) OVER (PARTITION BY safe, kind) AS first_id
      FROM sweep_results
     ORDER BY safe, kind, checked_at DESC, id DESC
  ) latest
 ORDER BY first_id`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []domain.SweepResult
	for rows.Next() {
		var (
			safe, kind, url, reason string
			httpNull                sql.NullInt32
			latency                 float64
			checkedAt               time.Time
		)
		if err := rows.Scan(&safe, &kind, &url, &httpNull, &latency, &reason, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		k, err := domain.ParseKind(kind)
		if err != nil {
			s.log.Warn("sweep_results_unknown_kind", zap.String("kind", kind))
			continue
		}
		r := domain.SweepResult{
			Safe:      domain.Safe(safe),
			Kind:      k,
			URL:       url,
			LatencyMS: latency,
			Reason:    reason,
			CheckedAt: checkedAt,
		}
		if httpNull.Valid {
			r.HTTPStatus = int(httpNull.Int32)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
