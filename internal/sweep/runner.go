// Package sweep issues the warm-up requests for a list of safes.
package sweep

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/repo"
)

// Summary totals a sweep. Errors holds one entry per failed request and is
// informational: failed requests never stop a sweep.
type Summary struct {
	Safes    int
	Requests int
	Failures int
	Errors   error
	Elapsed  time.Duration
}

type Runner struct {
	Logger      *zap.Logger
	Fetcher     probe.Fetcher
	Out         io.Writer
	Concurrency int
	Results     repo.ResultStore // optional
	Metrics     *Metrics         // optional
}

func NewRunner(logger *zap.Logger, fetcher probe.Fetcher, out io.Writer, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Logger:      logger,
		Fetcher:     fetcher,
		Out:         out,
		Concurrency: concurrency,
	}
}

// Run warms every safe against base. Each safe gets one GET per domain.Kinds
// entry, in that order, and its lines are printed as one block once all four
// are done. With Concurrency 1 safes are processed strictly one after the
// other; above that, up to Concurrency safes are in flight and blocks appear
// in completion order. Only a cancelled ctx ends the sweep early.
func (r *Runner) Run(ctx context.Context, base string, safes []domain.Safe) (Summary, error) {
	start := time.Now()
	var (
		mu  sync.Mutex
		sum Summary
	)

	r.Logger.Info("sweep_started",
		zap.String("base_url", base),
		zap.Int("safes", len(safes)),
		zap.Int("concurrency", r.Concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for _, safe := range safes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results, err := r.warm(gctx, base, safe)

			mu.Lock()
			defer mu.Unlock()
			if len(results) == len(domain.Kinds) {
				if werr := WriteBlock(r.Out, results); werr != nil {
					r.Logger.Warn("sweep_print_error", zap.Error(werr))
				}
				sum.Safes++
				r.Metrics.safeDone()
			}
			for _, res := range results {
				sum.Requests++
				if !res.OK() {
					sum.Failures++
					sum.Errors = multierr.Append(sum.Errors, failure(res))
				}
			}
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sum.Elapsed = time.Since(start)

	r.Logger.Info("sweep_finished",
		zap.Int("safes", sum.Safes),
		zap.Int("requests", sum.Requests),
		zap.Int("failures", sum.Failures),
		zap.Duration("elapsed", sum.Elapsed),
		zap.Error(err),
	)
	return sum, err
}

// warm issues the four requests for one safe sequentially. It stops only
// when ctx is done.
func (r *Runner) warm(ctx context.Context, base string, safe domain.Safe) ([]probe.Result, error) {
	results := make([]probe.Result, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := r.Fetcher.Fetch(ctx, kind.URL(base, safe))
		results = append(results, res)
		r.Metrics.observe(kind, res)
		r.record(ctx, safe, kind, res)
	}
	return results, nil
}

func (r *Runner) record(ctx context.Context, safe domain.Safe, kind domain.EndpointKind, res probe.Result) {
	fields := []zap.Field{
		zap.String("safe", string(safe)),
		zap.String("kind", kind.String()),
		zap.String("url", res.URL),
		zap.Int("status", res.StatusCode),
		zap.Float64("latency_ms", res.LatencyMS()),
	}
	if res.Err != nil {
		r.Logger.Warn("sweep_request_error", append(fields, zap.Error(res.Err))...)
	} else {
		r.Logger.Debug("sweep_request", fields...)
	}

	if r.Results == nil {
		return
	}
	reason := ""
	if res.Err != nil {
		reason = res.Err.Error()
	}
	sr := &domain.SweepResult{
		Safe:       safe,
		Kind:       kind,
		URL:        res.URL,
		HTTPStatus: res.StatusCode,
		LatencyMS:  res.LatencyMS(),
		Reason:     reason,
		CheckedAt:  time.Now().UTC(),
	}
	// results already fetched are stored even while the sweep is being cancelled
	if err := r.Results.Append(context.WithoutCancel(ctx), sr); err != nil {
		r.Logger.Warn("sweep_record_error",
			zap.String("safe", string(safe)),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
}

func failure(res probe.Result) error {
	if res.Err != nil {
		return fmt.Errorf("%s: %w", res.URL, res.Err)
	}
	return fmt.Errorf("%s: status %d", res.URL, res.StatusCode)
}
