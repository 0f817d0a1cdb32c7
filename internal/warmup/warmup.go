// Package warmup ties target resolution, the health gate, safe loading and
// the sweep into one run.
package warmup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/safes"
	"github.com/hamed0406/safewarmer/internal/sweep"
	"github.com/hamed0406/safewarmer/internal/target"
)

var (
	// ErrPrecondition marks failures detected before any safe is fetched.
	ErrPrecondition = errors.New("precondition failed")
	// ErrFetch marks a failed safe list load.
	ErrFetch = errors.New("loading safes failed")
)

type Options struct {
	ServiceURL  string // TRANSACTION_SERVICE_URL
	SpectrumURL string // transaction service for spectrum mode
	Spectrum    bool
	HealthURL   string // empty skips the health gate
	CacheFile   string // empty disables the identifier cache
	Limit       int
	Timeout     time.Duration // analytics request timeout
}

// Plan is everything a run needs before the first warm-up request.
type Plan struct {
	Selector   target.Selector
	BaseURL    string
	ServiceURL string
	Safes      []domain.Safe
}

type Runner struct {
	Logger  *zap.Logger
	Fetcher probe.Fetcher // used by the health gate
	Sweep   *sweep.Runner
	Out     io.Writer // optional console progress
}

func NewRunner(logger *zap.Logger, fetcher probe.Fetcher, sw *sweep.Runner) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Logger: logger, Fetcher: fetcher, Sweep: sw}
}

// Prepare resolves the gateway, runs the health gate and loads the safes.
// Precondition errors wrap ErrPrecondition, list failures wrap ErrFetch.
func (r *Runner) Prepare(ctx context.Context, opts Options) (Plan, error) {
	if opts.ServiceURL == "" {
		return Plan{}, fmt.Errorf("%w: TRANSACTION_SERVICE_URL is not set", ErrPrecondition)
	}
	sel := target.Classify(opts.ServiceURL, opts.Spectrum)
	base, err := target.Resolve(sel)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	svc := target.ServiceURL(sel, opts.ServiceURL, opts.SpectrumURL)
	r.Logger.Info("target_resolved",
		zap.String("selector", sel.String()),
		zap.String("base_url", base),
		zap.String("service_url", svc),
	)

	if opts.HealthURL != "" {
		if err := probe.Gate(ctx, r.Fetcher, opts.HealthURL); err != nil {
			r.Logger.Error("health_gate_failed", zap.String("url", opts.HealthURL), zap.Error(err))
			return Plan{}, fmt.Errorf("%w: %w", ErrPrecondition, err)
		}
		r.Logger.Info("health_gate_passed", zap.String("url", opts.HealthURL))
	}

	remote := safes.NewRemote(svc, opts.Limit, opts.Timeout)
	src := safes.Select(opts.CacheFile, remote, r.Logger)
	if _, cached := src.(*safes.File); !cached && r.Out != nil {
		fmt.Fprintf(r.Out, "Loading remote ...\n%s\n", remote.URL())
	}
	list, err := src.Load(ctx)
	if err != nil {
		r.Logger.Error("safes_load_error", zap.String("url", remote.URL()), zap.Error(err))
		return Plan{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	r.Logger.Info("safes_loaded", zap.Int("count", len(list)), zap.String("cache_file", opts.CacheFile))

	return Plan{Selector: sel, BaseURL: base, ServiceURL: svc, Safes: list}, nil
}

// Run prepares and then sweeps every loaded safe.
func (r *Runner) Run(ctx context.Context, opts Options) (Plan, sweep.Summary, error) {
	p, err := r.Prepare(ctx, opts)
	if err != nil {
		return p, sweep.Summary{}, err
	}
	sum, err := r.Sweep.Run(ctx, p.BaseURL, p.Safes)
	return p, sum, err
}
