package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/config"
	"github.com/hamed0406/safewarmer/internal/httpapi"
	"github.com/hamed0406/safewarmer/internal/logging"
	"github.com/hamed0406/safewarmer/internal/notify"
	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/repo"
	"github.com/hamed0406/safewarmer/internal/repo/memory"
	"github.com/hamed0406/safewarmer/internal/repo/postgres"
	"github.com/hamed0406/safewarmer/internal/scheduler"
	"github.com/hamed0406/safewarmer/internal/sweep"
	"github.com/hamed0406/safewarmer/internal/warmup"
)

// exitPrecondition is reported as status 255.
const exitPrecondition = -1

var (
	envFile     = kingpin.Flag("env-file", "dotenv file to load (default: $ENV_FILE, ../../.env, .env).").String()
	spectrum    = kingpin.Flag("spectrum", "Warm the spectrum deployment (staging only).").Bool()
	cacheFile   = kingpin.Flag("cache-file", "Read safes from this file if it exists, otherwise fetch and save them there.").String()
	healthGate  = kingpin.Flag("health", "Require the local service to answer 200 before fetching anything.").Bool()
	healthURL   = kingpin.Flag("health-url", "Endpoint checked by --health.").String()
	limit       = kingpin.Flag("limit", "Number of safes to fetch (max 300).").Int()
	concurrency = kingpin.Flag("concurrency", "Safes warmed in parallel; 1 is sequential.").Int()
	client      = kingpin.Flag("client", "HTTP client used for warm-up requests.").Enum(config.ClientNetHTTP, config.ClientFastHTTP)
	statusAddr  = kingpin.Flag("status-addr", "Serve /healthz, /api/results/latest and /metrics on this address.").String()
	interval    = kingpin.Flag("interval", "Repeat the sweep on this interval; 0 sweeps once.").Duration()
)

func main() {
	kingpin.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return exitPrecondition
	}
	applyFlags(&cfg)

	logger, err := logging.NewLogger(cfg.LogDir, "warmer")
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return exitPrecondition
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fetcher probe.Fetcher = probe.NewHTTPFetcher(cfg.HTTPTimeout)
	if cfg.HTTPClient == config.ClientFastHTTP {
		fetcher = probe.NewFastFetcher(cfg.HTTPTimeout)
	}

	var results repo.ResultStore = memory.New()
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("postgres_connect_error", zap.Error(err))
			fmt.Fprintln(os.Stderr, "✖", err)
			return exitPrecondition
		}
		defer pg.Close()
		results = pg
	}

	metrics := sweep.NewMetrics()
	sw := sweep.NewRunner(logger, fetcher, os.Stdout, cfg.SweepConcurrency)
	sw.Results = results
	sw.Metrics = metrics

	if cfg.StatusAddr != "" {
		srv := httpapi.NewServer(logger, results, metrics.Handler())
		srv.Start(cfg.StatusAddr)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn("status_shutdown_error", zap.Error(err))
			}
		}()
	}

	var notifier notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifier = append(notifier, s)
	}

	opts := warmup.Options{
		ServiceURL:  cfg.ServiceURL,
		SpectrumURL: cfg.SpectrumServiceURL,
		Spectrum:    *spectrum,
		CacheFile:   cfg.CacheFile,
		Limit:       cfg.SafesLimit,
		Timeout:     cfg.HTTPTimeout,
	}
	if *healthGate {
		opts.HealthURL = cfg.HealthURL
	}

	wr := warmup.NewRunner(logger, fetcher, sw)
	wr.Out = os.Stdout
	plan, err := wr.Prepare(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return exitCode(err)
	}

	err = scheduler.Repeat(ctx, logger, cfg.SweepInterval, func(ctx context.Context) error {
		sum, err := sw.Run(ctx, plan.BaseURL, plan.Safes)
		if len(notifier) > 0 {
			msg := notify.SweepSummary(plan.BaseURL, sum, err)
			if nerr := notifier.Notify(context.WithoutCancel(ctx), msg); nerr != nil {
				logger.Warn("notify_error", zap.Error(nerr))
			}
		}
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
	}
	return exitCode(err)
}

// exitCode maps a run error to the process status: 0 on success, 255 when a
// precondition failed before any safe was fetched, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, warmup.ErrPrecondition):
		return exitPrecondition
	default:
		return 1
	}
}

func applyFlags(cfg *config.Config) {
	if *cacheFile != "" {
		cfg.CacheFile = *cacheFile
	}
	if *healthURL != "" {
		cfg.HealthURL = *healthURL
	}
	if *limit > 0 {
		cfg.SafesLimit = *limit
	}
	if *concurrency > 0 {
		cfg.SweepConcurrency = *concurrency
	}
	if *client != "" {
		cfg.HTTPClient = *client
	}
	if *statusAddr != "" {
		cfg.StatusAddr = *statusAddr
	}
	if *interval > 0 {
		cfg.SweepInterval = *interval
	}
}
