// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/hamed0406/safewarmer/internal/config"
	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/target"
)

var (
	envFile  = kingpin.Flag("env-file", "dotenv file to load (default: $ENV_FILE, ../../.env, .env).").String()
	spectrum = kingpin.Flag("spectrum", "Check the spectrum deployment instead.").Bool()
	health   = kingpin.Flag("health", "Fail when the health endpoint does not answer 200.").Bool()
)

func main() {
	kingpin.Parse()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load(*envFile)
	if err != nil {
		fail(err.Error())
	}
	ctx := context.Background()

	if cfg.ServiceURL == "" {
		fail("TRANSACTION_SERVICE_URL is empty (nothing to fetch safes from).")
	}
	ok("TRANSACTION_SERVICE_URL=" + cfg.ServiceURL)

	sel := target.Classify(cfg.ServiceURL, *spectrum)
	base, err := target.Resolve(sel)
	if err != nil {
		fail(err.Error())
	}
	ok("target " + sel.String() + " -> " + base)

	svc := target.ServiceURL(sel, cfg.ServiceURL, cfg.SpectrumServiceURL)
	if st := probe.CheckDNS(ctx, probe.HostOf(svc)); st.Class != probe.DNSResolves {
		fail(fmt.Sprintf("transaction service host %s: %s %s", st.Host, st.Class, st.ResolverError))
	} else {
		ok("transaction service host " + st.Host + " resolves")
	}
	if st := probe.CheckDNS(ctx, probe.HostOf(base)); st.Class != probe.DNSResolves {
		warn(fmt.Sprintf("gateway host %s: %s (every warm-up request will fail)", st.Host, st.Class))
	} else {
		ok("gateway host " + st.Host + " resolves")
	}

	hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = probe.Gate(hctx, probe.NewHTTPFetcher(5*time.Second), cfg.HealthURL)
	cancel()
	switch {
	case err == nil:
		ok("health endpoint " + cfg.HealthURL + " answers 200")
	case *health:
		fail(err.Error())
	default:
		warn(err.Error() + " (only needed with --health)")
	}

	if cfg.CacheFile == "" {
		warn("CACHE_FILE empty; safes are fetched on every run.")
	} else if _, err := os.Stat(cfg.CacheFile); err == nil {
		ok("CACHE_FILE=" + cfg.CacheFile + " exists and will be reused")
	} else {
		ok("CACHE_FILE=" + cfg.CacheFile + " will be created on first run")
	}

	if cfg.SweepConcurrency > 1 {
		warn(fmt.Sprintf("SWEEP_CONCURRENCY=%d; output blocks appear in completion order.", cfg.SweepConcurrency))
	}
	ok("HTTP_CLIENT=" + cfg.HTTPClient)

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; sweep results are kept in memory only.")
	} else {
		ok("DATABASE_URL present")
	}
	if cfg.StatusAddr != "" {
		ok("STATUS_ADDR=" + cfg.StatusAddr)
	}
	if cfg.SlackWebhook != "" {
		ok("SLACK_WEBHOOK_URL present")
	}

	ok("preflight passed")
}
