package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/bench"
	"github.com/hamed0406/safewarmer/internal/config"
	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/logging"
	"github.com/hamed0406/safewarmer/internal/safes"
	"github.com/hamed0406/safewarmer/internal/target"
)

const exitPrecondition = -1

var (
	envFile     = kingpin.Flag("env-file", "dotenv file to load (default: $ENV_FILE, ../../.env, .env).").String()
	limit       = kingpin.Flag("limit", "Number of safes to fetch (max 300).").Int()
	planFile    = kingpin.Flag("plan", "Write a drill benchmark plan for the fetched safes to this file.").String()
	install     = kingpin.Flag("install", "Install drill with cargo before running.").Bool()
	runDrill    = kingpin.Flag("run", "Run drill against the written plan.").Bool()
	concurrency = kingpin.Flag("concurrency", "drill concurrency.").Default("4").Int()
	iterations  = kingpin.Flag("iterations", "drill iterations.").Default("1").Int()
	rampup      = kingpin.Flag("rampup", "drill ramp-up seconds.").Default("0").Int()
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
	if *limit > 0 {
		cfg.SafesLimit = *limit
	}
	if cfg.ServiceURL == "" {
		fmt.Fprintln(os.Stderr, "✖ TRANSACTION_SERVICE_URL is not set")
		return exitPrecondition
	}
	if *runDrill && *planFile == "" {
		fmt.Fprintln(os.Stderr, "✖ --run needs --plan")
		return exitPrecondition
	}

	logger, err := logging.NewLogger(cfg.LogDir, "loadtest")
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return exitPrecondition
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote := safes.NewRemote(cfg.ServiceURL, cfg.SafesLimit, cfg.HTTPTimeout)
	fmt.Println(remote.URL())
	list, err := remote.Load(ctx)
	if err != nil {
		logger.Error("safes_load_error", zap.String("url", remote.URL()), zap.Error(err))
		fmt.Fprintln(os.Stderr, "✖", err)
		return 1
	}
	logger.Info("safes_loaded", zap.Int("count", len(list)))

	printListing(os.Stdout, list)

	if *planFile != "" {
		base, err := target.Resolve(target.Classify(cfg.ServiceURL, false))
		if err != nil {
			fmt.Fprintln(os.Stderr, "✖", err)
			return exitPrecondition
		}
		plan := bench.NewDrillPlan(base, list, bench.DrillOptions{
			Concurrency: *concurrency,
			Iterations:  *iterations,
			Rampup:      *rampup,
		})
		if err := bench.WriteDrillPlan(*planFile, plan); err != nil {
			logger.Error("drill_plan_write_error", zap.String("path", *planFile), zap.Error(err))
			fmt.Fprintln(os.Stderr, "✖", err)
			return 1
		}
		logger.Info("drill_plan_written", zap.String("path", *planFile), zap.String("base_url", base))
	}

	// install must finish before drill runs
	for _, c := range drillSteps(*install, *planFile, *runDrill) {
		out := bench.Run(ctx, c)
		_ = out.Print(os.Stdout)
		if out.Failed() {
			logger.Error("drill_command_failed", zap.String("cmd", c), zap.Int("exit_code", out.ExitCode), zap.Error(out.Err))
			return 1
		}
	}
	return 0
}

// printListing prints the fetched safes the way the load tester reports them.
func printListing(w io.Writer, list []domain.Safe) {
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = string(s)
	}
	fmt.Fprintf(w, "Top %d safes:\n", len(list))
	fmt.Fprintln(w, "\n\t"+strings.Join(names, "\n\t"))
	fmt.Fprintln(w, "Safes ready for tests")
}

// drillSteps lists the shell commands to run, in order. Installing does not
// depend on a plan; running does.
func drillSteps(install bool, planFile string, run bool) []string {
	var cmds []string
	if install {
		cmds = append(cmds, bench.InstallDrill)
	}
	if run && planFile != "" {
		cmds = append(cmds, bench.DrillCommand(planFile))
	}
	return cmds
}
