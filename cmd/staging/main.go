package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/bench"
	"github.com/hamed0406/safewarmer/internal/config"
	"github.com/hamed0406/safewarmer/internal/logging"
)

var (
	envFile = kingpin.Flag("env-file", "dotenv file to load (default: $ENV_FILE, ../../.env, .env).").String()
	cmds    = kingpin.Flag("cmd", "Shell command to run; repeatable. Defaults to installing drill and building the gateway.").Strings()
)

func main() {
	kingpin.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return -1
	}
	logger, err := logging.NewLogger(cfg.LogDir, "staging")
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		return -1
	}
	defer logger.Sync()

	list := *cmds
	if len(list) == 0 {
		list = []string{bench.InstallDrill, "cargo build"}
	}
	logger.Info("staging_started", zap.Strings("cmds", list))

	// No timeout: every command runs to completion.
	outs, err := bench.RunAll(context.Background(), list...)
	for _, o := range outs {
		_ = o.Print(os.Stdout)
		logger.Info("staging_command_done", zap.String("cmd", o.Cmd), zap.Int("exit_code", o.ExitCode))
	}
	if err != nil {
		logger.Warn("staging_failed", zap.Int("failed", len(multierr.Errors(err))), zap.Error(err))
		return 1
	}
	return 0
}
