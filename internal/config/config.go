package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/safes"
	"github.com/hamed0406/safewarmer/internal/target"
)

// DefaultEnvFile is the repository .env as seen from a tool directory.
const DefaultEnvFile = "../../.env"

const (
	ClientNetHTTP  = "nethttp"
	ClientFastHTTP = "fasthttp"
)

type Config struct {
	ServiceURL         string        // transaction service queried for the safe list
	SpectrumServiceURL string        // transaction service used in spectrum mode
	HealthURL          string        // local service that must answer 200 before a gated run
	SafesLimit         int           // 1..300
	CacheFile          string        // empty disables the identifier cache
	HTTPTimeout        time.Duration // per request
	HTTPClient         string        // nethttp | fasthttp
	SweepConcurrency   int           // 1 is strictly sequential
	SweepInterval      time.Duration // 0 runs a single sweep
	LogDir             string        // logs directory
	StatusAddr         string        // empty disables the status server
	DatabaseURL        string        // empty keeps results in memory only
	SlackWebhook       string        // empty disables the run summary notification
}

// Load reads the dotenv file (variables already in the environment win) and
// then the environment. An explicit path that does not exist is an error;
// the default lookup chain ENV_FILE, ../../.env, .env tolerates missing files.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
		return FromEnv(), nil
	}
	for _, p := range []string{os.Getenv("ENV_FILE"), DefaultEnvFile, ".env"} {
		if p == "" {
			continue
		}
		err := godotenv.Load(p)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	spectrum := os.Getenv("SPECTRUM_TRANSACTION_SERVICE_URL")
	if spectrum == "" {
		spectrum = target.SpectrumServiceURL
	}

	health := os.Getenv("HEALTH_URL")
	if health == "" {
		health = probe.DefaultHealthURL
	}

	limit := safes.MaxLimit
	if n, ok := intEnv("SAFES_LIMIT"); ok && n > 0 && n <= safes.MaxLimit {
		limit = n
	}

	timeout := 30 * time.Second
	if ms, ok := intEnv("HTTP_TIMEOUT_MS"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	client := ClientNetHTTP
	if strings.EqualFold(os.Getenv("HTTP_CLIENT"), ClientFastHTTP) {
		client = ClientFastHTTP
	}

	concurrency := 1
	if n, ok := intEnv("SWEEP_CONCURRENCY"); ok && n > 0 {
		concurrency = n
	}

	var interval time.Duration
	if ms, ok := intEnv("SWEEP_INTERVAL_MS"); ok && ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		ServiceURL:         os.Getenv("TRANSACTION_SERVICE_URL"),
		SpectrumServiceURL: spectrum,
		HealthURL:          health,
		SafesLimit:         limit,
		CacheFile:          os.Getenv("CACHE_FILE"),
		HTTPTimeout:        timeout,
		HTTPClient:         client,
		SweepConcurrency:   concurrency,
		SweepInterval:      interval,
		LogDir:             logDir,
		StatusAddr:         os.Getenv("STATUS_ADDR"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SlackWebhook:       os.Getenv("SLACK_WEBHOOK_URL"),
	}
}

func intEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
