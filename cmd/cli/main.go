package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/hamed0406/safewarmer/internal/config"
	"github.com/hamed0406/safewarmer/internal/domain"
)

var (
	envFile  = kingpin.Flag("env-file", "dotenv file to load (default: $ENV_FILE, ../../.env, .env).").String()
	addr     = kingpin.Flag("addr", "Status server of a running warmer (default: $STATUS_ADDR).").String()
	failures = kingpin.Flag("failures", "Only show requests that did not answer 2xx.").Bool()
)

func main() {
	kingpin.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
	api := *addr
	if api == "" {
		api = cfg.StatusAddr
	}
	if api == "" {
		fmt.Println("No status server configured; pass --addr or set STATUS_ADDR.")
		os.Exit(1)
	}
	if !strings.Contains(api, "://") {
		if strings.HasPrefix(api, ":") {
			api = "localhost" + api
		}
		api = "http://" + api
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(api + "/api/results/latest")
	if err != nil {
		fmt.Println("Error contacting warmer:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		fmt.Println("Warmer returned status:", resp.Status)
		os.Exit(1)
	}

	var rows []domain.SweepResult
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		fmt.Println("Unexpected response:", err)
		os.Exit(1)
	}

	const row = "%-44s %-12s %6s %10s  %-20s  %s\n"
	fmt.Printf(row, "SAFE", "KIND", "STATUS", "LATENCY_MS", "CHECKED_AT", "REASON")
	shown := 0
	for _, r := range rows {
		if *failures && r.HTTPStatus/100 == 2 {
			continue
		}
		fmt.Printf(row, r.Safe, r.Kind, strconv.Itoa(r.HTTPStatus),
			strconv.FormatFloat(r.LatencyMS, 'f', 1, 64), r.CheckedAt.Format(time.RFC3339), r.Reason)
		shown++
	}
	fmt.Printf("%d of %d results\n", shown, len(rows))
}
