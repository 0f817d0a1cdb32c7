package sweep

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/probe"
	"github.com/hamed0406/safewarmer/internal/repo/memory"
)

// recordingFetcher answers from a status table and remembers request order.
type recordingFetcher struct {
	mu     sync.Mutex
	urls   []string
	status func(url string) (int, error)
}

func (f *recordingFetcher) Fetch(ctx context.Context, target string) probe.Result {
	f.mu.Lock()
	f.urls = append(f.urls, target)
	f.mu.Unlock()
	code, err := 200, error(nil)
	if f.status != nil {
		code, err = f.status(target)
	}
	return probe.Result{URL: target, StatusCode: code, Elapsed: 1500 * time.Microsecond, Err: err}
}

func TestRun_SequentialOrderAndOutput(t *testing.T) {
	f := &recordingFetcher{}
	var out bytes.Buffer
	r := NewRunner(zap.NewNop(), f, &out, 1)

	base := "https://safe-client-mainnet.staging.gnosisdev.com"
	sum, err := r.Run(context.Background(), base, []domain.Safe{"0x1", "0x2"})
	require.NoError(t, err)

	want := []string{
		base + "/v1/safes/0x1/balances/USD",
		base + "/v1/safes/0x1/collectibles",
		base + "/v1/safes/0x1/transactions/queued",
		base + "/v1/safes/0x1/transactions/history",
		base + "/v1/safes/0x2/balances/USD",
		base + "/v1/safes/0x2/collectibles",
		base + "/v1/safes/0x2/transactions/queued",
		base + "/v1/safes/0x2/transactions/history",
	}
	assert.Equal(t, want, f.urls)
	assert.Equal(t, Summary{Safes: 2, Requests: 8, Elapsed: sum.Elapsed}, sum)

	lines := strings.Split(out.String(), "\n")
	// 2 blocks of 4 lines + blank separator, then the trailing newline
	require.Len(t, lines, 11)
	for i, u := range want {
		line := lines[i+i/4]
		assert.Equal(t, "0.0015          200::"+u, line)
	}
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "", lines[9])
}

func TestRun_FailuresDoNotStopTheSweep(t *testing.T) {
	f := &recordingFetcher{status: func(u string) (int, error) {
		switch {
		case strings.HasSuffix(u, "/collectibles"):
			return 500, nil
		case strings.Contains(u, "0xB/transactions/queued"):
			return 0, errors.New("connection reset")
		}
		return 200, nil
	}}
	var out bytes.Buffer
	sum, err := NewRunner(nil, f, &out, 1).Run(context.Background(), "http://gw", []domain.Safe{"0xA", "0xB", "0xC"})
	require.NoError(t, err)

	assert.Len(t, f.urls, 12)
	assert.Equal(t, 3, sum.Safes)
	assert.Equal(t, 12, sum.Requests)
	assert.Equal(t, 4, sum.Failures)
	assert.Len(t, multierr.Errors(sum.Errors), 4)
	assert.Contains(t, out.String(), "       0::http://gw/v1/safes/0xB/transactions/queued")
	assert.Contains(t, out.String(), "     500::http://gw/v1/safes/0xA/collectibles")
}

func TestRun_DuplicatesAreWarmedTwice(t *testing.T) {
	f := &recordingFetcher{}
	sum, err := NewRunner(nil, f, &bytes.Buffer{}, 1).Run(context.Background(), "http://gw", []domain.Safe{"0xA", "0xA"})
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Requests)
	assert.Len(t, f.urls, 8)
}

func TestRun_ConcurrentKeepsBlocksIntact(t *testing.T) {
	f := &recordingFetcher{}
	var out bytes.Buffer
	safes := []domain.Safe{"0x1", "0x2", "0x3", "0x4", "0x5", "0x6"}
	sum, err := NewRunner(nil, f, &out, 3).Run(context.Background(), "http://gw", safes)
	require.NoError(t, err)
	assert.Equal(t, 24, sum.Requests)

	blocks := strings.Split(strings.TrimSuffix(out.String(), "\n\n"), "\n\n")
	require.Len(t, blocks, len(safes))
	seen := map[string]bool{}
	for _, b := range blocks {
		lines := strings.Split(b, "\n")
		require.Len(t, lines, 4)
		safe := strings.Split(strings.SplitN(lines[0], "/v1/safes/", 2)[1], "/")[0]
		for i, kind := range domain.Kinds {
			assert.True(t, strings.HasSuffix(lines[i], "/v1/safes/"+safe+kind.Suffix()), lines[i])
		}
		seen[safe] = true
	}
	assert.Len(t, seen, len(safes))
}

func TestRun_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	f := &recordingFetcher{status: func(string) (int, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 200, nil
	}}
	sum, err := NewRunner(nil, f, &bytes.Buffer{}, 1).Run(ctx, "http://gw", []domain.Safe{"0xA", "0xB"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Safes)
	assert.Less(t, len(f.urls), 8)
}

func TestRun_RecordsResultsAndMetrics(t *testing.T) {
	f := &recordingFetcher{status: func(u string) (int, error) {
		if strings.HasSuffix(u, "/history") {
			return 404, nil
		}
		return 200, nil
	}}
	store := memory.New()
	m := NewMetrics()
	r := NewRunner(nil, f, &bytes.Buffer{}, 1)
	r.Results = store
	r.Metrics = m

	_, err := r.Run(context.Background(), "http://gw", []domain.Safe{"0xA"})
	require.NoError(t, err)

	rows, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.KindHistory, rows[3].Kind)
	assert.Equal(t, 404, rows[3].HTTPStatus)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("history", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("balances", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.safes))
}

func TestRun_AgainstHTTPServer(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	var out bytes.Buffer
	sum, err := NewRunner(nil, probe.NewHTTPFetcher(2*time.Second), &out, 1).
		Run(context.Background(), s.URL, []domain.Safe{"0x1"})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Failures)
	assert.Equal(t, []string{
		"/v1/safes/0x1/balances/USD",
		"/v1/safes/0x1/collectibles",
		"/v1/safes/0x1/transactions/queued",
		"/v1/safes/0x1/transactions/history",
	}, paths)
	assert.Equal(t, 5, strings.Count(out.String(), "\n"))
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(probe.Result{URL: "https://gw/x", StatusCode: 200, Elapsed: 250 * time.Millisecond})
	assert.Equal(t, "0.25            200::https://gw/x", got)
}
