package probe

import (
	"context"
	"time"
)

// Result is the outcome of a single GET.
//
// StatusCode is 0 when the request never produced a response (transport error,
// timeout, cancelled context); Err is set in that case. The response body is
// never kept.
type Result struct {
	URL        string
	StatusCode int
	Elapsed    time.Duration
	Err        error
}

// OK reports a 2xx response.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

func (r Result) LatencyMS() float64 {
	return r.Elapsed.Seconds() * 1000
}

// Fetcher issues a GET against target and reports status and latency.
type Fetcher interface {
	Fetch(ctx context.Context, target string) Result
}
