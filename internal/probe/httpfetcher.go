package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, target string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{URL: target, Err: err}
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	elapsed := time.Since(start) // headers received; body is not part of the latency
	if err != nil {
		return Result{URL: target, Elapsed: elapsed, Err: err}
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return Result{
		URL:        resp.Request.URL.String(), // final URL after redirects
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
	}
}
