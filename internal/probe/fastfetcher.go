package probe

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// FastFetcher is a fasthttp-backed Fetcher for high request volumes.
// Redirects are not followed.
type FastFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func NewFastFetcher(timeout time.Duration) *FastFetcher {
	return &FastFetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost: 512,
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
		},
		timeout: timeout,
	}
}

// Fetch returns as soon as ctx is done; the request itself then finishes in
// the background and releases its buffers.
func (f *FastFetcher) Fetch(ctx context.Context, target string) Result {
	if err := ctx.Err(); err != nil {
		return Result{URL: target, Err: err}
	}

	timeout := f.timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return Result{URL: target, Err: context.DeadlineExceeded}
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)

	type outcome struct {
		status int
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)
		var err error
		if timeout > 0 {
			err = f.client.DoTimeout(req, resp, timeout)
		} else {
			err = f.client.Do(req, resp)
		}
		done <- outcome{status: resp.StatusCode(), err: err}
	}()

	select {
	case o := <-done:
		elapsed := time.Since(start)
		if o.err != nil {
			return Result{URL: target, Elapsed: elapsed, Err: o.err}
		}
		return Result{URL: target, StatusCode: o.status, Elapsed: elapsed}
	case <-ctx.Done():
		return Result{URL: target, Elapsed: time.Since(start), Err: ctx.Err()}
	}
}
