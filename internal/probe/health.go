package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DefaultHealthURL is the /about endpoint of a locally running gateway.
const DefaultHealthURL = "http://localhost:8000/about"

var ErrUnhealthy = errors.New("service is not running")

// Gate issues one GET to url and fails unless it answers 200. There is no retry.
func Gate(ctx context.Context, f Fetcher, url string) error {
	out := f.Fetch(ctx, url)
	if out.Err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnhealthy, url, out.Err)
	}
	if out.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUnhealthy, url, out.StatusCode)
	}
	return nil
}
