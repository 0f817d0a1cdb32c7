package safes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/hamed0406/safewarmer/internal/domain"
)

const (
	AnalyticsPath = "/api/v1/analytics/multisig-transactions/by-safe/"

	// MaxLimit is the page size cap of the analytics endpoint.
	MaxLimit = 300

	maxBody = 16 << 20
)

var ErrMalformed = errors.New("malformed analytics response")

// Remote queries the transaction service analytics endpoint for the safes
// with the most multisig transactions.
type Remote struct {
	ServiceURL string
	Limit      int
	Client     *http.Client
}

func NewRemote(serviceURL string, limit int, timeout time.Duration) *Remote {
	return &Remote{
		ServiceURL: serviceURL,
		Limit:      limit,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (r *Remote) limit() int {
	if r.Limit < 1 || r.Limit > MaxLimit {
		return MaxLimit
	}
	return r.Limit
}

// URL is the analytics request issued by Load.
func (r *Remote) URL() string {
	return strings.TrimRight(r.ServiceURL, "/") + AnalyticsPath + "?limit=" + strconv.Itoa(r.limit())
}

func (r *Remote) Load(ctx context.Context) ([]domain.Safe, error) {
	u := r.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build analytics request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch safes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch safes: %s returned %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read analytics body: %w", err)
	}

	out, err := ParseResults(body)
	if err != nil {
		return nil, err
	}
	if len(out) > r.limit() {
		out = out[:r.limit()]
	}
	return out, nil
}

// ParseResults extracts results[].safe in order.
func ParseResults(body []byte) ([]domain.Safe, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	results := v.Get("results")
	if results == nil || results.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: missing results array", ErrMalformed)
	}
	items, _ := results.Array()

	out := make([]domain.Safe, 0, len(items))
	for i, item := range items {
		sv := item.Get("safe")
		if sv == nil || sv.Type() != fastjson.TypeString {
			return nil, fmt.Errorf("%w: results[%d].safe is not a string", ErrMalformed, i)
		}
		b, _ := sv.StringBytes()
		if len(b) == 0 {
			return nil, fmt.Errorf("%w: results[%d].safe is empty", ErrMalformed, i)
		}
		out = append(out, domain.Safe(b))
	}
	return out, nil
}
