package domain

import (
	"fmt"
	"time"
)

// Safe is the address of a safe as returned by the transaction service.
type Safe string

type EndpointKind int

const (
	KindBalances EndpointKind = iota
	KindCollectibles
	KindQueued
	KindHistory
)

// Kinds lists the gateway endpoints warmed for every safe, in request order.
var Kinds = []EndpointKind{KindBalances, KindCollectibles, KindQueued, KindHistory}

var kindNames = map[EndpointKind]string{
	KindBalances:     "balances",
	KindCollectibles: "collectibles",
	KindQueued:       "queued",
	KindHistory:      "history",
}

var kindSuffixes = map[EndpointKind]string{
	KindBalances:     "/balances/USD",
	KindCollectibles: "/collectibles",
	KindQueued:       "/transactions/queued",
	KindHistory:      "/transactions/history",
}

func (k EndpointKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Suffix is the path appended to /v1/safes/{safe}.
func (k EndpointKind) Suffix() string { return kindSuffixes[k] }

// Path returns the gateway path for the given safe, e.g. /v1/safes/0xA/collectibles.
func (k EndpointKind) Path(safe string) string {
	return "/v1/safes/" + safe + k.Suffix()
}

// URL joins base and Path. base must not end with a slash.
func (k EndpointKind) URL(base string, safe Safe) string {
	return base + k.Path(string(safe))
}

func (k EndpointKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown endpoint kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *EndpointKind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseKind(s string) (EndpointKind, error) {
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown endpoint kind %q", s)
}

// SweepResult is the outcome of one warm-up request.
type SweepResult struct {
	Safe       Safe         `json:"safe"`
	Kind       EndpointKind `json:"kind"`
	URL        string       `json:"url"`
	HTTPStatus int          `json:"http_status,omitempty"`
	LatencyMS  float64      `json:"latency_ms"`
	Reason     string       `json:"reason,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
}
