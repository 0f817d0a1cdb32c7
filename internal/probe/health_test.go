package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	cases := []struct {
		status int
		ok     bool
	}{
		{200, true},
		{204, false},
		{301, false},
		{503, false},
	}
	for _, c := range cases {
		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.status == 301 {
				// not followed into a 200 elsewhere
				w.Header().Set("Location", "http://127.0.0.1:1/")
			}
			w.WriteHeader(c.status)
		}))
		err := Gate(context.Background(), NewFastFetcher(time.Second), s.URL+"/about")
		s.Close()
		if c.ok && err != nil {
			t.Fatalf("status %d: want pass, got %v", c.status, err)
		}
		if !c.ok && !errors.Is(err, ErrUnhealthy) {
			t.Fatalf("status %d: want ErrUnhealthy, got %v", c.status, err)
		}
	}
}

func TestGate_ConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	addr := s.URL
	s.Close()

	err := Gate(context.Background(), NewHTTPFetcher(time.Second), addr+"/about")
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("want ErrUnhealthy, got %v", err)
	}
}
