package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hamed0406/safewarmer/internal/domain"
)

func TestMemoryStore_LatestPerSafeAndKind(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	rows := []*domain.SweepResult{
		{Safe: "0xA", Kind: domain.KindBalances, HTTPStatus: 500, CheckedAt: t0},
		{Safe: "0xA", Kind: domain.KindCollectibles, HTTPStatus: 200, CheckedAt: t0},
		{Safe: "0xB", Kind: domain.KindBalances, HTTPStatus: 200, CheckedAt: t0},
		{Safe: "0xA", Kind: domain.KindBalances, HTTPStatus: 200, CheckedAt: t0.Add(time.Minute)},
	}
	for _, r := range rows {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].Safe != "0xA" || got[0].Kind != domain.KindBalances || got[0].HTTPStatus != 200 {
		t.Fatalf("expected newest 0xA balances first, got %+v", got[0])
	}
	if got[2].Safe != "0xB" {
		t.Fatalf("expected first-seen order, got %+v", got)
	}
}

func TestMemoryStore_IgnoresOlderResult(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()

	_ = s.Append(ctx, &domain.SweepResult{Safe: "0xA", Kind: domain.KindQueued, HTTPStatus: 200, CheckedAt: now})
	_ = s.Append(ctx, &domain.SweepResult{Safe: "0xA", Kind: domain.KindQueued, HTTPStatus: 502, CheckedAt: now.Add(-time.Hour)})

	got, _ := s.Latest(ctx)
	if len(got) != 1 || got[0].HTTPStatus != 200 {
		t.Fatalf("older result should not replace newer one: %+v", got)
	}
}

func TestMemoryStore_StampsCheckedAt(t *testing.T) {
	r := &domain.SweepResult{Safe: "0xA", Kind: domain.KindHistory}
	if err := New().Append(context.Background(), r); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if r.CheckedAt.IsZero() {
		t.Fatalf("expected CheckedAt to be set")
	}
}
