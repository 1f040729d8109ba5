package db

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mizuhara-san/city-ai/internal/models"
)

func newCachedStore(t *testing.T) (*Cached, *Memory) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	inner := NewMemory()
	cached := NewCached(inner, addr, os.Getenv("TEST_REDIS_PASSWORD"), zerolog.Nop())
	t.Cleanup(cached.Close)
	return cached, inner
}

func TestCachedReadThroughServesCachedCopy(t *testing.T) {
	cached, inner := newCachedStore(t)
	ctx := context.Background()

	ticket := newTicket("garbage pileup in Green Park")
	if err := cached.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cached.Client.Del(ctx, ticketCacheKey(ticket.TicketID)).Err(); err != nil {
		t.Fatalf("flush key: %v", err)
	}

	// First lookup primes the cache.
	got, err := cached.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusOpen {
		t.Fatalf("expected Open, got %s", got.Status)
	}

	// A write bypassing the cache must not show up while the entry lives.
	if err := inner.UpdateTicket(ctx, ticket.TicketID, models.StatusResolved, nil); err != nil {
		t.Fatalf("inner update: %v", err)
	}
	got, err = cached.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusOpen {
		t.Fatalf("expected cached Open, got %s", got.Status)
	}
}

func TestCachedUpdateInvalidatesStatusLookup(t *testing.T) {
	cached, _ := newCachedStore(t)
	ctx := context.Background()

	ticket := newTicket("streetlight out in Sector 12")
	if err := cached.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cached.Client.Del(ctx, ticketCacheKey(ticket.TicketID)).Err(); err != nil {
		t.Fatalf("flush key: %v", err)
	}

	if _, err := cached.GetTicketByPublicID(ctx, ticket.TicketID); err != nil {
		t.Fatalf("prime: %v", err)
	}

	team := "Electrical Team"
	if err := cached.UpdateTicket(ctx, ticket.TicketID, models.StatusResolved, &team); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := cached.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != models.StatusResolved || got.Status.Progress() != 100 {
		t.Fatalf("stale status after update: %s/%d", got.Status, got.Status.Progress())
	}
	if got.AssignedTeam == nil || *got.AssignedTeam != team {
		t.Fatalf("stale team after update: %v", got.AssignedTeam)
	}
}

func TestCachedDegradesWhenRedisUnreachable(t *testing.T) {
	inner := NewMemory()
	// Port 1 is never listening; every cache operation fails fast.
	cached := NewCached(inner, "127.0.0.1:1", "", zerolog.Nop())

	ctx := context.Background()
	ticket := newTicket("pothole on MG Road")
	if err := cached.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := cached.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get must fall through to the store: %v", err)
	}
	if got.TicketID != ticket.TicketID {
		t.Fatalf("unexpected ticket %+v", got)
	}

	if err := cached.UpdateTicket(ctx, ticket.TicketID, models.StatusInProgress, nil); err != nil {
		t.Fatalf("update must succeed without redis: %v", err)
	}
	got, err = cached.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Fatalf("expected In Progress, got %s", got.Status)
	}
}
