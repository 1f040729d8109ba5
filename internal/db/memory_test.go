package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mizuhara-san/city-ai/internal/models"
)

func newTicket(message string) *models.Ticket {
	return &models.Ticket{
		CitizenMessage: message,
		Category:       "Roads & Potholes",
		Location:       "No location mentioned",
		Priority:       "Medium",
		Status:         models.StatusOpen,
	}
}

func TestMemoryCreateAssignsSequentialIDs(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for i, want := range []string{"TKT-0001", "TKT-0002", "TKT-0003"} {
		ticket := newTicket(fmt.Sprintf("complaint %d", i))
		if err := store.CreateTicket(ctx, ticket); err != nil {
			t.Fatalf("create: %v", err)
		}
		if ticket.TicketID != want {
			t.Fatalf("expected %s, got %s", want, ticket.TicketID)
		}
		if ticket.ID == "" {
			t.Fatalf("expected internal id to be set")
		}
		if ticket.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be set")
		}
	}
}

func TestMemoryGetUnknownIDReturnsNotFound(t *testing.T) {
	store := NewMemory()
	if _, err := store.GetTicketByPublicID(context.Background(), "TKT-9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdateTouchesOnlyStatusAndTeam(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	ticket := newTicket("pothole on MG Road")
	if err := store.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}

	team := "Road Crew"
	if err := store.UpdateTicket(ctx, ticket.TicketID, models.StatusResolved, &team); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetTicketByPublicID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusResolved {
		t.Fatalf("expected Resolved, got %s", got.Status)
	}
	if got.Status.Progress() != 100 {
		t.Fatalf("expected progress 100, got %d", got.Status.Progress())
	}
	if got.AssignedTeam == nil || *got.AssignedTeam != "Road Crew" {
		t.Fatalf("expected assigned team, got %v", got.AssignedTeam)
	}
	if got.TicketID != ticket.TicketID || got.CitizenMessage != ticket.CitizenMessage ||
		got.Category != ticket.Category || got.Priority != ticket.Priority || !got.CreatedAt.Equal(ticket.CreatedAt) {
		t.Fatalf("update touched immutable fields: %+v", got)
	}
}

func TestMemoryUpdateUnknownIDReturnsNotFound(t *testing.T) {
	store := NewMemory()
	if err := store.UpdateTicket(context.Background(), "TKT-9999", models.StatusOpen, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryListOrdersByCreationDescending(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.CreateTicket(ctx, newTicket(fmt.Sprintf("complaint %d", i))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tickets, err := store.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(tickets))
	}
	for i := 1; i < len(tickets); i++ {
		if tickets[i].CreatedAt.After(tickets[i-1].CreatedAt) {
			t.Fatalf("tickets not in descending creation order")
		}
	}
}

func TestMemoryListByUser(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	uid := "user-1"
	mine := newTicket("my complaint")
	mine.UserID = &uid
	if err := store.CreateTicket(ctx, mine); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateTicket(ctx, newTicket("anonymous complaint")); err != nil {
		t.Fatalf("create: %v", err)
	}

	tickets, err := store.ListTicketsByUser(ctx, uid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 || tickets[0].TicketID != mine.TicketID {
		t.Fatalf("expected only the user's ticket, got %+v", tickets)
	}
}

func TestMemoryConcurrentAllocationIsUnique(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket := newTicket(fmt.Sprintf("complaint %d", i))
			if err := store.CreateTicket(ctx, ticket); err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			ids[i] = ticket.TicketID
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" {
			t.Fatalf("missing ticket id")
		}
		if seen[id] {
			t.Fatalf("duplicate ticket id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}
}
