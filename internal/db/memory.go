package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mizuhara-san/city-ai/internal/models"
)

// Memory is an in-process ticket store used when no DATABASE_URL is
// configured and throughout tests. The mutex serializes identifier
// allocation with the insert, matching the durable store's guarantee.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[string]*models.Ticket
	order   []string
}

func NewMemory() *Memory {
	return &Memory{tickets: map[string]*models.Ticket{}}
}

func (m *Memory) CreateTicket(ctx context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t.ID = uuid.NewString()
	t.TicketID = fmt.Sprintf("TKT-%04d", m.nextID)
	t.CreatedAt = time.Now().UTC()

	stored := *t
	m.tickets[t.TicketID] = &stored
	m.order = append(m.order, t.TicketID)
	return nil
}

func (m *Memory) GetTicketByPublicID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *Memory) UpdateTicket(ctx context.Context, ticketID string, status models.TicketStatus, assignedTeam *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[ticketID]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	t.AssignedTeam = assignedTeam
	return nil
}

func (m *Memory) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Ticket, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.tickets[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TicketID > out[j].TicketID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	all, err := m.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Ticket
	for _, t := range all {
		if t.UserID != nil && *t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}
