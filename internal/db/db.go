package db

import (
	"context"
	"errors"

	"github.com/mizuhara-san/city-ai/internal/models"
)

// ErrNotFound is returned for lookups and updates addressing an unknown
// public ticket identifier.
var ErrNotFound = errors.New("ticket not found")

// Store persists tickets. CreateTicket allocates the public identifier
// atomically with the insert: callers never observe a ticket without one,
// and two concurrent creates never share one. UpdateTicket touches only
// status and assigned_team.
type Store interface {
	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicketByPublicID(ctx context.Context, ticketID string) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticketID string, status models.TicketStatus, assignedTeam *string) error
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	Ping(ctx context.Context) error
	Close()
}
