package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizuhara-san/city-ai/internal/models"
)

const uniqueViolation = "23505"

// Postgres is the durable ticket store. Public identifiers come from the
// ticket_id_seq sequence consumed inside the insert statement, so the
// identifier and the row commit together.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const ticketColumns = `id, ticket_id, citizen_message, category, location, priority, status,
	assigned_team, photo_b64, photo_mime, photo_analysis, lat, lng, user_id, created_at`

func (s *Postgres) CreateTicket(ctx context.Context, t *models.Ticket) error {
	const query = `
		INSERT INTO tickets (ticket_id, citizen_message, category, location, priority, status,
			assigned_team, photo_b64, photo_mime, photo_analysis, lat, lng, user_id)
		VALUES ('TKT-' || lpad(nextval('ticket_id_seq')::text, 4, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, ticket_id, created_at`

	// nextval never hands out the same number twice, but the unique index
	// on ticket_id can still trip over rows seeded out of band. Retry a
	// few times with backoff instead of surfacing that to the caller.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := s.Pool.QueryRow(ctx, query,
			t.CitizenMessage, t.Category, t.Location, t.Priority, t.Status,
			t.AssignedTeam, t.PhotoB64, t.PhotoMIME, t.PhotoAnalysis, t.Lat, t.Lng, t.UserID,
		).Scan(&t.ID, &t.TicketID, &t.CreatedAt)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *Postgres) GetTicketByPublicID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = $1`, ticketID)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Postgres) UpdateTicket(ctx context.Context, ticketID string, status models.TicketStatus, assignedTeam *string) error {
	cmd, err := s.Pool.Exec(ctx,
		`UPDATE tickets SET status = $1, assigned_team = $2 WHERE ticket_id = $3`,
		status, assignedTeam, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *Postgres) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	var t models.Ticket
	if err := row.Scan(
		&t.ID, &t.TicketID, &t.CitizenMessage, &t.Category, &t.Location, &t.Priority, &t.Status,
		&t.AssignedTeam, &t.PhotoB64, &t.PhotoMIME, &t.PhotoAnalysis, &t.Lat, &t.Lng, &t.UserID, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTickets(rows pgx.Rows) ([]models.Ticket, error) {
	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
