package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mizuhara-san/city-ai/internal/models"
)

const ticketCacheTTL = 30 * time.Second

// Cached layers a Redis read-through cache over a Store for the public
// status-lookup path. Cache trouble degrades to the inner store; it never
// fails a request.
type Cached struct {
	Store
	Client *redis.Client
	Logger zerolog.Logger
}

func NewCached(inner Store, addr, password string, logger zerolog.Logger) *Cached {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Msg("unable to reach redis")
	} else {
		logger.Info().Msg("connected to redis")
	}
	return &Cached{Store: inner, Client: client, Logger: logger}
}

func ticketCacheKey(ticketID string) string {
	return "ticket:" + ticketID
}

func (c *Cached) GetTicketByPublicID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	key := ticketCacheKey(ticketID)
	if raw, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var t models.Ticket
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
		_ = c.Client.Del(ctx, key).Err()
	}

	t, err := c.Store.GetTicketByPublicID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(t); err == nil {
		if err := c.Client.Set(ctx, key, b, ticketCacheTTL).Err(); err != nil {
			c.Logger.Debug().Err(err).Str("ticket_id", ticketID).Msg("cache set failed")
		}
	}
	return t, nil
}

func (c *Cached) UpdateTicket(ctx context.Context, ticketID string, status models.TicketStatus, assignedTeam *string) error {
	if err := c.Store.UpdateTicket(ctx, ticketID, status, assignedTeam); err != nil {
		return err
	}
	if err := c.Client.Del(ctx, ticketCacheKey(ticketID)).Err(); err != nil {
		c.Logger.Debug().Err(err).Str("ticket_id", ticketID).Msg("cache invalidation failed")
	}
	return nil
}

func (c *Cached) Close() {
	_ = c.Client.Close()
	c.Store.Close()
}
