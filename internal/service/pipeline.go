package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mizuhara-san/city-ai/internal/ai"
	"github.com/mizuhara-san/city-ai/internal/db"
	"github.com/mizuhara-san/city-ai/internal/models"
)

// ErrEmptyComplaint rejects blank submissions before any external call is
// made.
var ErrEmptyComplaint = errors.New("complaint text is empty")

// Pipeline turns a raw Complaint into a persisted Ticket: normalize,
// optional photo analysis, classification with fallback, identifier
// allocation, persistence. One Pipeline serves all requests; each call is
// an independent unit of work.
type Pipeline struct {
	Store  db.Store
	AI     ai.Client
	Logger zerolog.Logger
}

// SubmissionResult is what the citizen gets back, agent trace included.
type SubmissionResult struct {
	TicketID      string              `json:"ticket_id"`
	Category      string              `json:"category"`
	Location      string              `json:"location"`
	Priority      string              `json:"priority"`
	Summary       string              `json:"summary"`
	Status        models.TicketStatus `json:"status,omitempty"`
	PhotoAnalysis string              `json:"photo_analysis,omitempty"`
	AgentTrace    []string            `json:"agent_trace"`
}

// Process runs the full submission pipeline. Classifier and photo-analysis
// failures are recovered locally and noted in the trace; only a
// persistence failure makes the submission itself fail, in which case the
// returned result carries the "ERROR" identifier alongside the error.
func (p *Pipeline) Process(ctx context.Context, c models.Complaint) (SubmissionResult, error) {
	message := strings.TrimSpace(c.Message)
	if message == "" {
		return SubmissionResult{}, ErrEmptyComplaint
	}

	trace := []string{
		"AI agent activated",
		"Reading complaint: " + firstNChars(message, 100),
	}

	var photoAnalysis string
	var photoB64, photoMIME *string
	if len(c.Photo) > 0 {
		trace = append(trace, "Analyzing uploaded photo")
		analysis, ok := AnalyzePhoto(ctx, p.AI, c.Photo, c.PhotoMIME)
		photoAnalysis = analysis
		if ok {
			trace = append(trace, "Photo analysis complete")
			message = message + "\n\nAI Photo Analysis: " + analysis
		} else {
			trace = append(trace, "Photo analysis failed, continuing without it")
			p.Logger.Warn().Msg("photo analysis failed")
		}
		b64 := encodePhoto(c.Photo)
		photoB64 = &b64
		mime := c.PhotoMIME
		photoMIME = &mime
	}

	trace = append(trace, "Classifying complaint")
	cls, err := Classify(ctx, p.AI, message)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("classification failed, applying fallback")
		trace = append(trace, "Classifier response unclear, using safe defaults")
		cls = FallbackClassification(message)
	}
	trace = append(trace, cls.Thinking...)

	location := resolveLocation(cls.Location, c.City, c.State)

	ticket := models.Ticket{
		CitizenMessage: message,
		Category:       cls.Category,
		Location:       location,
		Priority:       cls.Priority,
		Status:         models.StatusOpen,
		PhotoB64:       photoB64,
		PhotoMIME:      photoMIME,
		Lat:            c.Lat,
		Lng:            c.Lng,
	}
	if photoAnalysis != "" {
		ticket.PhotoAnalysis = &photoAnalysis
	}
	if c.UserID != "" {
		uid := c.UserID
		ticket.UserID = &uid
	}

	trace = append(trace, "Saving ticket")
	if err := p.Store.CreateTicket(ctx, &ticket); err != nil {
		p.Logger.Error().Err(err).Msg("ticket save failed")
		trace = append(trace, "Ticket save failed: "+err.Error())
		return SubmissionResult{
			TicketID:   "ERROR",
			Category:   "Error",
			Location:   "Agent failed",
			Priority:   string(models.PriorityHigh),
			Summary:    "Please try again",
			AgentTrace: trace,
		}, fmt.Errorf("save ticket: %w", err)
	}
	trace = append(trace, "Ticket created: "+ticket.TicketID)

	p.Logger.Info().
		Str("ticket_id", ticket.TicketID).
		Str("category", ticket.Category).
		Str("priority", ticket.Priority).
		Msg("complaint processed")

	return SubmissionResult{
		TicketID:      ticket.TicketID,
		Category:      ticket.Category,
		Location:      ticket.Location,
		Priority:      ticket.Priority,
		Summary:       cls.Summary,
		Status:        ticket.Status,
		PhotoAnalysis: photoAnalysis,
		AgentTrace:    trace,
	}, nil
}

func encodePhoto(photo []byte) string {
	return base64.StdEncoding.EncodeToString(photo)
}

const noLocation = "No location mentioned"

// resolveLocation applies the location precedence: classifier result, else
// city/state from the form, else the fixed placeholder.
func resolveLocation(classified, city, state string) string {
	if classified != "" && !strings.EqualFold(classified, noLocation) {
		return classified
	}
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	case state != "":
		return state
	}
	return noLocation
}
