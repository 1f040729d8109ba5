package models

import (
	"strings"
	"time"
)

// TicketStatus is the department-facing lifecycle state of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Progress maps a status to the completion percentage shown to citizens.
func (s TicketStatus) Progress() int {
	switch s {
	case StatusInProgress:
		return 60
	case StatusResolved:
		return 100
	default:
		return 0
	}
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Categories a complaint can be classified into.
var Categories = []string{
	"Waste Management",
	"Roads & Potholes",
	"Streetlights",
	"Water Supply",
	"Animal Deaths",
	"Accidents",
	"Road Blockage",
}

// Teams the department dispatches to.
var Teams = []string{
	"Road Crew",
	"Waste Team",
	"Electrical Team",
	"Animal Control",
	"Traffic Police",
}

// NormalizeCategory matches raw classifier output against the category
// enumeration, case-insensitively. Returns false for anything outside it.
func NormalizeCategory(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(v, c) {
			return c, true
		}
	}
	return "", false
}

func NormalizePriority(raw string) (Priority, bool) {
	v := strings.TrimSpace(raw)
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(v, string(p)) {
			return p, true
		}
	}
	return "", false
}

func ValidTeam(name string) bool {
	for _, t := range Teams {
		if t == name {
			return true
		}
	}
	return false
}

// Complaint is a raw citizen submission before structuring. It lives only
// for the duration of the request that carries it.
type Complaint struct {
	Message   string
	Photo     []byte
	PhotoMIME string
	Lat       *float64
	Lng       *float64
	City      string
	State     string
	UserID    string
}

// Classification is the structured triage produced for one complaint,
// either by the classifier or by the fallback policy, never both.
type Classification struct {
	Thinking []string `json:"thinking"`
	Category string   `json:"category"`
	Location string   `json:"location"`
	Priority string   `json:"priority"`
	Summary  string   `json:"summary"`
}

// Ticket is the persisted record derived from a Complaint. TicketID is
// assigned exactly once at creation; only Status and AssignedTeam are
// mutable afterwards.
type Ticket struct {
	ID             string       `json:"id"`
	TicketID       string       `json:"ticket_id"`
	CitizenMessage string       `json:"citizen_message"`
	Category       string       `json:"category"`
	Location       string       `json:"location"`
	Priority       string       `json:"priority"`
	Status         TicketStatus `json:"status"`
	AssignedTeam   *string      `json:"assigned_team"`
	PhotoB64       *string      `json:"photo_b64,omitempty"`
	PhotoMIME      *string      `json:"photo_mime,omitempty"`
	PhotoAnalysis  *string      `json:"photo_analysis,omitempty"`
	Lat            *float64     `json:"lat,omitempty"`
	Lng            *float64     `json:"lng,omitempty"`
	UserID         *string      `json:"user_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
