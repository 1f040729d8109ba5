package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mizuhara-san/city-ai/internal/db"
	"github.com/mizuhara-san/city-ai/internal/models"
	"github.com/mizuhara-san/city-ai/internal/service"
)

type Handler struct {
	Store     db.Store
	Pipeline  *service.Pipeline
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

// UserIDHeader carries the optional authenticated submitter reference. The
// value is taken as-is; verifying it belongs to the auth boundary, which
// is out of scope here.
const UserIDHeader = "X-User-Id"

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Ticket store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Submit a complaint
// @Description Classifies a citizen complaint (optionally with a photo) and creates a ticket
// @Tags complaints
// @Accept multipart/form-data
// @Produce json
// @Param complaint formData string true "Complaint text"
// @Param photo formData file false "Photo evidence"
// @Param lat formData number false "Latitude"
// @Param lng formData number false "Longitude"
// @Param city formData string false "City"
// @Param state formData string false "State"
// @Success 200 {object} service.SubmissionResult
// @Failure 400 {object} map[string]any
// @Router /api/complaints [post]
func (h *Handler) SubmitComplaint(c *gin.Context) {
	complaint := models.Complaint{
		Message: c.PostForm("complaint"),
		City:    c.PostForm("city"),
		State:   c.PostForm("state"),
		UserID:  c.GetHeader(UserIDHeader),
	}
	complaint.Lat = parseCoord(c.PostForm("lat"))
	complaint.Lng = parseCoord(c.PostForm("lng"))

	if file, err := c.FormFile("photo"); err == nil {
		f, err := file.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read photo", err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read photo", err.Error())
			return
		}
		complaint.Photo = data
		complaint.PhotoMIME = file.Header.Get("Content-Type")
		if complaint.PhotoMIME == "" {
			complaint.PhotoMIME = "image/jpeg"
		}
	}

	result, err := h.Pipeline.Process(c.Request.Context(), complaint)
	if err != nil {
		if errors.Is(err, service.ErrEmptyComplaint) {
			writeError(c, http.StatusBadRequest, "EMPTY_COMPLAINT", "Please enter a complaint", nil)
			return
		}
		// Persistence failed; the result carries the ERROR identifier and
		// the trace collected so far.
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Ticket status lookup
// @Tags tickets
// @Produce json
// @Param ticketId query string true "Public ticket identifier, e.g. TKT-0001"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/ticket-status [get]
func (h *Handler) TicketStatus(c *gin.Context) {
	ticketID := strings.TrimSpace(c.Query("ticketId"))
	if ticketID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "ticketId is required", nil)
		return
	}

	ticket, err := h.Store.GetTicketByPublicID(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, ticketResponse(*ticket))
}

type UpdateTicketRequest struct {
	TicketID     string `json:"ticket_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	AssignedTeam string `json:"assigned_team"`
}

// @Summary Update ticket status and team
// @Description Department-side mutation; only status and assigned_team change
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body UpdateTicketRequest true "Update payload"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/update-ticket [post]
func (h *Handler) UpdateTicket(c *gin.Context) {
	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	status := models.TicketStatus(req.Status)
	if !status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be Open, In Progress, or Resolved", nil)
		return
	}

	var team *string
	if req.AssignedTeam != "" {
		if !models.ValidTeam(req.AssignedTeam) {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown team", req.AssignedTeam)
			return
		}
		team = &req.AssignedTeam
	}

	if err := h.Store.UpdateTicket(c.Request.Context(), req.TicketID, status, team); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ticket_id": req.TicketID, "progress": status.Progress()})
}

// @Summary List all tickets
// @Tags tickets
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	tickets, err := h.Store.ListTickets(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ticketResponses(tickets)})
}

// @Summary List the caller's tickets
// @Tags tickets
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/my-complaints [get]
func (h *Handler) MyComplaints(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if userID == "" {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required", nil)
		return
	}
	tickets, err := h.Store.ListTicketsByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ticketResponses(tickets)})
}

func ticketResponse(t models.Ticket) gin.H {
	return gin.H{
		"ticket":   t,
		"progress": t.Status.Progress(),
	}
}

func ticketResponses(tickets []models.Ticket) []gin.H {
	out := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketResponse(t))
	}
	return out
}

func parseCoord(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
