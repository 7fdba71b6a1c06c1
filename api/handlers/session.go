// Package handlers provides HTTP API request handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/repository"
)

// SessionHandler serves past session records.
type SessionHandler struct {
	repo *repository.SessionRepository
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(repo *repository.SessionRepository) *SessionHandler {
	return &SessionHandler{repo: repo}
}

// SessionResponse represents a session record in API responses.
type SessionResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	Voice      string `json:"voice,omitempty"`
	Status     string `json:"status"`
	FramesIn   int64  `json:"framesIn"`
	FramesOut  int64  `json:"framesOut"`
	AudioBytes int64  `json:"audioBytes"`
	Duration   string `json:"duration"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toSessionResponse converts a model.SessionRecord to SessionResponse.
func toSessionResponse(r *model.SessionRecord) *SessionResponse {
	return &SessionResponse{
		ID:         r.ID,
		Model:      r.Model,
		Voice:      r.Voice,
		Status:     string(r.Status),
		FramesIn:   r.FramesIn,
		FramesOut:  r.FramesOut,
		AudioBytes: r.AudioBytes,
		Duration:   r.Duration().Round(time.Second).String(),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}

// sendError sends an error response with the appropriate status code.
func sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// List handles GET /api/sessions - lists recent session records.
func (h *SessionHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions: "+err.Error())
		return
	}

	out := make([]*SessionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toSessionResponse(rec))
	}

	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// Get handles GET /api/sessions/:id - fetches one session record.
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+id+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get session: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(rec))
}

// RegisterRoutes registers the session handler routes on a Gin router group.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions", h.List)
	rg.GET("/sessions/:id", h.Get)
}
