// Package handlers provides HTTP API request handlers.
package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sculpture-guide/backend/internal/realtime"
	"github.com/sculpture-guide/backend/internal/repository"
	"github.com/sculpture-guide/backend/internal/session"
	"github.com/sculpture-guide/backend/internal/store"
	"github.com/sculpture-guide/backend/internal/ws"
)

// VoiceHandler accepts client WebSocket connections and runs one session
// coordinator per connection.
type VoiceHandler struct {
	store       *store.Store
	repo        *repository.SessionRepository
	registry    *session.Registry
	realtimeCfg realtime.Config
	sessionCfg  session.Config
}

// NewVoiceHandler creates a new VoiceHandler. repo may be nil to disable
// session records.
func NewVoiceHandler(st *store.Store, repo *repository.SessionRepository, registry *session.Registry, realtimeCfg realtime.Config, sessionCfg session.Config) *VoiceHandler {
	return &VoiceHandler{
		store:       st,
		repo:        repo,
		registry:    registry,
		realtimeCfg: realtimeCfg,
		sessionCfg:  sessionCfg,
	}
}

// Connect handles GET /api/voice. It opens the remote conversation first so
// a failure can still be reported over plain HTTP, then upgrades and runs
// the coordinator for the life of the connection.
func (h *VoiceHandler) Connect(c *gin.Context) {
	ctx := context.Background()

	convo, err := realtime.Dial(ctx, h.realtimeCfg)
	if err != nil {
		log.Printf("voice: failed to open remote session: %v", err)
		sendError(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Failed to reach the conversation service")
		return
	}

	conn, err := ws.Upgrade(c.Writer, c.Request)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		convo.Close()
		return
	}
	conn.Start()

	id := uuid.New().String()
	coord := session.New(id, conn, convo, h.store, h.repo, h.sessionCfg)

	h.registry.Add(coord)
	defer h.registry.Remove(id)

	log.Printf("session %s: client connected", id)
	coord.Run(ctx)
}

// RegisterRoutes registers the voice route on a Gin router group.
func (h *VoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/voice", h.Connect)
}
