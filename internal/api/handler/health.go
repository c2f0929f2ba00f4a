package handler

import (
	"net/http"

	"github.com/mcoot/cutgame/internal/api/response"
	"github.com/mcoot/cutgame/internal/realtime"
	"github.com/mcoot/cutgame/internal/services/registry"
)

// HealthHandler reports liveness along with basic load figures
type HealthHandler struct {
	registry *registry.Registry
	hubs     *realtime.HubManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *registry.Registry, hubs *realtime.HubManager) *HealthHandler {
	return &HealthHandler{registry: registry, hubs: hubs}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Rooms:       len(h.registry.ListRooms()),
		Connections: h.hubs.ConnectedCount(),
	})
}
