package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cutgame/internal/api/handler"
	"github.com/mcoot/cutgame/internal/api/middleware"
	"github.com/mcoot/cutgame/internal/realtime"
	"github.com/mcoot/cutgame/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Registry   *registry.Registry
	HubManager *realtime.HubManager
	Gateway    *realtime.Gateway
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Gateway)
	healthHandler := handler.NewHealthHandler(cfg.Registry, cfg.HubManager)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Room read side
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/history", roomHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	// Participant sessions
	api.HandleFunc("/ws", cfg.Gateway.ServeWS).Methods(http.MethodGet)

	return r
}
