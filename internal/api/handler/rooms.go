package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cutgame/internal/api/response"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/realtime"
	"github.com/mcoot/cutgame/internal/services/registry"
)

// RoomHandler handles the read side of live rooms
type RoomHandler struct {
	registry *registry.Registry
	gateway  *realtime.Gateway
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *registry.Registry, gateway *realtime.Gateway) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		gateway:  gateway,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RoomListFromModel(h.registry.ListRooms()))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.registry.Snapshot(code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(snapshot))
}

// History handles GET /api/v1/rooms/{code}/history
func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	rounds, err := h.registry.History(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFromModel(code, rounds))
}

// Events handles GET /api/v1/rooms/{code}/events
// Streams the room's broadcasts to a spectator over SSE
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.gateway.ServeSSE(w, r, code); err != nil {
		WriteError(w, err)
	}
}

// roomCode extracts and validates the {code} path variable
func roomCode(r *http.Request) (model.RoomCode, error) {
	raw := mux.Vars(r)["code"]
	if len(raw) != 4 {
		return "", NewInvalidRequestError("room code must be 4 digits")
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", NewInvalidRequestError("room code must be 4 digits")
		}
	}
	return model.RoomCode(raw), nil
}
