package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor-server/internal/core"
)

// RoomHandlers provides HTTP handlers for the room read endpoints.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{hub: hub, log: logger}
}

// RoomResponse represents a public room in API responses. The id is the
// owner identity, matching the socket protocol's listing payload.
type RoomResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListPublic returns the public-room snapshot.
// GET /api/rooms
func (h *RoomHandlers) ListPublic(c *gin.Context) {
	rooms, err := h.hub.PublicRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list public rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomResponse{Code: r.Code, Name: r.Name, ID: r.OwnerID})
	}
	c.JSON(http.StatusOK, out)
}
