package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ezchat/ezchat-server/internal/core"
	"github.com/ezchat/ezchat-server/internal/proto"
	"github.com/ezchat/ezchat-server/internal/store"
)

// PinHandlers provides the REST equivalent of the pin_message event.
type PinHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewPinHandlers creates a new pin handlers instance.
func NewPinHandlers(hub *core.Hub, logger *zerolog.Logger) *PinHandlers {
	return &PinHandlers{
		hub: hub,
		log: logger,
	}
}

// PinRequest represents the pin request body.
type PinRequest struct {
	MessageID string `json:"messageId" binding:"required"`
	IsPinned  bool   `json:"isPinned"`
}

// PinResponse represents the pin response body.
type PinResponse struct {
	Success bool                  `json:"success"`
	Message *proto.MessagePayload `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// PinMessage handles pin state changes over plain request/response.
// POST /message/pin
// It goes through the same hub path as the real-time event, so the
// message's room still receives a pin_update broadcast.
func (h *PinHandlers) PinMessage(c *gin.Context) {
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid pin request")
		c.JSON(http.StatusBadRequest, PinResponse{Success: false, Error: "invalid request body"})
		return
	}

	msg, err := h.hub.PinMessage(c.Request.Context(), req.MessageID, req.IsPinned)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, PinResponse{Success: false, Error: "message not found"})
			return
		}
		h.log.Error().Err(err).Str("message_id", req.MessageID).Msg("failed to update pin status")
		c.JSON(http.StatusInternalServerError, PinResponse{Success: false, Error: "internal server error"})
		return
	}

	payload := messagePayload(msg)
	c.JSON(http.StatusOK, PinResponse{Success: true, Message: &payload})
}
