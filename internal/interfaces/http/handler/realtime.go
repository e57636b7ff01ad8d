package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ConnectionServer runs one websocket connection for a user
type ConnectionServer interface {
	Serve(ctx context.Context, conn *websocket.Conn, userID uuid.UUID) error
}

// RealtimeHandler upgrades order-status subscriptions to websockets
type RealtimeHandler struct {
	BaseHandler
	hub      ConnectionServer
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler. Browser origins are
// checked against the CORS allow list; requests without an Origin header
// (native clients) are accepted.
func NewRealtimeHandler(hub ConnectionServer, cors middleware.CORSConfig) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || cors.OriginAllowed(origin)
			},
		},
	}
}

// Orders godoc
// @ID           subscribeOrderUpdates
// @Summary      Order status stream
// @Description  Websocket pushing order status changes for the signed-in user. Browsers pass the JWT as ?token=.
// @Tags         orders
// @Param        token query string false "JWT when the Authorization header cannot be set"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ws/orders [get]
func (h *RealtimeHandler) Orders(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.GetGinLogger(c).Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	if err := h.hub.Serve(c.Request.Context(), conn, userID); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetGinLogger(c).Warn("websocket closed", zap.Error(err))
	}
}
