package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apierrors "github.com/taskdesk/taskdesk-api/internal/errors"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer in front of the
	// router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated requests into notification subscribers.
type WSHandler struct {
	hub *services.Hub
}

func NewWSHandler(hub *services.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Subscribe upgrades the connection and attaches it to the hub.
func (h *WSHandler) Subscribe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &services.HubClient{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 32),
		UserID: userID,
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
