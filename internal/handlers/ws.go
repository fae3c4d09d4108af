package handlers

import (
	"log"
	"net/http"

	"github.com/MikeGii/medunacy-sub000/internal/services"
	"github.com/MikeGii/medunacy-sub000/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub            *ws.Hub
	sessionService *services.SessionService
}

func NewWSHandler(hub *ws.Hub, sessionService *services.SessionService) *WSHandler {
	return &WSHandler{hub: hub, sessionService: sessionService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket godoc
// @Summary      WebSocket connection for session updates
// @Description  Receive answer_recorded, submitted and abandoned messages for one of your sessions. Pass the token as ?token=.
// @Tags         websocket
// @Param        id path string true "Session ID"
// @Param        token query string false "JWT when the Authorization header cannot be set"
// @Router       /ws/session/{id} [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), c.GetUint("user_id"), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !session.InProgress() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: msgStaleRequest, Code: "session_closed"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddConnection(sessionID, conn)
	defer h.hub.RemoveConnection(sessionID, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
