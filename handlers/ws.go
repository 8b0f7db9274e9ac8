package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"partypass-api/utils"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive tuned for cloud hosts that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("✅ Client connected: %v", userID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("🔌 Client disconnected: %v", userID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the connection. Browsers cannot set an Authorization
// header on websocket upgrades, so the JWT arrives as a query parameter.
// The identity travels as a per-session key; hub-level handlers are shared
// across all connections and must never capture request state.
func (h *WSHandler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid or expired token"})
		return
	}

	keys := map[string]interface{}{"user_id": claims.UserID}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastToUser pushes a change signal to every session of one user.
// Clients treat it as an invalidation hint and refetch; payload carries the
// changed entity when cheap to include.
func (h *WSHandler) BroadcastToUser(userID, updateType string, payload interface{}) {
	msg, err := json.Marshal(gin.H{"type": updateType, "payload": payload})
	if err != nil {
		log.Printf("⚠️ Failed to marshal ws message: %v", err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("user_id")
		return exists && id == userID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to user %s: %v", userID, err)
	}
}
