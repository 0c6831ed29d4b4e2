package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"vendora/config"
	"vendora/internal/auth"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeChatWS upgrades to WebSocket for live messaging; query: token,
// chat_id. The caller must be a participant of that chat thread. Browsers
// cannot set Authorization headers on WS dials, hence the query token.
func UpgradeChatWS(cfg *config.JWTConfig, chatHub *ws.ChatHub, chats *repository.ChatRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		chatIDStr := c.Query("chat_id")
		if token == "" || chatIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and chat_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		chatID, err := strconv.ParseUint(chatIDStr, 10, 64)
		if err != nil || chatID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
			return
		}
		chat, err := chats.GetByID(uint(chatID))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		if !chat.HasParticipant(claims.UserID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := ws.NewClient(claims.UserID)
		room := chatHub.GetOrCreateRoom(chat.ID)
		room.Join(client)
		defer func() {
			room.Leave(client)
			client.Close()
		}()
		conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(chatPongWait))
			return nil
		})
		go func() {
			ticker := time.NewTicker(chatPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg struct {
				Type string `json:"type"`
				Body string `json:"body"`
			}
			if json.Unmarshal(raw, &msg) != nil || msg.Type != "message" || msg.Body == "" {
				continue
			}
			m := &models.Message{
				ChatID:   chat.ID,
				SenderID: claims.UserID,
				Body:     msg.Body,
			}
			if err := chats.CreateMessage(m); err != nil {
				continue
			}
			room.Broadcast(client, map[string]interface{}{
				"type":       "message",
				"id":         m.ID,
				"chat_id":    m.ChatID,
				"sender_id":  m.SenderID,
				"body":       m.Body,
				"created_at": m.CreatedAt,
			})
		}
	}
}
