package handler

import (
	"net/http"
	"strconv"

	"vendora/internal/middleware"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/internal/ws"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the HTTP side of messaging; threads themselves are
// provisioned by settlement, never by these endpoints.
type ChatHandler struct {
	chats *repository.ChatRepository
	hub   *ws.ChatHub
}

func NewChatHandler(chats *repository.ChatRepository, hub *ws.ChatHub) *ChatHandler {
	return &ChatHandler{chats: chats, hub: hub}
}

// chatView shapes a thread for the requesting user, exposing the peer
// instead of the raw low/high pair.
type chatView struct {
	ID          uint            `json:"id"`
	FileID      uint            `json:"file_id"`
	PeerID      uint            `json:"peer_id"`
	Peer        *models.User    `json:"peer,omitempty"`
	LastMessage *models.Message `json:"last_message,omitempty"`
	UpdatedAt   string          `json:"updated_at"`
}

func viewFor(chat *models.Chat, userID uint) chatView {
	v := chatView{
		ID:          chat.ID,
		FileID:      chat.FileID,
		PeerID:      chat.OtherParticipant(userID),
		LastMessage: chat.LastMessage,
		UpdatedAt:   chat.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if chat.UserLowID == v.PeerID {
		v.Peer = &chat.UserLow
	} else if chat.UserHighID == v.PeerID {
		v.Peer = &chat.UserHigh
	}
	return v
}

// GET /api/v1/chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chats, err := h.chats.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	views := make([]chatView, 0, len(chats))
	for i := range chats {
		views = append(views, viewFor(&chats[i], userID))
	}
	c.JSON(http.StatusOK, gin.H{"chats": views})
}

// loadMemberChat resolves :chatId and enforces that the caller is a
// participant. Non-members get 404, not 403, so thread IDs leak nothing.
func (h *ChatHandler) loadMemberChat(c *gin.Context) (*models.Chat, bool) {
	id, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return nil, false
	}
	chat, err := h.chats.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return nil, false
	}
	if !chat.HasParticipant(middleware.GetUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return nil, false
	}
	return chat, true
}

// GET /api/v1/chats/:chatId/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chat, ok := h.loadMemberChat(c)
	if !ok {
		return
	}
	page, limit := pagination(c)
	msgs, err := h.chats.ListMessages(chat.ID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID, "page": page, "limit": limit, "messages": msgs})
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=4000"`
}

// POST /api/v1/chats/:chatId/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	chat, ok := h.loadMemberChat(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: middleware.GetUserID(c),
		Body:     req.Body,
	}
	if err := h.chats.CreateMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
		return
	}
	h.hub.Notify(chat.ID, gin.H{"type": "message", "message": msg})
	c.JSON(http.StatusCreated, msg)
}

// POST /api/v1/chats/:chatId/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	chat, ok := h.loadMemberChat(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)
	if err := h.chats.MarkMessagesRead(chat.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.hub.Notify(chat.ID, gin.H{"type": "read", "chat_id": chat.ID, "reader_id": userID})
	c.JSON(http.StatusOK, gin.H{"message": "messages marked read"})
}
