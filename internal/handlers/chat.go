package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortkat/internal/chat"
	"shortkat/internal/observability"
	"shortkat/internal/telemetry"
	"shortkat/internal/ws"
)

// ChatHandler manages direct messaging endpoints.
type ChatHandler struct {
	chatSvc chat.Service
	hub     *ws.Hub
	emitter *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatSvc chat.Service, hub *ws.Hub, emitter *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, hub: hub, emitter: emitter}
}

// SendMessage stores a message, advances the streak and broadcasts the
// result to the chat's websocket room.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		RecipientID string `json:"recipientId" binding:"required"`
		Text        string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, current, err := h.chatSvc.SendMessage(c.Request.Context(), userID, req.RecipientID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSelfMessage), errors.Is(err, chat.ErrEmptyText):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, chat.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
		default:
			logInternal(c, "send message failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	observability.IncMessageSent()
	if h.hub != nil {
		h.hub.BroadcastChatMessage(message.ChatID, message, current)
	}
	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("message sent chat_id=%s streak=%d", message.ChatID, current.Count),
		requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// ListMessages returns the full history of the chat with :userId plus the
// current streak.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := c.GetString("userID")
	otherUserID := c.Param("userId")
	if otherUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
		return
	}

	messages, current, err := h.chatSvc.ListMessages(c.Request.Context(), userID, otherUserID)
	if err != nil {
		logInternal(c, "list messages failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "streak": current})
}

// ListChats returns the chat summaries visible to the authenticated user,
// newest activity first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetString("userID")

	chats, err := h.chatSvc.ListChats(c.Request.Context(), userID)
	if err != nil {
		logInternal(c, "list chats failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
