package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// POST /api/v1/chat/send
func (ch *ChatHandler) Send(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := ch.chatService.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

// GET /api/v1/chat/sessions
func (ch *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessions, err := ch.chatService.Sessions(c.Request.Context(), userID, queryInt(c, "limit", 50))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/v1/chat/sessions/:sessionId
func (ch *ChatHandler) History(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", errors.New("missing session id"))
		return
	}
	messages, err := ch.chatService.History(c.Request.Context(), userID, sessionID, queryInt(c, "limit", 100))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

// DELETE /api/v1/chat/sessions/:sessionId
func (ch *ChatHandler) DeleteSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", errors.New("missing session id"))
		return
	}
	deleted, err := ch.chatService.DeleteSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": deleted})
}
