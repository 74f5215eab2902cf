package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-storefront/chat"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/validation"
)

// ChatController serves the support chat widget
type ChatController struct {
	Common
	Sessions  repository.ChatSessions
	Assistant *chat.Assistant
}

// NewChatController creates a new ChatController. sessions may be nil, in
// which case every message is answered without history.
func NewChatController(common Common, sessions repository.ChatSessions, assistant *chat.Assistant) *ChatController {
	return &ChatController{Common: common, Sessions: sessions, Assistant: assistant}
}

// Chat answers one customer message
func (cc *ChatController) Chat(w http.ResponseWriter, r *http.Request) {
	var req validation.ChatRequest
	if !cc.decodeAndValidate(w, r, &req) {
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	message := strings.TrimSpace(req.Message)

	// model calls get more time than store calls
	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout+20*time.Second)
	defer cancel()

	var history []models.ChatMessage
	if cc.Sessions != nil {
		h, err := cc.Sessions.History(ctx, sessionID)
		if err != nil {
			cc.Logger.Warn("load chat history", zap.String("session", sessionID), zap.Error(err))
		}
		history = h
	}

	reply, provider := cc.Assistant.Reply(ctx, history, message)

	if cc.Sessions != nil {
		now := time.Now().UTC()
		err := cc.Sessions.Append(ctx, sessionID,
			models.ChatMessage{Role: models.ChatRoleUser, Content: message, At: now},
			models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, At: now},
		)
		if err != nil {
			cc.Logger.Warn("save chat history", zap.String("session", sessionID), zap.Error(err))
		}
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"reply":     reply,
		"sessionId": sessionID,
		"provider":  provider,
	})
}

// Health reports which responder is active
func (cc *ChatController) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{"provider": cc.Assistant.Provider()})
}
