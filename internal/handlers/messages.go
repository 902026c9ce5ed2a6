package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flatchat/backend/internal/logging"
)

// MessageHandler implements the text message endpoints.
type MessageHandler struct {
	Chats ChatStore
}

// Post handles POST /message and returns the created record.
func (h MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "message services unavailable"})
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid message payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	message, err := h.Chats.PostMessage(ctx, req.FromUsername, req.ConversationID, req.Message)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, message)
}

// List handles GET /messages?conversationId=, returning every record in the
// conversation including its descriptor.
func (h MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "message services unavailable"})
		return
	}

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "conversationId query parameter required"})
		return
	}

	messages, err := h.Chats.ListConversationMessages(ctx, conversationID)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, messages)
}

type postMessageRequest struct {
	FromUsername   string `json:"fromUsername"`
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}
