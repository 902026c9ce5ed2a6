package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flatchat/backend/internal/logging"
)

// ChatHandler implements conversation lifecycle and listing endpoints.
type ChatHandler struct {
	Chats ChatStore
}

// Create handles POST /new-chat, creating a broadcast conversation.
func (h ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat services unavailable"})
		return
	}

	var req newChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid new-chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	chat, err := h.Chats.CreateBroadcastChat(ctx, req.ConversationName)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, newChatResponse{
		ConversationID:   chat.ID,
		ConversationName: chat.ConversationName,
	})
}

// CreateFriendChat handles POST /create-friend-chat.
func (h ChatHandler) CreateFriendChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat services unavailable"})
		return
	}

	var req friendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create-friend-chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	chat, err := h.Chats.CreateFriendChat(ctx, req.FromUserID, req.ToUserID, req.InitialMessage, req.ConversationName)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, chat)
}

// Delete handles DELETE /delete-chat, removing the conversation's records
// and its attachment directory.
func (h ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat services unavailable"})
		return
	}

	var req deleteChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid delete-chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.Chats.DeleteConversation(ctx, req.ConversationID); err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "chat deleted"})
}

// ListForUser handles GET /user-chats?userId=, returning the conversations
// visible to the user split into created and joined buckets.
func (h ChatHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Chats == nil {
		logger.Error("chat store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat services unavailable"})
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId query parameter required"})
		return
	}

	chats, err := h.Chats.ListUserConversations(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, chats)
}

type newChatRequest struct {
	ConversationName string `json:"conversationName"`
}

type newChatResponse struct {
	ConversationID   string `json:"conversationId"`
	ConversationName string `json:"conversationName"`
}

type friendChatRequest struct {
	FromUserID       string `json:"fromUserId"`
	ToUserID         string `json:"toUserId"`
	InitialMessage   string `json:"initialMessage"`
	ConversationName string `json:"conversationName"`
}

type deleteChatRequest struct {
	ConversationID string `json:"conversationId"`
}
