package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flatchat/backend/internal/logging"
)

// FriendHandler implements the friend request and listing endpoints.
type FriendHandler struct {
	Users UserStore
}

// Request handles POST /friend-request. Acceptance is immediate; both users'
// friend lists are updated in one write.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	var req friendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend-request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FromUsername == "" || req.ToUsername == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "fromUsername and toUsername are required"})
		return
	}

	if err := h.Users.SendFriendRequest(ctx, req.FromUsername, req.ToUsername); err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "friend request accepted"})
}

// List handles GET /friends?username=.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username query parameter required"})
		return
	}

	friends, err := h.Users.ListFriends(ctx, username)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, friends)
}

type friendRequest struct {
	FromUsername string `json:"fromUsername"`
	ToUsername   string `json:"toUsername"`
}
