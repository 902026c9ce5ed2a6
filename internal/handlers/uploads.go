package handlers

import (
	"net/http"

	"github.com/flatchat/backend/internal/logging"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory.
const maxUploadMemory = 32 << 20

// UploadHandler implements the multipart upload endpoints: conversation file
// attachments and profile images.
type UploadHandler struct {
	Files FileStore
	Chats ChatStore
	Users UserStore
}

// File handles POST /upload. The payload is stored under the conversation's
// attachment directory first and then recorded as a file message; an invalid
// sender or recipient therefore fails the request but leaves the stored file
// behind, matching the upload-then-validate order of the endpoint.
func (h UploadHandler) File(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Files == nil || h.Chats == nil {
		logger.Error("upload dependencies unavailable", "hasFiles", h.Files != nil, "hasChats", h.Chats != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload services unavailable"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid multipart payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	conversationID := r.FormValue("conversationId")
	if conversationID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "no conversation ID provided"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	storedPath, err := h.Files.SaveConversationFile(conversationID, header.Filename, file)
	if err != nil {
		logger.Error("store uploaded file", "conversationId", conversationID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
		return
	}

	record, err := h.Chats.PostFileMessage(ctx, conversationID, r.FormValue("fromUsername"), r.FormValue("toUsername"), storedPath)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, record)
}

// ProfileImage handles POST /update-profile-image. Exactly one profile image
// exists per user at a time; a new upload with the same extension replaces
// the previous one.
func (h UploadHandler) ProfileImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Files == nil || h.Users == nil {
		logger.Error("upload dependencies unavailable", "hasFiles", h.Files != nil, "hasUsers", h.Users != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload services unavailable"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid multipart payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	userID := r.FormValue("userId")
	file, header, err := r.FormFile("profileImage")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "missing user ID or file"})
		return
	}
	defer file.Close()

	if userID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "missing user ID or file"})
		return
	}

	storedPath, err := h.Files.SaveProfileImage(userID, header.Filename, file)
	if err != nil {
		logger.Error("store profile image", "userId", userID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
		return
	}

	path, err := h.Users.UpdateProfileImage(ctx, userID, storedPath)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"profileImage": path})
}
