package handlers

import (
	"context"
	"io"

	"github.com/flatchat/backend/internal/models"
)

// UserStore captures the account and friendship operations required by the
// auth and friend handlers.
type UserStore interface {
	Signup(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	SendFriendRequest(ctx context.Context, fromUsername, toUsername string) error
	ListFriends(ctx context.Context, username string) ([]models.FriendView, error)
	UpdateProfileImage(ctx context.Context, userID, storedPath string) (string, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// ChatStore captures the conversation and message operations required by the
// chat, message and upload handlers.
type ChatStore interface {
	PostMessage(ctx context.Context, fromUsername, conversationID, text string) (models.Record, error)
	PostFileMessage(ctx context.Context, conversationID, fromUsername, toUsername, storedPath string) (models.Record, error)
	CreateBroadcastChat(ctx context.Context, conversationName string) (models.Record, error)
	CreateFriendChat(ctx context.Context, fromUserID, toUserID, initialMessage, conversationName string) (models.Record, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	ListConversationMessages(ctx context.Context, conversationID string) ([]models.Record, error)
	ListUserConversations(ctx context.Context, userID string) (models.Conversations, error)
}

// FileStore places uploaded payloads into the attachment tree and returns
// the stored relative path.
type FileStore interface {
	SaveConversationFile(conversationID, originalName string, r io.Reader) (string, error)
	SaveProfileImage(userID, originalName string, r io.Reader) (string, error)
}
