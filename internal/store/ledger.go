package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flatchat/backend/internal/logging"
	"github.com/flatchat/backend/internal/models"
)

// fallbackChatName is used when a friend chat is created without a name or
// an initial message to derive one from.
const fallbackChatName = "Friend Chat"

// UserLookup is the slice of the registry the ledger needs to validate
// message senders and recipients.
type UserLookup interface {
	HasUsername(ctx context.Context, username string) (bool, error)
}

// AttachmentDirs manages the per-conversation upload directories whose
// lifecycle is tied to conversation lifecycle.
type AttachmentDirs interface {
	EnsureConversationDir(conversationID string) error
	RemoveConversationDir(conversationID string) error
}

// Ledger provides conversation and message operations over the single
// heterogeneous records collection. Records are append-only except for the
// bulk delete-by-conversation operation.
type Ledger struct {
	records *Collection[models.Record]
	users   UserLookup
	dirs    AttachmentDirs
	nowFunc func() time.Time
}

// NewLedger constructs a ledger over the records collection. The user lookup
// validates identifiers on message paths; dirs keeps attachment directories
// in step with conversation creation and deletion.
func NewLedger(records *Collection[models.Record], users UserLookup, dirs AttachmentDirs) *Ledger {
	return &Ledger{records: records, users: users, dirs: dirs}
}

// WithNowFunc overrides the timestamp source, for tests.
func (l *Ledger) WithNowFunc(now func() time.Time) *Ledger {
	l.nowFunc = now
	return l
}

func (l *Ledger) now() time.Time {
	if l.nowFunc != nil {
		return l.nowFunc()
	}
	return time.Now().UTC()
}

// PostMessage appends a text message to a conversation and returns the
// created record.
func (l *Ledger) PostMessage(ctx context.Context, fromUsername, conversationID, text string) (models.Record, error) {
	if fromUsername == "" || conversationID == "" || text == "" {
		return models.Record{}, fmt.Errorf("%w: fromUsername, conversationId and message are required", ErrInvalid)
	}

	record := models.Record{
		ID:             uuid.NewString(),
		Type:           string(models.KindMessage),
		FromUsername:   fromUsername,
		ConversationID: conversationID,
		Message:        text,
		Timestamp:      l.now(),
	}
	if err := l.append(ctx, record); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// PostFileMessage records an uploaded file as a message. storedPath is the
// file's relative location inside the attachment tree and must already be
// written; both usernames are validated against the registry.
func (l *Ledger) PostFileMessage(ctx context.Context, conversationID, fromUsername, toUsername, storedPath string) (models.Record, error) {
	if conversationID == "" {
		return models.Record{}, fmt.Errorf("%w: conversationId is required", ErrInvalid)
	}
	for _, username := range []string{fromUsername, toUsername} {
		ok, err := l.users.HasUsername(ctx, username)
		if err != nil {
			return models.Record{}, err
		}
		if !ok {
			return models.Record{}, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
	}
	if storedPath == "" {
		return models.Record{}, fmt.Errorf("%w: no file uploaded", ErrInvalid)
	}

	record := models.Record{
		ID:             uuid.NewString(),
		Type:           string(models.KindFile),
		FromUsername:   fromUsername,
		ToUsername:     toUsername,
		ConversationID: conversationID,
		FileURL:        storedPath,
		Timestamp:      l.now(),
	}
	if err := l.append(ctx, record); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// CreateBroadcastChat creates a public conversation visible to every user.
// The descriptor's id doubles as the conversation id.
func (l *Ledger) CreateBroadcastChat(ctx context.Context, conversationName string) (models.Record, error) {
	if conversationName == "" {
		return models.Record{}, fmt.Errorf("%w: conversation name is required", ErrInvalid)
	}

	record := models.Record{
		ID:               uuid.NewString(),
		Type:             string(models.KindChat),
		ConversationName: conversationName,
		Timestamp:        l.now(),
	}
	if err := l.dirs.EnsureConversationDir(record.ID); err != nil {
		return models.Record{}, err
	}
	if err := l.append(ctx, record); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// CreateFriendChat creates a two-participant conversation. When no name is
// given it defaults to the first two words of the initial message, or to a
// fixed label when there is no message either.
func (l *Ledger) CreateFriendChat(ctx context.Context, fromUserID, toUserID, initialMessage, conversationName string) (models.Record, error) {
	if fromUserID == "" || toUserID == "" {
		return models.Record{}, fmt.Errorf("%w: both fromUserId and toUserId are required", ErrInvalid)
	}

	name := conversationName
	if name == "" {
		if words := strings.Fields(initialMessage); len(words) > 0 {
			name = strings.Join(words[:min(2, len(words))], " ")
		} else {
			name = fallbackChatName
		}
	}

	record := models.Record{
		ID:               uuid.NewString(),
		Type:             string(models.KindFriendChat),
		ConversationName: name,
		Creator:          fromUserID,
		Participants:     []string{fromUserID, toUserID},
		Timestamp:        l.now(),
	}
	if err := l.dirs.EnsureConversationDir(record.ID); err != nil {
		return models.Record{}, err
	}
	if err := l.append(ctx, record); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// DeleteConversation removes the conversation's descriptor and every message
// belonging to it, then removes its attachment directory. Directory removal
// is best-effort: a failure after the ledger rewrite leaves an orphaned
// directory, not an inconsistent ledger.
func (l *Ledger) DeleteConversation(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return fmt.Errorf("%w: conversationId is required", ErrInvalid)
	}

	err := l.records.Update(ctx, func(records []models.Record) ([]models.Record, bool, error) {
		kept := slices.DeleteFunc(records, func(r models.Record) bool {
			return r.InConversation(conversationID)
		})
		return kept, true, nil
	})
	if err != nil {
		return err
	}

	if err := l.dirs.RemoveConversationDir(conversationID); err != nil {
		logging.FromContext(ctx).Warn("failed to remove conversation uploads",
			"conversationId", conversationID, "error", err)
	}
	return nil
}

// ListConversationMessages returns every record belonging to the
// conversation, including its descriptor, so a freshly created conversation
// yields at least one record.
func (l *Ledger) ListConversationMessages(ctx context.Context, conversationID string) ([]models.Record, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversationId is required", ErrInvalid)
	}

	records, err := l.records.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Record{}
	for _, r := range records {
		if r.InConversation(conversationID) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListUserConversations returns the conversations visible to a user, split
// into those the user created and the remainder. Broadcast chats are visible
// to everyone and, having no creator, always land in the joined bucket.
func (l *Ledger) ListUserConversations(ctx context.Context, userID string) (models.Conversations, error) {
	if userID == "" {
		return models.Conversations{}, fmt.Errorf("%w: userId is required", ErrInvalid)
	}

	records, err := l.records.Load(ctx)
	if err != nil {
		return models.Conversations{}, err
	}

	out := models.Conversations{YourChats: []models.Record{}, FriendChats: []models.Record{}}
	for _, r := range records {
		visible := slices.Contains(r.Participants, userID) ||
			r.Creator == userID ||
			r.Kind() == models.KindChat
		if !visible {
			continue
		}
		if r.Creator == userID {
			out.YourChats = append(out.YourChats, r)
		} else {
			out.FriendChats = append(out.FriendChats, r)
		}
	}
	return out, nil
}

func (l *Ledger) append(ctx context.Context, record models.Record) error {
	return l.records.Update(ctx, func(records []models.Record) ([]models.Record, bool, error) {
		return append(records, record), true, nil
	})
}
