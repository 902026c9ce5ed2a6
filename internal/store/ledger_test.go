package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/flatchat/backend/internal/models"
	"github.com/flatchat/backend/internal/uploads"
)

type ledgerFixture struct {
	ledger      *Ledger
	registry    *Registry
	uploadsRoot string
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	dir := t.TempDir()
	registry := NewRegistry(NewCollection[models.User](filepath.Join(dir, "users.json")))
	records := NewCollection[models.Record](filepath.Join(dir, "messages.json"))
	uploadsRoot := filepath.Join(dir, "uploads")
	files := uploads.NewManager(uploadsRoot, filepath.Join(dir, "user_account_images"))

	return &ledgerFixture{
		ledger:      NewLedger(records, registry, files),
		registry:    registry,
		uploadsRoot: uploadsRoot,
	}
}

func (f *ledgerFixture) signup(t *testing.T, username, password string) models.User {
	t.Helper()
	user, err := f.registry.Signup(context.Background(), username, password)
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return user
}

func TestPostMessage(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	msg, err := f.ledger.PostMessage(ctx, "alice", "conv-1", "hi")
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", msg)
	}
	if msg.Kind() != models.KindMessage {
		t.Fatalf("expected message kind, got %q", msg.Kind())
	}

	got, err := f.ledger.ListConversationMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("timestamp changed on round trip: %v vs %v", got[0].Timestamp, msg.Timestamp)
	}
	got[0].Timestamp, msg.Timestamp = time.Time{}, time.Time{}
	if got[0].ID != msg.ID || got[0].FromUsername != msg.FromUsername ||
		got[0].ConversationID != msg.ConversationID || got[0].Message != msg.Message || got[0].Type != msg.Type {
		t.Fatalf("round trip mismatch: %+v vs %+v", got[0], msg)
	}
}

func TestPostMessageValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		from string
		conv string
		text string
	}{
		{"missingFrom", "", "conv-1", "hi"},
		{"missingConversation", "alice", "", "hi"},
		{"missingText", "alice", "conv-1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.ledger.PostMessage(ctx, tc.from, tc.conv, tc.text); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestPostFileMessage(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	f.signup(t, "alice", "p1")
	f.signup(t, "bob", "p2")

	record, err := f.ledger.PostFileMessage(ctx, "conv-1", "alice", "bob", "conv-1/abc.png")
	if err != nil {
		t.Fatalf("post file message: %v", err)
	}
	if record.Kind() != models.KindFile {
		t.Fatalf("expected file kind, got %q", record.Kind())
	}
	if record.FileURL != "conv-1/abc.png" || record.ToUsername != "bob" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if _, err := f.ledger.PostFileMessage(ctx, "", "alice", "bob", "x"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing conversation, got %v", err)
	}
	if _, err := f.ledger.PostFileMessage(ctx, "conv-1", "alice", "mallory", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
	if _, err := f.ledger.PostFileMessage(ctx, "conv-1", "alice", "bob", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing file, got %v", err)
	}
}

func TestLegacyFileRecordKind(t *testing.T) {
	// Records written before the explicit tag carry only a fileUrl.
	legacy := models.Record{ID: "r1", FileURL: "conv-1/legacy.png", ConversationID: "conv-1"}
	if legacy.Kind() != models.KindFile {
		t.Fatalf("expected legacy file record to classify as file, got %q", legacy.Kind())
	}
}

func TestCreateBroadcastChat(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	chat, err := f.ledger.CreateBroadcastChat(ctx, "lobby")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if chat.Kind() != models.KindChat || chat.ConversationName != "lobby" {
		t.Fatalf("unexpected descriptor: %+v", chat)
	}

	if _, err := os.Stat(filepath.Join(f.uploadsRoot, chat.ID)); err != nil {
		t.Fatalf("expected attachment directory to exist: %v", err)
	}

	// A fresh conversation still lists its own descriptor.
	got, err := f.ledger.ListConversationMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != chat.ID {
		t.Fatalf("expected descriptor only, got %+v", got)
	}

	if _, err := f.ledger.CreateBroadcastChat(ctx, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty name, got %v", err)
	}
}

func TestCreateFriendChatNaming(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	cases := []struct {
		name           string
		initialMessage string
		chatName       string
		want           string
	}{
		{"explicitName", "hello there friend", "our chat", "our chat"},
		{"firstTwoWords", "hello there friend", "", "hello there"},
		{"singleWord", "hello", "", "hello"},
		{"fallback", "", "", "Friend Chat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat, err := f.ledger.CreateFriendChat(ctx, "user-1", "user-2", tc.initialMessage, tc.chatName)
			if err != nil {
				t.Fatalf("create friend chat: %v", err)
			}
			if chat.ConversationName != tc.want {
				t.Fatalf("expected name %q, got %q", tc.want, chat.ConversationName)
			}
		})
	}
}

func TestCreateFriendChat(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	chat, err := f.ledger.CreateFriendChat(ctx, "user-1", "user-2", "hello there", "")
	if err != nil {
		t.Fatalf("create friend chat: %v", err)
	}
	if chat.Kind() != models.KindFriendChat {
		t.Fatalf("expected friend-chat kind, got %q", chat.Kind())
	}
	if chat.Creator != "user-1" || !slices.Equal(chat.Participants, []string{"user-1", "user-2"}) {
		t.Fatalf("unexpected descriptor: %+v", chat)
	}
	if _, err := os.Stat(filepath.Join(f.uploadsRoot, chat.ID)); err != nil {
		t.Fatalf("expected attachment directory to exist: %v", err)
	}

	if _, err := f.ledger.CreateFriendChat(ctx, "", "user-2", "", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing id, got %v", err)
	}
}

func TestDeleteConversation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	chat, err := f.ledger.CreateBroadcastChat(ctx, "lobby")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if _, err := f.ledger.PostMessage(ctx, "alice", chat.ID, "hi"); err != nil {
		t.Fatalf("post message: %v", err)
	}
	if _, err := f.ledger.PostMessage(ctx, "bob", "other-conv", "unrelated"); err != nil {
		t.Fatalf("post unrelated message: %v", err)
	}

	if err := f.ledger.DeleteConversation(ctx, chat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := f.ledger.ListConversationMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty conversation after delete, got %+v", got)
	}

	other, err := f.ledger.ListConversationMessages(ctx, "other-conv")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("unrelated conversation should survive, got %+v", other)
	}

	if _, err := os.Stat(filepath.Join(f.uploadsRoot, chat.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected attachment directory to be removed, got %v", err)
	}

	if err := f.ledger.DeleteConversation(ctx, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing id, got %v", err)
	}
}

func TestListUserConversations(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	broadcast, err := f.ledger.CreateBroadcastChat(ctx, "lobby")
	if err != nil {
		t.Fatalf("create broadcast: %v", err)
	}
	created, err := f.ledger.CreateFriendChat(ctx, "user-1", "user-2", "hello there", "")
	if err != nil {
		t.Fatalf("create friend chat: %v", err)
	}
	joined, err := f.ledger.CreateFriendChat(ctx, "user-2", "user-1", "", "their chat")
	if err != nil {
		t.Fatalf("create joined chat: %v", err)
	}
	if _, err := f.ledger.CreateFriendChat(ctx, "user-3", "user-4", "", "hidden"); err != nil {
		t.Fatalf("create hidden chat: %v", err)
	}

	chats, err := f.ledger.ListUserConversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(chats.YourChats) != 1 || chats.YourChats[0].ID != created.ID {
		t.Fatalf("unexpected created bucket: %+v", chats.YourChats)
	}

	joinedIDs := make([]string, 0, len(chats.FriendChats))
	for _, c := range chats.FriendChats {
		joinedIDs = append(joinedIDs, c.ID)
	}
	if !slices.Contains(joinedIDs, broadcast.ID) {
		t.Fatalf("broadcast chat must always appear in joined bucket: %v", joinedIDs)
	}
	if !slices.Contains(joinedIDs, joined.ID) {
		t.Fatalf("participant chat missing from joined bucket: %v", joinedIDs)
	}
	if len(chats.FriendChats) != 2 {
		t.Fatalf("hidden chat leaked into listing: %+v", chats.FriendChats)
	}

	// Broadcast chats are visible to any user, even one with no chats.
	stranger, err := f.ledger.ListUserConversations(ctx, "stranger")
	if err != nil {
		t.Fatalf("list stranger: %v", err)
	}
	if len(stranger.YourChats) != 0 || len(stranger.FriendChats) != 1 || stranger.FriendChats[0].ID != broadcast.ID {
		t.Fatalf("unexpected stranger listing: %+v", stranger)
	}
}
