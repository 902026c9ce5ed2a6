package models

import "time"

// User represents an account within the flatchat backend. Friends holds the
// usernames this user considers friends; each side of a friendship owns its
// own list (see store.Registry for the reconciliation rules).
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	Friends      []string `json:"friends"`
	ProfileImage string   `json:"profileImage,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// FriendView is the per-friend projection returned by the friends listing,
// with defaults applied for absent profile data.
type FriendView struct {
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
	Status       string `json:"status"`
}

// RecordKind identifies which variant a ledger Record is.
type RecordKind string

const (
	KindMessage    RecordKind = "message"
	KindFile       RecordKind = "file"
	KindChat       RecordKind = "chat"
	KindFriendChat RecordKind = "friend-chat"
)

// Record is one entry in the heterogeneous message ledger. Exactly one of
// four variants is encoded per entry; unused fields are omitted on the wire:
//
//   - message:     FromUsername, ConversationID, Message
//   - file:        FromUsername, ToUsername, ConversationID, FileURL
//   - chat:        ConversationName (ID doubles as the conversation id)
//   - friend-chat: ConversationName, Creator, Participants
//
// Historical file messages were written without a Type tag; Kind classifies
// those by the presence of FileURL.
type Record struct {
	ID               string    `json:"id"`
	Type             string    `json:"type,omitempty"`
	FromUsername     string    `json:"fromUsername,omitempty"`
	ToUsername       string    `json:"toUsername,omitempty"`
	ConversationID   string    `json:"conversationId,omitempty"`
	Message          string    `json:"message,omitempty"`
	FileURL          string    `json:"fileUrl,omitempty"`
	ConversationName string    `json:"conversationName,omitempty"`
	Creator          string    `json:"creator,omitempty"`
	Participants     []string  `json:"participants,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Kind reports the record variant, inferring file messages that predate the
// explicit tag.
func (r Record) Kind() RecordKind {
	if r.Type != "" {
		return RecordKind(r.Type)
	}
	if r.FileURL != "" {
		return KindFile
	}
	return KindMessage
}

// InConversation reports whether the record belongs to the given
// conversation, either as a message within it or as its descriptor.
func (r Record) InConversation(conversationID string) bool {
	return r.ConversationID == conversationID || r.ID == conversationID
}

// Conversations groups the ledger records visible to one user, split by
// whether that user created the conversation.
type Conversations struct {
	YourChats   []Record `json:"yourChats"`
	FriendChats []Record `json:"friendChats"`
}
