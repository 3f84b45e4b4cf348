// Package model defines domain entities shared by services and the chat client.
package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Message is a single immutable chat message. The JSON shape is the wire
// format persisted inside user records.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"` // RFC 3339
}

// Conversation is the 1:1 thread between the record owner and one peer.
// ID is best-effort unique on the owning side only; the two participants'
// records may label the same thread with different ids. Cross-side matching
// is always done by With, never by ID.
type Conversation struct {
	ID       string    `json:"id"`
	With     string    `json:"with"`
	Messages []Message `json:"messages"`
}

// UserData is the full record stored under user:<name>. It grows
// monotonically; conversations and messages are only ever appended.
type UserData struct {
	Conversations []Conversation `json:"conversations"`
}

// Key namespace of the external store.
const AllUsersKey = "all_users"

// AuthKey returns the key holding a user's password scalar.
func AuthKey(username string) string { return "auth:" + username }

// UserKey returns the key holding a user's conversation record.
func UserKey(username string) string { return "user:" + username }

// NewConversation builds an empty conversation stub owned by owner.
// The id embeds both participants and a creation timestamp; it is
// collision-resistant, not globally unique.
func NewConversation(owner, peer string, now time.Time) Conversation {
	return Conversation{
		ID:       fmt.Sprintf("%s_%s_%d", owner, peer, now.UnixMilli()),
		With:     peer,
		Messages: []Message{},
	}
}

// NewMessage builds a message from sender with the given text. The id
// combines the timestamp with a random suffix so that near-simultaneous
// sends do not collide.
func NewMessage(from, text string, now time.Time) Message {
	u, err := uuid.NewV4()
	suffix := "0000000"
	if err == nil {
		suffix = u.String()[:7]
	}
	return Message{
		ID:        fmt.Sprintf("%d-%s", now.UnixMilli(), suffix),
		From:      from,
		Text:      text,
		Timestamp: now.UTC(),
	}
}

// FindByPeer returns the index of the conversation with the given peer,
// or -1. At most one entry per peer is expected (not enforced by locking).
func FindByPeer(convs []Conversation, peer string) int {
	for i := range convs {
		if convs[i].With == peer {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the conversation with the given id, or -1.
func FindByID(convs []Conversation, id string) int {
	for i := range convs {
		if convs[i].ID == id {
			return i
		}
	}
	return -1
}
