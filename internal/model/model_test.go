package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewConversation_ID(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1700000000000)
	conv := NewConversation("alice", "bob", now)

	if conv.ID != "alice_bob_1700000000000" {
		t.Fatalf("conversation id: %q", conv.ID)
	}
	if conv.With != "bob" || len(conv.Messages) != 0 {
		t.Fatalf("stub shape: %+v", conv)
	}
}

func TestNewMessage_ID(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1700000000000)
	m := NewMessage("alice", "hi", now)

	if !strings.HasPrefix(m.ID, "1700000000000-") {
		t.Fatalf("message id must embed the timestamp: %q", m.ID)
	}
	if m2 := NewMessage("alice", "hi", now); m2.ID == m.ID {
		t.Fatal("near-simultaneous messages must not share an id")
	}
}

func TestMessage_TimestampWireFormat(t *testing.T) {
	t.Parallel()
	m := NewMessage("alice", "hi", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"timestamp":"2026-08-30T12:00:00Z"`) {
		t.Fatalf("timestamp must serialize as RFC 3339: %s", b)
	}
}

func TestFindHelpers(t *testing.T) {
	t.Parallel()
	convs := []Conversation{
		{ID: "1", With: "bob"},
		{ID: "2", With: "carol"},
	}

	if FindByPeer(convs, "carol") != 1 || FindByPeer(convs, "dave") != -1 {
		t.Fatal("FindByPeer")
	}
	if FindByID(convs, "1") != 0 || FindByID(convs, "9") != -1 {
		t.Fatal("FindByID")
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()
	if AuthKey("alice") != "auth:alice" || UserKey("alice") != "user:alice" || AllUsersKey != "all_users" {
		t.Fatal("key namespace changed")
	}
}
