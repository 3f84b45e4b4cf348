package service

import (
	"context"

	"github.com/and161185/privchat/internal/model"
	"github.com/and161185/privchat/internal/storage"
)

// Conversations reads and writes per-user conversation records. A record is
// owned by its user but is also written to by whichever session is currently
// delivering a message to that user; there is no locking (see the dispatcher).
type Conversations struct {
	store *storage.Adapter
}

// NewConversations constructs the conversation service.
func NewConversations(store *storage.Adapter) *Conversations {
	return &Conversations{store: store}
}

// Load reads the user's conversation list. The bool reports whether the
// record was present: absence means "new user, empty history" for an initial
// load, and "no information, keep what you have" for the poll loop. Load
// never fails outward; an unreadable record decodes to the empty list.
func (s *Conversations) Load(ctx context.Context, username string) ([]model.Conversation, bool) {
	v := s.store.ReadValue(ctx, model.UserKey(username), false)
	if v == nil {
		return []model.Conversation{}, false
	}
	data := storage.Decode(v, model.UserData{})
	if data.Conversations == nil {
		return []model.Conversation{}, true
	}
	return data.Conversations, true
}

// Save overwrites the user's whole record. Callers are responsible for
// merging with freshly-read state first; a save is last-writer-wins at
// record granularity.
func (s *Conversations) Save(ctx context.Context, username string, convs []model.Conversation) {
	data := model.UserData{Conversations: convs}
	s.store.WriteValue(ctx, model.UserKey(username), storage.Encode(data), false)
}
