// Package chat implements the client session: authentication, the polling
// sync loop and the dual-write message dispatcher. The presentation layer
// renders the session state exposed here and reacts to Changes().
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/privchat/internal/errs"
	"github.com/and161185/privchat/internal/model"
	"github.com/and161185/privchat/internal/service"
)

// DefaultPollInterval is the cadence at which the current user's record is
// re-read while logged in.
const DefaultPollInterval = 2 * time.Second

// Client holds one user session. Methods are safe to call from one caller
// goroutine concurrently with the internal poll goroutine. All state is
// in-memory and lost when the process exits; only the store persists.
type Client struct {
	creds     *service.Credentials
	convs     *service.Conversations
	pollEvery time.Duration
	log       *zap.Logger

	mu            sync.Mutex
	user          string
	conversations []model.Conversation
	selectedID    string

	cancelPoll context.CancelFunc
	pollDone   chan struct{}

	changes chan struct{}
}

// NewClient constructs a client. pollEvery <= 0 selects DefaultPollInterval;
// a nil logger disables logging.
func NewClient(creds *service.Credentials, convs *service.Conversations, pollEvery time.Duration, log *zap.Logger) *Client {
	if pollEvery <= 0 {
		pollEvery = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		creds:     creds,
		convs:     convs,
		pollEvery: pollEvery,
		log:       log,
		changes:   make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a signal after every state change.
// The channel has capacity one and signals coalesce; consumers re-read the
// full state on each signal.
func (c *Client) Changes() <-chan struct{} { return c.changes }

// CurrentUser returns the logged-in username, or "" when idle.
func (c *Client) CurrentUser() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Conversations returns a snapshot of the cached conversation list.
func (c *Client) Conversations() []model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Conversation(nil), c.conversations...)
}

// Selected returns the currently selected conversation, if any. The
// selection is tracked by id so it survives cache replacement by the poll
// loop.
func (c *Client) Selected() (model.Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := model.FindByID(c.conversations, c.selectedID); i >= 0 {
		return c.conversations[i], true
	}
	return model.Conversation{}, false
}

// Select makes the conversation with the given id current.
func (c *Client) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if model.FindByID(c.conversations, id) < 0 {
		return false
	}
	c.selectedID = id
	c.notifyLocked()
	return true
}

// AllUsers returns the directory of registered usernames.
func (c *Client) AllUsers(ctx context.Context) []string {
	return c.creds.AllUsers(ctx)
}

// Signup registers a new account and opens a session for it.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	if err := c.creds.Signup(ctx, username, password); err != nil {
		return err
	}
	c.openSession(ctx, username)
	return nil
}

// Login authenticates and opens a session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if err := c.creds.Login(ctx, username, password); err != nil {
		return err
	}
	c.openSession(ctx, username)
	return nil
}

// Logout stops the poll loop and clears the session state. The poll
// goroutine is waited for, so no background work survives logout.
func (c *Client) Logout() {
	c.mu.Lock()
	cancel, done := c.cancelPoll, c.pollDone
	c.cancelPoll, c.pollDone = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.mu.Lock()
	c.user = ""
	c.conversations = nil
	c.selectedID = ""
	c.notifyLocked()
	c.mu.Unlock()
}

// openSession establishes the session and transitions the sync engine from
// Idle to Polling. The first load happens immediately, not on the first
// tick, so the caller sees state without waiting a full interval. An absent
// record means a new user with empty history.
func (c *Client) openSession(ctx context.Context, username string) {
	c.Logout() // replace any previous session

	list, _ := c.convs.Load(ctx, username)

	c.mu.Lock()
	c.user = username
	c.conversations = list
	c.selectedID = ""
	c.startPollingLocked()
	c.notifyLocked()
	c.mu.Unlock()
}

// StartConversation creates or selects the thread with peer. Creation is
// initiator-side only: the peer gains a matching entry lazily, the first
// time a message is actually delivered to them.
func (c *Client) StartConversation(ctx context.Context, peer string) (model.Conversation, error) {
	peer = strings.TrimSpace(peer)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.user == "":
		return model.Conversation{}, errs.ErrNotLoggedIn
	case peer == "":
		return model.Conversation{}, errs.ErrValidation
	case peer == c.user:
		return model.Conversation{}, errs.ErrSelfChat
	}

	if i := model.FindByPeer(c.conversations, peer); i >= 0 {
		c.selectedID = c.conversations[i].ID
		c.notifyLocked()
		return c.conversations[i], nil
	}

	conv := model.NewConversation(c.user, peer, time.Now())
	c.conversations = append(append([]model.Conversation(nil), c.conversations...), conv)
	c.convs.Save(ctx, c.user, c.conversations)
	c.selectedID = conv.ID
	c.notifyLocked()
	return conv, nil
}

// SendMessage appends text to the selected conversation and delivers it.
//
// The write is dual and untransacted: first the sender's own record is
// persisted from the in-memory cache, then the recipient's record is
// re-read fresh from the store, a conversation with the sender is created
// there if missing, and the same message is appended and persisted. A
// failed recipient-side write is swallowed; the message still counts as
// sent because the sender's record already holds it.
func (c *Client) SendMessage(ctx context.Context, text string) (model.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.user == "":
		return model.Conversation{}, errs.ErrNotLoggedIn
	case strings.TrimSpace(text) == "":
		return model.Conversation{}, errs.ErrValidation
	}
	idx := model.FindByID(c.conversations, c.selectedID)
	if idx < 0 {
		return model.Conversation{}, errs.ErrNoSelection
	}

	now := time.Now()
	msg := model.NewMessage(c.user, text, now)

	// Sender side, from cache. The cache is updated synchronously with the
	// same value that is persisted, so the send is visible immediately.
	updated := append([]model.Conversation(nil), c.conversations...)
	conv := updated[idx]
	conv.Messages = append(append([]model.Message(nil), conv.Messages...), msg)
	updated[idx] = conv
	c.convs.Save(ctx, c.user, updated)
	c.conversations = updated
	c.notifyLocked()

	// Recipient side, from a fresh read. No cache is held for other users.
	recipient := conv.With
	recList, _ := c.convs.Load(ctx, recipient)
	j := model.FindByPeer(recList, c.user)
	if j < 0 {
		recList = append(recList, model.NewConversation(recipient, c.user, now))
		j = len(recList) - 1
	}
	recList[j].Messages = append(recList[j].Messages, msg)
	c.convs.Save(ctx, recipient, recList)

	return conv, nil
}

// notifyLocked publishes a coalescing change signal. Callers hold c.mu.
func (c *Client) notifyLocked() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
