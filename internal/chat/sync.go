package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/privchat/internal/model"
)

// startPollingLocked spawns the poll goroutine for the current session.
// Callers hold c.mu and have already set c.user.
func (c *Client) startPollingLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancelPoll = cancel
	c.pollDone = done
	go c.runPoll(ctx, c.user, done)
}

// runPoll re-reads the user's record on a fixed cadence until cancelled.
// Polling is the only mechanism by which a peer's messages become visible,
// so cross-session latency is bounded by the interval, not by the store's
// write latency.
func (c *Client) runPoll(ctx context.Context, username string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	c.log.Debug("polling started", zap.String("user", username), zap.Duration("interval", c.pollEvery))
	for {
		select {
		case <-ticker.C:
			c.refresh(ctx, username)
		case <-ctx.Done():
			c.log.Debug("polling stopped", zap.String("user", username))
			return
		}
	}
}

// refresh replaces the cached conversation list with a fresh read of the
// user's record. An absent record or a failed read yields no information:
// the cache is left unchanged and polling continues. The selection is kept
// by id across the replacement.
func (c *Client) refresh(ctx context.Context, username string) {
	list, ok := c.convs.Load(ctx, username)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user != username {
		// logged out (or re-logged) while the read was in flight
		return
	}
	c.conversations = list
	if c.selectedID != "" && model.FindByID(list, c.selectedID) < 0 {
		c.selectedID = ""
	}
	c.notifyLocked()
}
