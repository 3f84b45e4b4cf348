package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/and161185/privchat/internal/chat"
	"github.com/and161185/privchat/internal/service"
	"github.com/and161185/privchat/internal/storage"
	"github.com/and161185/privchat/internal/storage/memory"
)

// lockedBuffer guards against interleaved writes from the change watcher.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestREPL_Script(t *testing.T) {
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	defer func() { readPassword = term.ReadPassword }()

	adapter := storage.NewAdapter(memory.New(), nil)
	c := chat.NewClient(
		service.NewCredentials(adapter),
		service.NewConversations(adapter),
		10*time.Millisecond,
		nil,
	)
	defer c.Logout()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	script := strings.Join([]string{
		"help",
		"signup alice",
		"open bob",
		"send hi there",
		"chats",
		"users",
		"open 1",
		"logout",
		"exit",
	}, "\n")

	out := &lockedBuffer{}
	runREPL(ctx, c, bufio.NewScanner(strings.NewReader(script)), out)

	got := out.String()
	require.Contains(t, got, "logged in as alice")
	require.Contains(t, got, "--- bob ---")
	require.Contains(t, got, "hi there")
	require.Contains(t, got, "alice") // directory listing
}

func TestREPL_UnknownAndUsage(t *testing.T) {
	adapter := storage.NewAdapter(memory.New(), nil)
	c := chat.NewClient(
		service.NewCredentials(adapter),
		service.NewConversations(adapter),
		10*time.Millisecond,
		nil,
	)
	defer c.Logout()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &lockedBuffer{}
	runREPL(ctx, c, bufio.NewScanner(strings.NewReader("bogus\nsignup\nexit\n")), out)

	got := out.String()
	require.Contains(t, got, `unknown command "bogus"`)
	require.Contains(t, got, "usage: signup <username>")
}
