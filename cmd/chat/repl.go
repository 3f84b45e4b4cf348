package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/and161185/privchat/internal/chat"
	"github.com/and161185/privchat/internal/model"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// runREPL reads commands from scanner and dispatches them against the chat
// client until EOF or "exit". Incoming messages for the open conversation
// are printed as the poll loop discovers them.
func runREPL(ctx context.Context, c *chat.Client, scanner *bufio.Scanner, w io.Writer) {
	go watchChanges(ctx, c, w)

	for {
		fmt.Fprintf(w, "%s> ", prompt(c))
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			printHelp(c, w)
		case "signup", "login":
			if len(fields) < 2 {
				fmt.Fprintf(w, "usage: %s <username>\n", fields[0])
				continue
			}
			pw, err := promptPassword(w)
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				continue
			}
			if fields[0] == "signup" {
				err = c.Signup(ctx, fields[1], pw)
			} else {
				err = c.Login(ctx, fields[1], pw)
			}
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				continue
			}
			fmt.Fprintf(w, "logged in as %s\n", fields[1])
		case "users":
			for _, u := range c.AllUsers(ctx) {
				fmt.Fprintln(w, " ", u)
			}
		case "chats":
			printChats(c, w)
		case "open":
			if len(fields) < 2 {
				fmt.Fprintln(w, "usage: open <number|username>")
				continue
			}
			openChat(ctx, c, fields[1], w)
		case "send":
			if len(fields) < 2 {
				fmt.Fprintln(w, "usage: send <text>")
				continue
			}
			if _, err := c.SendMessage(ctx, strings.Join(fields[1:], " ")); err != nil {
				fmt.Fprintln(w, "error:", err)
			}
		case "logout":
			c.Logout()
		case "exit", "quit":
			return
		default:
			fmt.Fprintf(w, "unknown command %q, try help\n", fields[0])
		}
	}
}

func prompt(c *chat.Client) string {
	user := c.CurrentUser()
	if user == "" {
		return "chat"
	}
	if conv, ok := c.Selected(); ok {
		return user + ":" + conv.With
	}
	return user
}

func printHelp(c *chat.Client, w io.Writer) {
	if c.CurrentUser() == "" {
		fmt.Fprintln(w, "commands: signup <name>, login <name>, exit")
		return
	}
	fmt.Fprintln(w, "commands: users, chats, open <number|username>, send <text>, logout, exit")
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return string(pw), err
}

func printChats(c *chat.Client, w io.Writer) {
	convs := c.Conversations()
	if len(convs) == 0 {
		fmt.Fprintln(w, "no conversations yet, open <username> to start one")
		return
	}
	for i, conv := range convs {
		last := "(empty)"
		if n := len(conv.Messages); n > 0 {
			last = conv.Messages[n-1].Text
		}
		fmt.Fprintf(w, "%3d  %-16s %s\n", i+1, conv.With, last)
	}
}

func openChat(ctx context.Context, c *chat.Client, arg string, w io.Writer) {
	convs := c.Conversations()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(convs) {
		c.Select(convs[n-1].ID)
		printConversation(convs[n-1], w)
		return
	}
	conv, err := c.StartConversation(ctx, arg)
	if err != nil {
		fmt.Fprintln(w, "error:", err)
		return
	}
	printConversation(conv, w)
}

func printConversation(conv model.Conversation, w io.Writer) {
	fmt.Fprintf(w, "--- %s ---\n", conv.With)
	for _, m := range conv.Messages {
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.From, m.Text)
	}
}

// watchChanges prints messages from the peer as they appear in the open
// conversation. Sends from this session are rendered by the command flow,
// so only the peer's messages are echoed here.
func watchChanges(ctx context.Context, c *chat.Client, w io.Writer) {
	seen := map[string]int{}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Changes():
		}

		conv, ok := c.Selected()
		if !ok {
			continue
		}
		from, known := seen[conv.ID]
		if !known || from > len(conv.Messages) {
			// first sight of this conversation: history was already rendered
			// by the open command, only deltas from here on
			seen[conv.ID] = len(conv.Messages)
			continue
		}
		for _, m := range conv.Messages[from:] {
			if m.From != c.CurrentUser() {
				fmt.Fprintf(w, "\n[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.From, m.Text)
			}
		}
		seen[conv.ID] = len(conv.Messages)
	}
}
