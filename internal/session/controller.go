// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/syntx-system/syntx-tui/internal/api"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/store"
)

// =============================================================================
// COMPLETER INTERFACE
// =============================================================================

// Completer produces a reply for a prompt. Satisfied by *api.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Persister mirrors store state to durable storage. Satisfied by
// *storage.Adapter.
type Persister interface {
	SaveAsync(conversations []*model.Conversation)
	Flush() error
}

// =============================================================================
// COMPLETION RESULT
// =============================================================================

// Completion is the outcome of an in-flight completion request. It carries
// the ID of the conversation that was active at submit time, which is the
// only conversation the reply may land in.
type Completion struct {
	ConversationID string
	Reply          string
	Err            error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives the conversation store in response to user actions and
// resolves completions back into it. All methods are safe for concurrent
// use; the completion future returned by Submit runs off the calling
// goroutine.
type Controller struct {
	mu        sync.Mutex
	store     *store.Store
	completer Completer
	persister Persister

	pending int // completions in flight
}

// NewController wires the store, completion client and persistence adapter
// together. persister may be nil in tests.
func NewController(s *store.Store, completer Completer, persister Persister) *Controller {
	return &Controller{
		store:     s,
		completer: completer,
		persister: persister,
	}
}

// Store exposes the underlying store for read access.
func (c *Controller) Store() *store.Store {
	return c.store
}

// PendingCount returns the number of completions in flight.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// =============================================================================
// SUBMIT FLOW
// =============================================================================

// Submit records a user prompt in the active conversation and returns a
// future that performs the completion request. A blank prompt (after
// trimming) is a no-op and returns a nil future.
//
// The returned future blocks on the completion endpoint; run it on its own
// goroutine (in the TUI it becomes a tea.Cmd) and feed the result to
// Resolve.
func (c *Controller) Submit(ctx context.Context, text string) func() Completion {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil
	}

	c.mu.Lock()
	conv := c.store.Active()
	if conv == nil {
		c.mu.Unlock()
		return nil
	}
	convID := conv.ID

	firstPrompt := !conv.HasDerivedTitle()
	c.store.AppendMessage(convID, model.NewUserMessage(prompt))
	if firstPrompt {
		c.store.SetTitle(convID, model.DeriveTitle(prompt))
	}
	if tags := ClassifyPrompt(prompt); len(tags) > 0 {
		c.store.AddTags(convID, tags)
	}
	c.pending++
	c.mu.Unlock()

	c.persist()

	return c.completionFuture(ctx, convID, prompt)
}

// Regenerate discards the last assistant reply of the active conversation
// and re-requests a completion for the prompt that produced it. It is a
// no-op (nil future) unless the conversation's last message is an assistant
// reply preceded by a user message.
func (c *Controller) Regenerate(ctx context.Context) func() Completion {
	c.mu.Lock()
	conv := c.store.Active()
	if conv == nil {
		c.mu.Unlock()
		return nil
	}
	last := conv.LastMessage()
	if last == nil || last.Role != model.RoleAssistant {
		c.mu.Unlock()
		return nil
	}
	userMsg := conv.LastUserMessage()
	if userMsg == nil {
		c.mu.Unlock()
		return nil
	}
	convID := conv.ID
	prompt := userMsg.Content

	c.store.ReplaceMessages(convID, conv.Messages[:len(conv.Messages)-1])
	c.pending++
	c.mu.Unlock()

	c.persist()

	return c.completionFuture(ctx, convID, prompt)
}

func (c *Controller) completionFuture(ctx context.Context, convID, prompt string) func() Completion {
	return func() Completion {
		reply, err := c.completer.Complete(ctx, prompt)
		return Completion{ConversationID: convID, Reply: reply, Err: err}
	}
}

// Resolve lands a finished completion in its conversation. If the
// conversation was deleted while the request was in flight the reply is
// dropped without any state change. Errors become an assistant-visible
// error bubble rather than being swallowed.
func (c *Controller) Resolve(result Completion) {
	c.mu.Lock()
	if c.pending > 0 {
		c.pending--
	}

	if c.store.Get(result.ConversationID) == nil {
		c.mu.Unlock()
		return
	}

	content := result.Reply
	if result.Err != nil {
		content = describeError(result.Err)
	}
	c.store.AppendMessage(result.ConversationID, model.NewAssistantMessage(content))
	c.mu.Unlock()

	c.persist()
}

// describeError turns a completion failure into the text shown in the
// assistant bubble.
func describeError(err error) string {
	switch {
	case api.IsTimeout(err):
		return "Error: the request timed out. The model may be busy; try again."
	case api.IsUnreachable(err):
		return "Error: could not reach the SYNTX endpoint. Is the server running?"
	default:
		var clientErr *api.ClientError
		if errors.As(err, &clientErr) && clientErr.Type == api.ErrTypeHTTP {
			if clientErr.Status == http.StatusTooManyRequests {
				return "Error: the endpoint is overloaded (HTTP 429). Wait a moment and retry."
			}
			return "Error: " + clientErr.Message
		}
		return "Error: " + err.Error()
	}
}

// =============================================================================
// CONVERSATION ACTIONS
// =============================================================================

// NewConversation creates and activates an empty conversation.
func (c *Controller) NewConversation() *model.Conversation {
	c.mu.Lock()
	conv := c.store.Create()
	c.mu.Unlock()

	c.persist()
	return conv
}

// DeleteConversation removes a conversation, respecting the last-one floor.
func (c *Controller) DeleteConversation(id string) error {
	c.mu.Lock()
	err := c.store.Delete(id)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// SwitchConversation activates the given conversation.
func (c *Controller) SwitchConversation(id string) {
	c.mu.Lock()
	c.store.SetActive(id)
	c.mu.Unlock()
}

// ClearActive removes all messages from the active conversation. Title,
// tags and pin survive.
func (c *Controller) ClearActive() {
	c.mu.Lock()
	if conv := c.store.Active(); conv != nil {
		c.store.ReplaceMessages(conv.ID, nil)
	}
	c.mu.Unlock()

	c.persist()
}

// Rename sets a conversation title verbatim (trimmed). Blank titles are
// rejected.
func (c *Controller) Rename(id, title string) error {
	c.mu.Lock()
	err := c.store.SetTitle(id, title)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// TogglePin flips a conversation's pinned flag.
func (c *Controller) TogglePin(id string) error {
	c.mu.Lock()
	err := c.store.TogglePin(id)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// Tag adds manual tags to a conversation.
func (c *Controller) Tag(id string, tags []string) error {
	c.mu.Lock()
	err := c.store.AddTags(id, tags)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// React toggles a reaction on a message of the active conversation.
func (c *Controller) React(messageIndex int, reaction model.Reaction) error {
	c.mu.Lock()
	conv := c.store.Active()
	if conv == nil {
		c.mu.Unlock()
		return store.ErrNotFound
	}
	err := c.store.ToggleReaction(conv.ID, messageIndex, reaction)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// ImportConversations replaces the entire store with an imported list and
// activates its first entry.
func (c *Controller) ImportConversations(conversations []*model.Conversation) error {
	c.mu.Lock()
	err := c.store.Replace(conversations)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.persist()
	return nil
}

// Flush synchronously persists current state. Called at shutdown.
func (c *Controller) Flush() error {
	if c.persister == nil {
		return nil
	}
	c.persist()
	return c.persister.Flush()
}

// =============================================================================
// HELPERS
// =============================================================================

// persist snapshots the store and hands it to the write-behind adapter.
// Conversations are cloned so in-flight mutations cannot race the writer.
func (c *Controller) persist() {
	if c.persister == nil {
		return
	}

	c.mu.Lock()
	list := c.store.Conversations()
	snapshot := make([]*model.Conversation, len(list))
	for i, conv := range list {
		snapshot[i] = conv.Clone()
	}
	c.mu.Unlock()

	c.persister.SaveAsync(snapshot)
}
