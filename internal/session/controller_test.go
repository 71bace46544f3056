// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/syntx-system/syntx-tui/internal/api"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/store"
)

// fakeCompleter returns a canned reply or error without any network.
type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

// fakePersister records snapshots handed to the write-behind layer.
type fakePersister struct {
	mu        sync.Mutex
	saves     int
	lastCount int
}

func (f *fakePersister) SaveAsync(conversations []*model.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.lastCount = len(conversations)
}

func (f *fakePersister) Flush() error { return nil }

func (f *fakePersister) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func newTestController(reply string, err error) (*Controller, *store.Store, *fakePersister) {
	s := store.New(nil)
	p := &fakePersister{}
	c := NewController(s, &fakeCompleter{reply: reply, err: err}, p)
	return c, s, p
}

func TestSubmitAppendsUserMessageAndDerivesTitle(t *testing.T) {
	c, s, p := newTestController("the answer", nil)

	future := c.Submit(context.Background(), "  What is a channel?  ")
	if future == nil {
		t.Fatal("expected a completion future")
	}

	conv := s.Active()
	if conv.MessageCount() != 1 {
		t.Fatalf("expected 1 message after submit, got %d", conv.MessageCount())
	}
	if conv.Messages[0].Role != model.RoleUser || conv.Messages[0].Content != "What is a channel?" {
		t.Errorf("unexpected user message: %+v", conv.Messages[0])
	}
	if conv.Title != "What is a channel?" {
		t.Errorf("expected derived title, got %q", conv.Title)
	}
	if c.PendingCount() != 1 {
		t.Errorf("expected 1 pending completion, got %d", c.PendingCount())
	}
	if p.saveCount() == 0 {
		t.Error("submit should persist before the completion resolves")
	}
}

func TestSubmitBlankPromptIsNoOp(t *testing.T) {
	c, s, p := newTestController("x", nil)

	if future := c.Submit(context.Background(), "   \n  "); future != nil {
		t.Error("blank prompt should return nil future")
	}
	if s.Active().MessageCount() != 0 {
		t.Error("blank prompt should not append")
	}
	if p.saveCount() != 0 {
		t.Error("blank prompt should not persist")
	}
}

func TestSubmitDoesNotOverwriteExistingTitle(t *testing.T) {
	c, s, _ := newTestController("x", nil)
	conv := s.Active()
	s.SetTitle(conv.ID, "Kept title")

	c.Submit(context.Background(), "a much longer second prompt that would derive differently")

	if conv.Title != "Kept title" {
		t.Errorf("existing title should never be overwritten, got %q", conv.Title)
	}
}

func TestSubmitTruncatesLongTitle(t *testing.T) {
	c, s, _ := newTestController("x", nil)

	prompt := strings.Repeat("x", 40)
	c.Submit(context.Background(), prompt)

	conv := s.Active()
	want := strings.Repeat("x", 30) + "…"
	if conv.Title != want {
		t.Errorf("expected truncated title %q, got %q", want, conv.Title)
	}
}

func TestSubmitClassifiesTags(t *testing.T) {
	tests := []struct {
		prompt string
		want   []string
	}{
		{"my code has a bug", []string{TagCoding}},
		{"brainstorm an idea with me", []string{TagIdeas}},
		{"help me with this problem", []string{TagSupport}},
		{"help me fix this programming bug", []string{TagCoding, TagSupport}},
		{"what is the weather", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			c, s, _ := newTestController("x", nil)
			c.Submit(context.Background(), tt.prompt)

			got := s.Active().Tags
			if len(got) != len(tt.want) {
				t.Fatalf("expected tags %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected tags %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestResolveAppendsReply(t *testing.T) {
	c, s, _ := newTestController("the answer", nil)

	future := c.Submit(context.Background(), "question")
	c.Resolve(future())

	conv := s.Active()
	if conv.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", conv.MessageCount())
	}
	last := conv.LastMessage()
	if last.Role != model.RoleAssistant || last.Content != "the answer" {
		t.Errorf("unexpected assistant message: %+v", last)
	}
	if c.PendingCount() != 0 {
		t.Errorf("pending count should drop to 0, got %d", c.PendingCount())
	}
}

func TestResolveDropsReplyForDeletedConversation(t *testing.T) {
	c, s, _ := newTestController("late reply", nil)

	future := c.Submit(context.Background(), "question")
	doomed := s.ActiveID()

	// User deletes the conversation while the request is in flight.
	survivor := c.NewConversation()
	if err := c.DeleteConversation(doomed); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	c.Resolve(future())

	if s.Get(doomed) != nil {
		t.Fatal("conversation should be gone")
	}
	if survivor.MessageCount() != 0 {
		t.Error("stale reply must not land in another conversation")
	}
	if c.PendingCount() != 0 {
		t.Error("pending count should still drop")
	}
}

func TestResolveTurnsErrorsIntoErrorBubble(t *testing.T) {
	c, s, _ := newTestController("", api.ErrTimeout)

	future := c.Submit(context.Background(), "question")
	c.Resolve(future())

	last := s.Active().LastMessage()
	if last.Role != model.RoleAssistant {
		t.Fatal("error should surface as an assistant message")
	}
	if !strings.Contains(last.Content, "timed out") {
		t.Errorf("expected timeout wording, got %q", last.Content)
	}
}

func TestRegenerateReplacesLastReply(t *testing.T) {
	c, s, _ := newTestController("second answer", nil)

	future := c.Submit(context.Background(), "question")
	c.Resolve(Completion{ConversationID: s.ActiveID(), Reply: "first answer"})
	_ = future

	regen := c.Regenerate(context.Background())
	if regen == nil {
		t.Fatal("expected a regeneration future")
	}

	conv := s.Active()
	if conv.MessageCount() != 1 {
		t.Fatalf("old reply should be removed before regenerating, got %d messages", conv.MessageCount())
	}

	c.Resolve(regen())
	if got := conv.LastMessage().Content; got != "second answer" {
		t.Errorf("expected regenerated reply, got %q", got)
	}
	if conv.Messages[0].Content != "question" {
		t.Error("user message must survive regeneration")
	}
}

func TestRegenerateNoOpWithoutAssistantReply(t *testing.T) {
	c, s, _ := newTestController("x", nil)

	// Empty conversation.
	if c.Regenerate(context.Background()) != nil {
		t.Error("regenerate on empty conversation should be a no-op")
	}

	// Last message is the user's (completion still pending).
	c.Submit(context.Background(), "question")
	if c.Regenerate(context.Background()) != nil {
		t.Error("regenerate with a pending user message should be a no-op")
	}
	if s.Active().MessageCount() != 1 {
		t.Error("no-op regenerate must not mutate")
	}
}

func TestClearActiveKeepsMetadata(t *testing.T) {
	c, s, _ := newTestController("x", nil)
	conv := s.Active()
	c.Submit(context.Background(), "some code question")
	c.TogglePin(conv.ID)

	c.ClearActive()

	if conv.MessageCount() != 0 {
		t.Error("clear should remove all messages")
	}
	if conv.Title == model.DefaultTitle {
		t.Error("clear should keep the derived title")
	}
	if !conv.Pinned || len(conv.Tags) == 0 {
		t.Error("clear should keep pin and tags")
	}
}

func TestReactTogglesOnActiveConversation(t *testing.T) {
	c, s, _ := newTestController("reply", nil)
	future := c.Submit(context.Background(), "q")
	c.Resolve(future())

	if err := c.React(1, model.ReactionUp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Active().Messages[1].Reaction != model.ReactionUp {
		t.Error("expected reaction set")
	}

	if err := c.React(5, model.ReactionUp); err == nil {
		t.Error("out-of-range index should error")
	}
}

func TestImportConversationsReplacesStore(t *testing.T) {
	c, s, _ := newTestController("x", nil)
	a := model.NewConversation()
	b := model.NewConversation()

	if err := c.ImportConversations([]*model.Conversation{a, b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 || s.ActiveID() != a.ID {
		t.Error("import should replace the store and activate the first entry")
	}
}

func TestDescribeErrorHTTP(t *testing.T) {
	err := &api.ClientError{Type: api.ErrTypeHTTP, Status: 429, Message: "completion request failed: HTTP 429"}
	if got := describeError(err); !strings.Contains(got, "429") {
		t.Errorf("expected overload wording, got %q", got)
	}

	err = &api.ClientError{Type: api.ErrTypeHTTP, Status: 500, Message: "completion request failed: HTTP 500"}
	if got := describeError(err); !strings.Contains(got, "HTTP 500") {
		t.Errorf("expected status in message, got %q", got)
	}
}
