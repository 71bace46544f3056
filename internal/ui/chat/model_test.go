// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syntx-system/syntx-tui/internal/config"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/session"
	"github.com/syntx-system/syntx-tui/internal/store"
	"github.com/syntx-system/syntx-tui/internal/voice"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func testModel(t *testing.T) Model {
	t.Helper()
	controller := session.NewController(store.New(nil), &stubCompleter{reply: "ok"}, nil)
	cfg := config.Default()
	cfg.UI.RenderMarkdown = false
	m := New(controller, voice.NewUnsupported(), cfg)

	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sized.(Model)
}

func TestNewModel(t *testing.T) {
	m := testModel(t)

	if !m.ready {
		t.Error("model should be ready after a resize")
	}
	if m.store.Len() != 1 {
		t.Errorf("expected bootstrap conversation, got %d", m.store.Len())
	}
	if m.pending() {
		t.Error("no completion should be pending initially")
	}
}

func TestSubmitAppendsPrompt(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("hello there")

	updated, cmd := m.submitInput()
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("submit should return a completion command")
	}
	conv := m.store.Active()
	if conv.MessageCount() != 1 || conv.Messages[0].Content != "hello there" {
		t.Fatalf("prompt not recorded: %+v", conv.Messages)
	}
	if m.input.Value() != "" {
		t.Error("input should reset after submit")
	}
}

func TestSubmitBlankIsNoOp(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("   ")

	updated, cmd := m.submitInput()
	m = updated.(Model)

	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
	if m.store.Active().MessageCount() != 0 {
		t.Error("blank input should not be recorded")
	}
}

func TestCompletionMsgResolves(t *testing.T) {
	m := testModel(t)
	convID := m.store.ActiveID()
	m.store.AppendMessage(convID, model.NewUserMessage("q"))

	updated, _ := m.Update(completionMsg{result: session.Completion{
		ConversationID: convID,
		Reply:          "the answer",
	}})
	m = updated.(Model)

	conv := m.store.Active()
	if conv.MessageCount() != 2 {
		t.Fatalf("reply not appended: %+v", conv.Messages)
	}
	last := conv.LastMessage()
	if last.Role != model.RoleAssistant || last.Content != "the answer" {
		t.Errorf("unexpected reply message: %+v", last)
	}
}

func TestVoiceUnsupported(t *testing.T) {
	m := testModel(t)

	cmd := m.toggleVoice()
	if cmd != nil {
		t.Error("unsupported recognizer should not start listening")
	}
	if m.voiceOn {
		t.Error("voice should stay off")
	}
	if !m.noticeErr || !strings.Contains(m.notice, "not available") {
		t.Errorf("expected unsupported notice, got %q", m.notice)
	}
}

func TestVisibleConversationsPinnedFirst(t *testing.T) {
	m := testModel(t)
	first := m.store.ActiveID()
	m.store.Create()
	m.store.Create()
	m.store.TogglePin(first)

	ordered := m.visibleConversations()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(ordered))
	}
	if ordered[0].ID != first {
		t.Error("pinned conversation should sort first")
	}
}

func TestVisibleConversationsSearchFilter(t *testing.T) {
	m := testModel(t)
	m.store.SetTitle(m.store.ActiveID(), "kubernetes debugging")
	m.store.Create()

	m.searchQuery = "kubernetes"
	if got := len(m.visibleConversations()); got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}

	m.searchQuery = ""
	if got := len(m.visibleConversations()); got != 2 {
		t.Errorf("expected all conversations, got %d", got)
	}
}

func TestCycleConversation(t *testing.T) {
	m := testModel(t)
	m.store.Create()
	active := m.store.ActiveID()

	m.cycleConversation(1)
	if m.store.ActiveID() == active {
		t.Error("cycle should switch the active conversation")
	}
	m.cycleConversation(1)
	if m.store.ActiveID() != active {
		t.Error("cycling twice over two conversations should wrap around")
	}
}

func TestViewRenders(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("draft")

	out := m.View()
	if out == "" {
		t.Fatal("view should render")
	}
	if !strings.Contains(out, "SYNTX") {
		t.Error("header brand missing")
	}
}

func TestHelpOverlayRenders(t *testing.T) {
	m := testModel(t)
	m.showHelp = true

	out := m.View()
	if !strings.Contains(out, "Keyboard shortcuts") || !strings.Contains(out, "/export") {
		t.Error("help overlay should list shortcuts and commands")
	}
}

func TestStatsOverlayRenders(t *testing.T) {
	m := testModel(t)
	m.store.AppendMessage(m.store.ActiveID(), model.NewUserMessage("q"))
	m.showStats = true

	out := m.View()
	if !strings.Contains(out, "Usage statistics") {
		t.Error("stats overlay should render")
	}
}
