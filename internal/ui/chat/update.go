// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syntx-system/syntx-tui/internal/session"
	"github.com/syntx-system/syntx-tui/internal/voice"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.pending() && !m.voiceOn {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case completionMsg:
		m.controller.Resolve(msg.result)
		m.setNotice("", false)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("Export failed: %v", msg.err), true)
		} else {
			m.setNotice(fmt.Sprintf("Exported to %s", msg.path), false)
		}
		return m, nil

	case importParsedMsg:
		if err := m.controller.ImportConversations(msg.conversations); err != nil {
			m.setNotice(fmt.Sprintf("Import failed: %v", err), true)
			return m, nil
		}
		m.searchQuery = ""
		m.setNotice(fmt.Sprintf("Imported %d conversation(s)", len(msg.conversations)), false)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case importDoneMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("Import failed: %v", msg.err), true)
		}
		return m, nil

	case voiceFragmentMsg:
		m.voiceBuf.Append(msg.fragment)
		m.input.SetValue(m.voiceBuf.Text())
		m.input.CursorEnd()
		return m, m.listenVoice()

	case voiceErrorMsg:
		m.setNotice(fmt.Sprintf("Voice input: %v", msg.err), true)
		return m, m.listenVoice()

	case voiceStoppedMsg:
		m.voiceOn = false
		return m, nil

	case configReloadedMsg:
		if msg.cfg != nil {
			m.cfg = msg.cfg
			m.rebuildRenderer()
			m.refreshViewport()
			m.setNotice("Configuration reloaded", false)
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// handleResize recalculates the layout for a new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Header, input (bordered) and status bar claim fixed rows.
	viewportHeight := msg.Height - headerHeight - inputHeight - statusHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	viewportWidth := msg.Width
	if m.sidebarVisible() {
		viewportWidth -= m.sidebarWidth()
	}
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
	}

	m.input.Width = msg.Width - 6
	m.rebuildRenderer()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		if m.showHelp || m.showStats {
			m.showHelp = false
			m.showStats = false
			return m, nil
		}
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.setNotice("Search cleared", false)
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.showStats = false
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.NewChat):
		m.controller.NewConversation()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.NextChat):
		m.cycleConversation(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevChat):
		m.cycleConversation(-1)
		return m, nil

	case key.Matches(msg, m.keys.TogglePin):
		if err := m.controller.TogglePin(m.store.ActiveID()); err != nil {
			m.setNotice(err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Regenerate):
		cmd := m.startRegenerate()
		return m, cmd

	case key.Matches(msg, m.keys.Voice):
		cmd := m.toggleVoice()
		return m, cmd

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m.updateComponents(msg)
}

// updateComponents forwards messages to the focused child components.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput sends the typed text, either as a slash command or a prompt.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		cmd := m.handleCommand(text)
		return m, cmd
	}

	// One completion at a time keeps replies ordered.
	if m.pending() {
		m.setNotice("Still waiting for the previous reply", true)
		return m, nil
	}

	future := m.controller.Submit(context.Background(), text)
	if future == nil {
		return m, nil
	}

	m.input.Reset()
	m.voiceBuf.Reset()
	m.setNotice("", false)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(completionCmd(future), m.spinner.Tick)
}

// startRegenerate retries the last prompt of the active conversation.
func (m *Model) startRegenerate() tea.Cmd {
	if m.pending() {
		m.setNotice("Still waiting for the previous reply", true)
		return nil
	}

	future := m.controller.Regenerate(context.Background())
	if future == nil {
		m.setNotice("Nothing to regenerate", true)
		return nil
	}

	m.setNotice("Regenerating...", false)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return tea.Batch(completionCmd(future), m.spinner.Tick)
}

// completionCmd wraps a completion future as a Bubble Tea command.
func completionCmd(future func() session.Completion) tea.Cmd {
	return func() tea.Msg {
		return completionMsg{result: future()}
	}
}

// cycleConversation moves the active conversation by delta in sidebar order.
func (m *Model) cycleConversation(delta int) {
	conversations := m.visibleConversations()
	if len(conversations) < 2 {
		return
	}

	active := m.store.ActiveID()
	index := 0
	for i, conv := range conversations {
		if conv.ID == active {
			index = i
			break
		}
	}

	index = (index + delta + len(conversations)) % len(conversations)
	m.controller.SwitchConversation(conversations[index].ID)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// =============================================================================
// VOICE CAPTURE
// =============================================================================

// toggleVoice starts or stops the speech recognizer.
func (m *Model) toggleVoice() tea.Cmd {
	if m.voiceOn {
		m.recognizer.Stop()
		m.voiceOn = false
		m.setNotice("Voice input stopped", false)
		return nil
	}

	if err := m.recognizer.Start(); err != nil {
		if voice.IsUnsupported(err) {
			m.setNotice("Voice input is not available on this system", true)
		} else {
			m.setNotice(fmt.Sprintf("Voice input: %v", err), true)
		}
		return nil
	}

	m.voiceOn = true
	m.voiceBuf.Set(m.input.Value())
	m.setNotice("Listening... press ctrl+v to stop", false)
	return tea.Batch(m.listenVoice(), m.spinner.Tick)
}

// listenVoice waits for the next recognizer event.
func (m Model) listenVoice() tea.Cmd {
	fragments := m.recognizer.Fragments()
	errs := m.recognizer.Errors()
	return func() tea.Msg {
		select {
		case fragment, ok := <-fragments:
			if !ok {
				return voiceStoppedMsg{}
			}
			return voiceFragmentMsg{fragment: fragment}
		case err, ok := <-errs:
			if !ok {
				return voiceStoppedMsg{}
			}
			return voiceErrorMsg{err: err}
		}
	}
}
