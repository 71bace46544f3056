// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the command handler registry: each slash command
// gets its own small handler instead of one monolithic switch.
package chat

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syntx-system/syntx-tui/internal/export"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/storage"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles a single slash command. It may mutate the model
// and return a command for asynchronous work.
type CommandHandler func(m *Model, args []string) tea.Cmd

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	// Help & meta
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	// Conversation management
	"new":    handleNewCommand,
	"n":      handleNewCommand,
	"delete": handleDeleteCommand,
	"del":    handleDeleteCommand,
	"switch": handleSwitchCommand,
	"sw":     handleSwitchCommand,
	"rename": handleRenameCommand,
	"clear":  handleClearCommand,
	"c":      handleClearCommand,
	"pin":    handlePinCommand,

	// Message operations
	"regen": handleRegenCommand,
	"r":     handleRegenCommand,
	"react": handleReactCommand,
	"tag":   handleTagCommand,

	// Data in and out
	"export": handleExportCommand,
	"e":      handleExportCommand,
	"import": handleImportCommand,

	// Discovery
	"search": handleSearchCommand,
	"stats":  handleStatsCommand,

	// Input modes
	"voice": handleVoiceCommand,
}

// handleCommand dispatches a slash command through the registry.
func (m *Model) handleCommand(content string) tea.Cmd {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	handler, ok := commandHandlers[name]
	if !ok {
		m.setNotice(fmt.Sprintf("Unknown command %q. Type /help for the list.", parts[0]), true)
		return nil
	}
	return handler(m, parts[1:])
}

// =============================================================================
// HELP & META
// =============================================================================

func handleHelpCommand(m *Model, _ []string) tea.Cmd {
	m.showHelp = !m.showHelp
	m.showStats = false
	return nil
}

func handleQuitCommand(_ *Model, _ []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

func handleNewCommand(m *Model, _ []string) tea.Cmd {
	conv := m.controller.NewConversation()
	m.setNotice(fmt.Sprintf("Started %q", conv.Title), false)
	m.refreshViewport()
	return nil
}

func handleDeleteCommand(m *Model, args []string) tea.Cmd {
	id := m.store.ActiveID()
	if len(args) > 0 {
		conv := m.conversationAt(args[0])
		if conv == nil {
			m.setNotice(fmt.Sprintf("No conversation %q", args[0]), true)
			return nil
		}
		id = conv.ID
	}

	target := m.store.Get(id)
	if err := m.controller.DeleteConversation(id); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	if target != nil {
		m.setNotice(fmt.Sprintf("Deleted %q", target.Title), false)
	}
	m.refreshViewport()
	return nil
}

func handleSwitchCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setNotice("Usage: /switch <number>", true)
		return nil
	}
	conv := m.conversationAt(args[0])
	if conv == nil {
		m.setNotice(fmt.Sprintf("No conversation %q", args[0]), true)
		return nil
	}
	m.controller.SwitchConversation(conv.ID)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return nil
}

func handleRenameCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setNotice("Usage: /rename <new title>", true)
		return nil
	}
	title := strings.Join(args, " ")
	if err := m.controller.Rename(m.store.ActiveID(), title); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.setNotice(fmt.Sprintf("Renamed to %q", strings.TrimSpace(title)), false)
	return nil
}

// Clearing is destructive, so it asks for an explicit confirmation.
func handleClearCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 || strings.ToLower(args[0]) != "yes" {
		m.setNotice("This removes every message in the conversation. Type /clear yes to confirm.", false)
		return nil
	}
	m.controller.ClearActive()
	m.setNotice("Cleared conversation", false)
	m.refreshViewport()
	return nil
}

func handlePinCommand(m *Model, _ []string) tea.Cmd {
	id := m.store.ActiveID()
	if err := m.controller.TogglePin(id); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	if conv := m.store.Get(id); conv != nil && conv.Pinned {
		m.setNotice("Pinned", false)
	} else {
		m.setNotice("Unpinned", false)
	}
	return nil
}

// conversationAt resolves a 1-based index from the sidebar ordering.
func (m *Model) conversationAt(arg string) *model.Conversation {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil
	}
	conversations := m.visibleConversations()
	if n < 1 || n > len(conversations) {
		return nil
	}
	return conversations[n-1]
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

func handleRegenCommand(m *Model, _ []string) tea.Cmd {
	return m.startRegenerate()
}

func handleReactCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setNotice("Usage: /react <up|down> [message number]", true)
		return nil
	}

	var reaction model.Reaction
	switch strings.ToLower(args[0]) {
	case "up", "+1":
		reaction = model.ReactionUp
	case "down", "-1":
		reaction = model.ReactionDown
	default:
		m.setNotice("Usage: /react <up|down> [message number]", true)
		return nil
	}

	conv := m.store.Active()
	if conv == nil {
		return nil
	}

	// Default to the latest reply.
	index := -1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > len(conv.Messages) {
			m.setNotice(fmt.Sprintf("No message %q", args[1]), true)
			return nil
		}
		index = n - 1
	} else {
		for i := len(conv.Messages) - 1; i >= 0; i-- {
			if conv.Messages[i].Role == model.RoleAssistant {
				index = i
				break
			}
		}
		if index < 0 {
			m.setNotice("No reply to react to", true)
			return nil
		}
	}

	if err := m.controller.React(index, reaction); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.refreshViewport()
	return nil
}

func handleTagCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setNotice("Usage: /tag <tag> [tag...]", true)
		return nil
	}
	if err := m.controller.Tag(m.store.ActiveID(), args); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.setNotice(fmt.Sprintf("Tagged: %s", strings.Join(args, ", ")), false)
	return nil
}

// =============================================================================
// DATA IN AND OUT
// =============================================================================

func handleExportCommand(m *Model, args []string) tea.Cmd {
	conv := m.store.Active()
	if conv == nil {
		return nil
	}

	format := ""
	if m.cfg != nil {
		format = m.cfg.Export.DefaultFormat
	}
	if len(args) > 0 {
		format = args[0]
	}
	if format == "" {
		format = "markdown"
	}

	opts := export.DefaultOptions()
	if m.cfg != nil && m.cfg.Export.Dir != "" {
		opts.OutputDir = m.cfg.Export.Dir
	}

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}

	snapshot := conv.Clone()
	m.setNotice(fmt.Sprintf("Exporting to %s...", format), false)
	return func() tea.Msg {
		path, err := export.ExportToFile(snapshot, exporter, opts)
		return exportDoneMsg{path: path, err: err}
	}
}

func handleImportCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setNotice("Usage: /import <file.json>", true)
		return nil
	}
	path := strings.Join(args, " ")

	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		conversations, err := storage.ParseImport(raw)
		if err != nil {
			return importDoneMsg{err: err}
		}
		return importParsedMsg{conversations: conversations}
	}
}

// importParsedMsg carries parsed conversations back to the update loop so
// the store swap happens on the UI goroutine.
type importParsedMsg struct {
	conversations []*model.Conversation
}

// =============================================================================
// DISCOVERY
// =============================================================================

func handleSearchCommand(m *Model, args []string) tea.Cmd {
	m.searchQuery = strings.Join(args, " ")
	if m.searchQuery == "" {
		m.setNotice("Search cleared", false)
	} else {
		matches := len(m.store.Search(m.searchQuery))
		m.setNotice(fmt.Sprintf("%d conversation(s) match %q", matches, m.searchQuery), false)
	}
	return nil
}

func handleStatsCommand(m *Model, _ []string) tea.Cmd {
	m.showStats = !m.showStats
	m.showHelp = false
	return nil
}

// =============================================================================
// INPUT MODES
// =============================================================================

func handleVoiceCommand(m *Model, _ []string) tea.Cmd {
	return m.toggleVoice()
}
