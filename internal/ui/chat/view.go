// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains all rendering logic for the chat interface: header,
// conversation sidebar, message viewport, input area, status bar, and the
// help and stats overlays.
package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/syntx-system/syntx-tui/internal/analytics"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/ui/styles"
	"github.com/syntx-system/syntx-tui/internal/util"
)

// Fixed row counts used by handleResize to size the viewport.
const (
	headerHeight = 1
	inputHeight  = 2
	statusHeight = 1
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.showStats {
		return m.renderStatsOverlay()
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	body := m.viewport.View()
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	conv := m.store.Active()

	brand := m.theme.HeaderBrand.Render("SYNTX")
	title := ""
	meta := ""
	if conv != nil {
		title = m.theme.HeaderTitle.Render(util.TruncateWidth(conv.Title, m.width/2))
		parts := make([]string, 0, 3)
		if conv.Pinned {
			parts = append(parts, "pinned")
		}
		if len(conv.Tags) > 0 {
			parts = append(parts, strings.Join(conv.Tags, ", "))
		}
		parts = append(parts, fmt.Sprintf("%d messages", conv.MessageCount()))
		meta = m.theme.HeaderMeta.Render(" | " + strings.Join(parts, " | "))
	}

	line := brand + " " + title + meta
	return m.theme.Header.Width(m.width).Render(util.TruncateWidth(line, m.width-2))
}

// =============================================================================
// SIDEBAR
// =============================================================================

// visibleConversations returns the sidebar ordering: pinned conversations
// first, then the rest in store order, filtered by the search query.
func (m Model) visibleConversations() []*model.Conversation {
	conversations := m.store.Conversations()
	if m.searchQuery != "" {
		conversations = m.store.Search(m.searchQuery)
	}

	ordered := make([]*model.Conversation, len(conversations))
	copy(ordered, conversations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Pinned && !ordered[j].Pinned
	})
	return ordered
}

func (m Model) renderSidebar() string {
	width := m.sidebarWidth()
	inner := width - 2
	if inner < 4 {
		inner = 4
	}

	var sb strings.Builder
	if m.searchQuery != "" {
		sb.WriteString(m.theme.SidebarMeta.Render(util.TruncateWidth("filter: "+m.searchQuery, inner)))
		sb.WriteString("\n")
	}

	active := m.store.ActiveID()
	for i, conv := range m.visibleConversations() {
		marker := "  "
		if conv.Pinned {
			marker = m.theme.SidebarPin.Render("* ")
		}

		label := fmt.Sprintf("%d. %s", i+1, conv.Title)
		label = util.TruncateWidth(label, inner-2)

		if conv.ID == active {
			sb.WriteString(marker + m.theme.SidebarItemActive.Render(label))
		} else {
			sb.WriteString(marker + m.theme.SidebarItem.Render(label))
		}
		sb.WriteString("\n")

		showPreview := m.theme.GetLayoutMode() == styles.LayoutWide
		if m.cfg != nil && m.cfg.UI.CompactMode {
			showPreview = false
		}
		if showPreview && !conv.IsEmpty() {
			preview := util.CollapseNewlines(conv.Preview(inner - 4))
			sb.WriteString("  " + m.theme.SidebarMeta.Render(util.TruncateWidth(preview, inner-2)))
			sb.WriteString("\n")
		}
	}

	return m.theme.Sidebar.
		Width(width).
		Height(m.viewport.Height).
		MaxHeight(m.viewport.Height).
		Render(sb.String())
}

// =============================================================================
// MESSAGES
// =============================================================================

// refreshViewport re-renders the active conversation into the viewport.
func (m *Model) refreshViewport() {
	conv := m.store.Active()
	if conv == nil {
		m.viewport.SetContent("")
		return
	}

	if conv.IsEmpty() {
		m.viewport.SetContent(m.theme.MessageMeta.Render("\n  No messages yet. Type below to start."))
		return
	}

	var sb strings.Builder
	for _, msg := range conv.Messages {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
}

func (m Model) renderMessage(msg model.Message) string {
	label := msg.Role.DisplayName()
	meta := label
	if m.cfg == nil || m.cfg.UI.ShowTimestamps {
		meta = fmt.Sprintf("%s  %s", label, msg.Timestamp.Format("15:04"))
	}
	switch msg.Reaction {
	case model.ReactionUp:
		meta += "  " + m.theme.ReactionUp.Render("[+1]")
	case model.ReactionDown:
		meta += "  " + m.theme.ReactionDown.Render("[-1]")
	}

	compact := m.cfg != nil && m.cfg.UI.CompactMode

	content := msg.Content
	bubble := m.theme.UserBubble
	if msg.Role == model.RoleAssistant {
		bubble = m.theme.AssistantBubble
		if strings.HasPrefix(content, "Error:") {
			bubble = m.theme.ErrorBubble
		} else if m.mdRenderer != nil {
			if rendered, err := m.mdRenderer.Render(content); err == nil {
				content = strings.Trim(rendered, "\n")
			}
		}
	}

	width := m.contentWidth()
	if compact {
		return bubble.Width(width).Render(content) + "\n"
	}
	return m.theme.MessageMeta.Render(meta) + "\n" +
		bubble.Width(width).Render(content) + "\n"
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	line := m.input.View()
	if m.voiceOn {
		line = m.theme.VoiceActive.Render("[mic] ") + line
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.pending():
		left = m.spinner.View() + " " + m.theme.StatusNotice.Render("Waiting for reply...")
	case m.noticeErr:
		left = m.theme.StatusError.Render(m.notice)
	case m.notice != "":
		left = m.theme.StatusNotice.Render(m.notice)
	default:
		var hints []string
		for _, b := range m.keys.ShortHelp() {
			hints = append(hints,
				m.theme.ShortcutKey.Render(b.Help().Key)+" "+m.theme.ShortcutDesc.Render(b.Help().Desc))
		}
		left = strings.Join(hints, "  ")
	}

	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(left, m.width-2))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderHelpOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Keyboard shortcuts"))
	sb.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.HelpKey.Render(fmt.Sprintf("%-10s", b.Help().Key)),
				m.theme.HelpDesc.Render(b.Help().Desc)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.theme.HeaderTitle.Render("Commands"))
	sb.WriteString("\n\n")
	commands := []struct{ name, desc string }{
		{"/new", "start a conversation"},
		{"/delete [n]", "delete a conversation"},
		{"/switch <n>", "switch by sidebar number"},
		{"/rename <title>", "rename the conversation"},
		{"/clear yes", "clear messages, keep the conversation"},
		{"/pin", "pin or unpin"},
		{"/tag <tag>...", "add tags"},
		{"/react <up|down> [n]", "react to a reply"},
		{"/regen", "regenerate the last reply"},
		{"/export [format]", "export (markdown, json, txt, csv)"},
		{"/import <file>", "import conversations from JSON"},
		{"/search <text>", "filter the sidebar"},
		{"/stats", "usage statistics"},
		{"/voice", "toggle voice input"},
		{"/quit", "exit"},
	}
	for _, c := range commands {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			m.theme.HelpKey.Render(fmt.Sprintf("%-22s", c.name)),
			m.theme.HelpDesc.Render(c.desc)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.HelpDesc.Render("Press esc to close"))

	return m.centerOverlay(m.theme.HelpBox.Render(sb.String()))
}

func (m Model) renderStatsOverlay() string {
	stats := analytics.Compute(m.store.Conversations())

	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Usage statistics"))
	sb.WriteString("\n\n")

	row := func(label string, value interface{}) {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.StatsLabel.Render(fmt.Sprintf("%-24s", label)),
			m.theme.StatsValue.Render(fmt.Sprintf("%v", value))))
	}

	row("Conversations", stats.Conversations)
	row("Pinned", stats.Pinned)
	row("Messages", stats.Messages)
	row("Prompts", stats.UserMessages)
	row("Replies", stats.Replies)
	row("Reactions +1 / -1", fmt.Sprintf("%d / %d", stats.ReactionsUp, stats.ReactionsDown))
	row("Avg messages per chat", fmt.Sprintf("%.1f", stats.AvgMessagesPerConversation))
	if stats.BusiestTitle != "" {
		row("Busiest", fmt.Sprintf("%s (%d)", stats.BusiestTitle, stats.BusiestMessages))
	}

	if top := stats.TopTags(); len(top) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.theme.HeaderTitle.Render("Tags"))
		sb.WriteString("\n\n")
		for _, tc := range top {
			row(tc.Tag, tc.Count)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.HelpDesc.Render("Press esc to close"))

	return m.centerOverlay(m.theme.HelpBox.Render(sb.String()))
}

// centerOverlay places a box in the middle of the screen.
func (m Model) centerOverlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
