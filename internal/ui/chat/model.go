// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/syntx-system/syntx-tui/internal/config"
	"github.com/syntx-system/syntx-tui/internal/session"
	"github.com/syntx-system/syntx-tui/internal/store"
	"github.com/syntx-system/syntx-tui/internal/ui/styles"
	"github.com/syntx-system/syntx-tui/internal/voice"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns the terminal
// state (viewport, input, spinner) and delegates every conversation
// mutation to the session controller.
type Model struct {
	controller *session.Controller
	store      *store.Store
	cfg        *config.Config

	keys  KeyMap
	theme *styles.Theme

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	// Overlays and transient state
	showHelp  bool
	showStats bool
	notice    string
	noticeErr bool

	// Search filter; empty means no filter.
	searchQuery string

	// Voice capture
	recognizer voice.Recognizer
	voiceBuf   *voice.Buffer
	voiceOn    bool

	// Markdown renderer, rebuilt on resize. Nil when markdown is off or
	// glamour failed to initialize; rendering falls back to plain text.
	mdRenderer *glamour.TermRenderer
}

// New creates the chat model. The recognizer may be voice.NewUnsupported()
// when no speech backend is available.
func New(controller *session.Controller, recognizer voice.Recognizer, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message or /help..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Line

	m := Model{
		controller: controller,
		store:      controller.Store(),
		cfg:        cfg,
		keys:       DefaultKeyMap(),
		theme:      styles.NewTheme(),
		input:      ti,
		spinner:    sp,
		recognizer: recognizer,
		voiceBuf:   voice.NewBuffer(""),
	}
	m.spinner.Style = m.theme.Spinner
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// pending reports whether a completion is in flight.
func (m Model) pending() bool {
	return m.controller.PendingCount() > 0
}

// setNotice replaces the status-bar notice.
func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// rebuildRenderer recreates the glamour renderer for the current width.
func (m *Model) rebuildRenderer() {
	m.mdRenderer = nil
	if m.cfg == nil || !m.cfg.UI.RenderMarkdown {
		return
	}

	style := glamour.WithAutoStyle()
	switch m.cfg.UI.Theme {
	case "dark":
		style = glamour.WithStandardStyle("dark")
	case "light":
		style = glamour.WithStandardStyle("light")
	}

	wrap := m.contentWidth()
	if wrap < 20 {
		wrap = 20
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return
	}
	m.mdRenderer = r
}

// contentWidth returns the width available for message text.
func (m Model) contentWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= m.sidebarWidth()
	}
	// Bubble border and padding
	w -= 4
	if w < 1 {
		w = 1
	}
	return w
}

// sidebarVisible reports whether the conversation sidebar fits.
func (m Model) sidebarVisible() bool {
	return m.theme.GetLayoutMode() != styles.LayoutNarrow
}

// sidebarWidth returns the configured sidebar width, clamped to the layout.
func (m Model) sidebarWidth() int {
	w := 32
	if m.cfg != nil && m.cfg.UI.SidebarWidth > 0 {
		w = m.cfg.UI.SidebarWidth
	}
	if m.theme.GetLayoutMode() == styles.LayoutMedium && w > 24 {
		w = 24
	}
	if max := m.width / 2; w > max {
		w = max
	}
	return w
}
