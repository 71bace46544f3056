// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syntx-system/syntx-tui/internal/config"
	"github.com/syntx-system/syntx-tui/internal/session"
)

// =============================================================================
// TEA MESSAGES
// =============================================================================

// completionMsg carries a finished completion back into the update loop.
type completionMsg struct {
	result session.Completion
}

// exportDoneMsg reports the outcome of an asynchronous export.
type exportDoneMsg struct {
	path string
	err  error
}

// importDoneMsg reports a failed asynchronous import. Successful parses
// arrive as importParsedMsg instead so the store swap happens on the UI
// goroutine.
type importDoneMsg struct {
	err error
}

// voiceFragmentMsg carries one recognized speech fragment.
type voiceFragmentMsg struct {
	fragment string
}

// voiceErrorMsg reports a recognizer failure.
type voiceErrorMsg struct {
	err error
}

// voiceStoppedMsg signals the recognizer closed its fragment stream.
type voiceStoppedMsg struct{}

// configReloadedMsg carries a hot-reloaded configuration.
type configReloadedMsg struct {
	cfg *config.Config
}

// ConfigReloaded builds the message the config watcher sends into the
// running program when the config file changes on disk.
func ConfigReloaded(cfg *config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}
