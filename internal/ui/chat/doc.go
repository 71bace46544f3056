// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for SYNTX.

The Model renders a conversation sidebar, a scrollable message viewport,
a single-line prompt input, and a status bar. All conversation mutations
go through the session controller; the view never touches the store
directly except to read.

Completions run asynchronously: Submit returns a future from the session
controller, the model wraps it in a tea.Cmd, and the resulting
completionMsg is resolved back through the controller so replies land in
the conversation they were requested from.

Slash commands (/new, /export, /react, ...) are dispatched through a
handler registry in commands.go. Keyboard shortcuts are defined in
keys.go using the bubbles key package so the help overlay and status bar
stay in sync with the actual bindings.
*/
package chat
