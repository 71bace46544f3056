// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the SYNTX TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The Theme struct bundles the pre-built styles the chat views
render with:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	header := theme.HeaderTitle.Render(conv.Title)

Theme also tracks the terminal size and exposes a LayoutMode so views can
decide whether the conversation sidebar fits:

	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutWide {
		// Render sidebar with previews
	}
*/
package styles
