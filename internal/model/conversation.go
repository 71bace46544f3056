// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/syntx-system/syntx-tui/internal/util"
)

// TitleRuneLimit is the maximum length of an auto-derived conversation
// title. Longer first prompts are truncated to this many runes plus an
// ellipsis.
const TitleRuneLimit = 30

// DefaultTitle is the placeholder title of a conversation before its first
// submitted prompt.
const DefaultTitle = "New Conversation"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a titled, taggable thread of chronological messages.
//
// ID is assigned at creation and immutable; it is the sole addressing key.
// UpdatedAt tracks the last content-affecting change (message append, clear,
// rename). Pin, tag and reaction mutations deliberately leave it untouched.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Tags      []string  `json:"tags"`
	Pinned    bool      `json:"pinned"`
}

// NewConversation creates an empty conversation with a generated unique ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     DefaultTitle,
		Messages:  make([]Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      make([]string, 0),
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return &c.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// HasTag reports whether the conversation already carries the given tag.
func (c *Conversation) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Preview returns a short single-line preview of the conversation, taken
// from the first user message.
func (c *Conversation) Preview(maxRunes int) string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(maxRunes)
		}
	}
	return "Empty conversation"
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	clone.Tags = make([]string, len(c.Tags))
	copy(clone.Tags, c.Tags)
	return &clone
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle produces a conversation title from a first prompt: the prompt
// verbatim when it fits in TitleRuneLimit runes, otherwise the first
// TitleRuneLimit runes with an ellipsis appended.
func DeriveTitle(prompt string) string {
	return util.TruncateRunes(util.CollapseNewlines(prompt), TitleRuneLimit)
}

// HasDerivedTitle reports whether the conversation title has already been
// set by a prior submit or manual edit. The default placeholder does not
// count; an auto-derived or user-edited title is never overwritten.
func (c *Conversation) HasDerivedTitle() bool {
	return c.Title != "" && c.Title != DefaultTitle
}
