// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"strings"
	"time"

	"github.com/syntx-system/syntx-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a store-level error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrNotFound is returned when no conversation has the given ID.
	ErrNotFound = &StoreError{Message: "conversation not found"}

	// ErrLastConversation is returned when deleting the only remaining
	// conversation. The store never becomes empty once initialized.
	ErrLastConversation = &StoreError{Message: "cannot delete the last conversation"}

	// ErrEmptyTitle is returned when a rename would set a blank title.
	ErrEmptyTitle = &StoreError{Message: "title is empty"}

	// ErrIndexOutOfRange is returned when a message index does not address
	// an existing message.
	ErrIndexOutOfRange = &StoreError{Message: "message index out of range"}
)

// =============================================================================
// STORE
// =============================================================================

// Store owns the ordered conversation list and the active pointer.
// New conversations are inserted at the front of the list.
type Store struct {
	conversations []*model.Conversation
	activeID      string
}

// New creates a store seeded with the given conversations. With no seed, a
// single empty conversation is created so the store is never empty. The
// first conversation in list order becomes active.
func New(seed []*model.Conversation) *Store {
	s := &Store{}
	if len(seed) == 0 {
		conv := model.NewConversation()
		s.conversations = []*model.Conversation{conv}
		s.activeID = conv.ID
		return s
	}
	s.conversations = seed
	s.activeID = seed[0].ID
	return s
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversations returns the conversation list in store order.
// Callers must treat the returned slice as read-only.
func (s *Store) Conversations() []*model.Conversation {
	return s.conversations
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	return len(s.conversations)
}

// Get returns the conversation with the given ID, or nil.
func (s *Store) Get(id string) *model.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// ActiveID returns the ID of the active conversation.
func (s *Store) ActiveID() string {
	return s.activeID
}

// Active returns the active conversation, or nil only transiently before
// first load.
func (s *Store) Active() *model.Conversation {
	return s.Get(s.activeID)
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Create inserts a new empty conversation at the front of the list and
// makes it active.
func (s *Store) Create() *model.Conversation {
	conv := model.NewConversation()
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	return conv
}

// Delete removes a conversation by ID. Deleting the sole remaining
// conversation is rejected with ErrLastConversation. If the deleted
// conversation was active, activation falls back to the first remaining
// conversation in list order.
func (s *Store) Delete(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	if len(s.conversations) == 1 {
		return ErrLastConversation
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.activeID == id {
		s.activeID = s.conversations[0].ID
	}
	return nil
}

// SetActive updates the active pointer. An unknown ID is ignored, leaving
// the current active conversation in place.
func (s *Store) SetActive(id string) {
	if s.Get(id) != nil {
		s.activeID = id
	}
}

// Replace swaps the entire conversation list, activating the first entry.
// Used by import. The list must be non-empty.
func (s *Store) Replace(conversations []*model.Conversation) error {
	if len(conversations) == 0 {
		return ErrNotFound
	}
	s.conversations = conversations
	s.activeID = conversations[0].ID
	return nil
}

// =============================================================================
// CONTENT MUTATIONS (bump UpdatedAt)
// =============================================================================

// AppendMessage appends a message to the target conversation and bumps its
// UpdatedAt.
func (s *Store) AppendMessage(id string, msg model.Message) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now()
	return nil
}

// ReplaceMessages wholesale-replaces a conversation's message list and
// bumps its UpdatedAt. Used by clear and regenerate truncation.
func (s *Store) ReplaceMessages(id string, messages []model.Message) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	if messages == nil {
		messages = make([]model.Message, 0)
	}
	conv.Messages = messages
	conv.UpdatedAt = time.Now()
	return nil
}

// SetTitle renames a conversation. A title that is empty after trimming is
// rejected without state change; otherwise the trimmed title is set
// verbatim and UpdatedAt is bumped.
func (s *Store) SetTitle(id, title string) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	conv.Title = title
	conv.UpdatedAt = time.Now()
	return nil
}

// =============================================================================
// METADATA MUTATIONS (do not bump UpdatedAt)
// =============================================================================

// TogglePin flips the pinned flag.
func (s *Store) TogglePin(id string) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	conv.Pinned = !conv.Pinned
	return nil
}

// SetTags replaces a conversation's tag set, de-duplicated and with order
// preserved from the input.
func (s *Store) SetTags(id string, tags []string) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	conv.Tags = dedupeTags(tags)
	return nil
}

// AddTags appends tags the conversation does not already carry. Existing
// tags are never removed.
func (s *Store) AddTags(id string, tags []string) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	for _, tag := range tags {
		if tag != "" && !conv.HasTag(tag) {
			conv.Tags = append(conv.Tags, tag)
		}
	}
	return nil
}

// ToggleReaction sets the reaction on the addressed message, or clears it
// when it already equals the given reaction. An index that does not address
// an existing message is rejected without side effects.
func (s *Store) ToggleReaction(id string, messageIndex int, reaction model.Reaction) error {
	conv := s.Get(id)
	if conv == nil {
		return ErrNotFound
	}
	if messageIndex < 0 || messageIndex >= len(conv.Messages) {
		return ErrIndexOutOfRange
	}
	msg := &conv.Messages[messageIndex]
	if msg.Reaction == reaction {
		msg.Reaction = model.ReactionNone
	} else {
		msg.Reaction = reaction
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns conversations whose title, tags or message content contain
// the query (case-insensitive), in store order. An empty query returns all
// conversations.
func (s *Store) Search(query string) []*model.Conversation {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.conversations
	}

	var results []*model.Conversation
	for _, conv := range s.conversations {
		if conversationMatches(conv, query) {
			results = append(results, conv)
		}
	}
	return results
}

func conversationMatches(conv *model.Conversation, query string) bool {
	if strings.Contains(strings.ToLower(conv.Title), query) {
		return true
	}
	for _, tag := range conv.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	for _, msg := range conv.Messages {
		if strings.Contains(strings.ToLower(msg.Content), query) {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) indexOf(id string) int {
	for i, conv := range s.conversations {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
