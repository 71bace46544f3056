// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"strings"
	"sync"
)

// Buffer accumulates recognized speech fragments into prompt text.
// Fragments join onto existing text with a single space; typed text and
// dictated text coexist in the same buffer. Safe for concurrent use since
// fragments arrive from the recognizer goroutine while the UI reads.
type Buffer struct {
	mu   sync.Mutex
	text string
}

// NewBuffer creates a buffer seeded with existing prompt text.
func NewBuffer(initial string) *Buffer {
	return &Buffer{text: initial}
}

// Append joins a recognized fragment onto the buffered text. Empty
// fragments are ignored.
func (b *Buffer) Append(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text == "" {
		b.text = fragment
		return
	}
	b.text = b.text + " " + fragment
}

// Text returns the accumulated prompt text.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Set replaces the buffered text, for when the user edits the prompt
// directly between dictation bursts.
func (b *Buffer) Set(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Reset clears the buffer after a submit.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
}
