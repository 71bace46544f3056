// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/syntx-system/syntx-tui/internal/model"
)

// SlotKey is the durable slot holding the serialized conversation list.
// The name is carried over from the original SYNTX web client so exports
// and imports stay interchangeable.
const SlotKey = "syntx-conversations"

// =============================================================================
// IMPORT VALIDATION ERRORS
// =============================================================================

// ImportError is a validation failure on an imported payload. The existing
// store is left untouched when one is returned.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return "invalid import: " + e.Message + ": " + e.Cause.Error()
	}
	return "invalid import: " + e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter serializes the conversation list to the durable slot and
// reconstructs it on load. Saves may be queued asynchronously; the
// background writer always persists the most recent snapshot, so a burst of
// mutations collapses into one write (debounced write-through).
type Adapter struct {
	slot *Slot
	key  string

	mu         sync.Mutex
	pending    []*model.Conversation
	pendingSeq uint64
	seq        uint64
	kick       chan struct{}
	done       chan struct{}
	onError    func(error)

	// wmu serializes slot writes; savedSeq gates out stale snapshots so
	// an in-flight background write can never overwrite a newer flush.
	wmu      sync.Mutex
	savedSeq uint64
}

// NewAdapter creates an adapter over the given slot. onError is invoked for
// asynchronous save failures; it may be nil. The background writer runs
// until Close.
func NewAdapter(slot *Slot, onError func(error)) *Adapter {
	a := &Adapter{
		slot:    slot,
		key:     SlotKey,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		onError: onError,
	}
	go a.writeLoop()
	return a
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the previously stored conversation list. It returns nil with
// no error when no prior state exists. Unreadable or malformed slot content
// is also treated as absent state: the worst case is a fresh start, never a
// crash.
func (a *Adapter) Load() ([]*model.Conversation, error) {
	raw, ok, err := a.slot.Get(a.key)
	if err != nil {
		// Degraded but interactive beats dead on arrival.
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	conversations, err := Decode(raw)
	if err != nil {
		return nil, nil
	}
	return conversations, nil
}

// Decode parses a serialized conversation list, reconstructing date fields
// and defaulting optional fields: missing tags become an empty set, missing
// pinned false, missing or unknown reactions none.
func Decode(raw []byte) ([]*model.Conversation, error) {
	var conversations []*model.Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		return nil, err
	}
	for _, conv := range conversations {
		normalize(conv)
	}
	return conversations, nil
}

// normalize applies backward-compatible defaults to a decoded conversation.
func normalize(conv *model.Conversation) {
	if conv.Tags == nil {
		conv.Tags = make([]string, 0)
	}
	if conv.Messages == nil {
		conv.Messages = make([]model.Message, 0)
	}
	for i := range conv.Messages {
		if !conv.Messages[i].Reaction.Valid() {
			conv.Messages[i].Reaction = model.ReactionNone
		}
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Encode serializes the full conversation list in the persisted shape.
// Dates round-trip through RFC 3339 with sub-millisecond precision.
func Encode(conversations []*model.Conversation) ([]byte, error) {
	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return nil, &SlotError{Op: "put", Message: "failed to encode conversations", Cause: err}
	}
	return data, nil
}

// Save synchronously serializes the full list and overwrites the durable
// slot. The snapshot is stamped newer than anything queued so far.
func (a *Adapter) Save(conversations []*model.Conversation) error {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	return a.commit(conversations, seq)
}

// commit writes one stamped snapshot. Writes are serialized, and a
// snapshot older than the last committed one is dropped: the slot only
// ever moves forward.
func (a *Adapter) commit(conversations []*model.Conversation, seq uint64) error {
	data, err := Encode(conversations)
	if err != nil {
		return err
	}

	a.wmu.Lock()
	defer a.wmu.Unlock()
	if seq <= a.savedSeq {
		return nil
	}
	if err := a.slot.Put(a.key, data); err != nil {
		return err
	}
	a.savedSeq = seq
	return nil
}

// SaveAsync queues a snapshot for the background writer and returns
// immediately. The caller's snapshot must not be mutated afterwards; pass
// cloned conversations.
func (a *Adapter) SaveAsync(conversations []*model.Conversation) {
	a.mu.Lock()
	a.seq++
	a.pending = conversations
	a.pendingSeq = a.seq
	a.mu.Unlock()

	select {
	case a.kick <- struct{}{}:
	default:
		// A write is already pending; it will pick up the latest snapshot.
	}
}

// takePending dequeues the queued snapshot and its stamp, if any.
func (a *Adapter) takePending() ([]*model.Conversation, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending, seq := a.pending, a.pendingSeq
	a.pending = nil
	return pending, seq
}

// Flush synchronously persists any pending snapshot. Used at teardown.
func (a *Adapter) Flush() error {
	pending, seq := a.takePending()
	if pending == nil {
		return nil
	}
	return a.commit(pending, seq)
}

// Close stops the background writer and flushes pending state.
func (a *Adapter) Close() error {
	close(a.done)
	return a.Flush()
}

func (a *Adapter) writeLoop() {
	for {
		select {
		case <-a.done:
			return
		case <-a.kick:
			pending, seq := a.takePending()
			if pending == nil {
				continue
			}
			if err := a.commit(pending, seq); err != nil && a.onError != nil {
				a.onError(err)
			}
		}
	}
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// importRecord mirrors the persisted conversation shape with pointer fields
// so structurally missing keys can be told apart from empty values.
type importRecord struct {
	ID       *string          `json:"id"`
	Title    string           `json:"title"`
	Messages *[]model.Message `json:"messages"`
}

// Import parses rawText as a full conversation list in the persisted shape
// and returns the validated conversations. Invalid JSON or entries missing
// the structural fields (id, messages) are rejected with an ImportError and
// nothing is returned; callers then leave the current store untouched.
// The parsed list fully replaces the store's content; imports never merge.
func (a *Adapter) Import(rawText []byte) ([]*model.Conversation, error) {
	return ParseImport(rawText)
}

// ParseImport validates and decodes an import payload.
func ParseImport(rawText []byte) ([]*model.Conversation, error) {
	var records []importRecord
	if err := json.Unmarshal(rawText, &records); err != nil {
		return nil, &ImportError{Message: "payload is not a conversation list", Cause: err}
	}
	if len(records) == 0 {
		return nil, &ImportError{Message: "payload contains no conversations"}
	}
	for i, rec := range records {
		if rec.ID == nil || *rec.ID == "" {
			return nil, &ImportError{Message: fmt.Sprintf("entry %d is missing id", i)}
		}
		if rec.Messages == nil {
			return nil, &ImportError{Message: fmt.Sprintf("entry %d is missing messages", i)}
		}
	}

	// Structure is sound; decode fully with the usual defaulting.
	conversations, err := Decode(rawText)
	if err != nil {
		return nil, &ImportError{Message: "payload failed to decode", Cause: err}
	}
	return conversations, nil
}

// Export produces the same serialized form as Save, for the caller to write
// to a downloadable artifact.
func (a *Adapter) Export(conversations []*model.Conversation) ([]byte, error) {
	return Encode(conversations)
}
