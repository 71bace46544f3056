// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the durable mirror of the conversation store.
//
// Conversations persist as one JSON document in a key-value slot backed by
// SQLite. The slot is a write-behind cache of the in-memory store, never a
// source of truth once the store is loaded. Loading tolerates
// partially-shaped stored data: missing optional fields default instead of
// failing, and an unreadable slot is treated as absent state.
package storage
