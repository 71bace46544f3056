// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the authoritative in-memory conversation list and the
// active-conversation pointer.
//
// The Store is the single mutable shared resource of the application. It is
// mutated only through its named operations, never through direct field
// writes from other components. All operations are synchronous; once the
// store is initialized it always contains at least one conversation, and the
// last remaining conversation cannot be deleted.
package store
