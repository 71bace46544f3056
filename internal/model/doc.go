// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// Messages are immutable records of one turn: once appended to a
// conversation, their role, content and timestamp never change. The only
// mutable message field is the reaction. Conversations are addressed by an
// opaque ID assigned at creation.
package model
