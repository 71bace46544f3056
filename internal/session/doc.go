// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates the conversation lifecycle: it owns the
// submit flow, completion resolution, regeneration, and the coupling
// between store mutations and persistence.
//
// The Controller is the only component that mutates the store in response
// to user actions. Completions resolve against the conversation that was
// active at submit time, identified by its captured ID; a reply whose
// conversation was deleted in flight is dropped silently.
package session
