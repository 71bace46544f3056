// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analytics computes usage statistics over the conversation list.
//
// Everything here is derived on demand from store state; nothing is
// collected or sent anywhere.
package analytics
