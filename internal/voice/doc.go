// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice defines the speech-capture boundary.
//
// A Recognizer turns microphone audio into text fragments. The package
// itself ships no real engine; terminals have no portable speech API, so
// the default recognizer reports ErrUnsupported and the input flow treats
// voice as an optional enhancement. The Buffer accumulates recognized
// fragments into the prompt text so partial dictation is never lost when
// capture stops.
package voice
