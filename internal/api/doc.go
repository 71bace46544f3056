// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the SYNTX completion endpoint.
//
// The endpoint takes a single prompt and returns a single complete reply;
// there is no streaming and no retry logic. One request maps to one
// response, and failed requests surface as classified ClientError values
// so callers can render a meaningful error bubble instead of a stack trace.
package api
