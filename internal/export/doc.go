// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts conversations into downloadable artifacts.
//
// Four formats are supported: Markdown for reading, JSON for re-import,
// plain text for pasting, and CSV for spreadsheets. Each exporter takes a
// conversation and produces bytes; ExportToFile wraps that with filename
// derivation and the actual write.
package export
