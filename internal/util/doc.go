// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helper functions shared across convstore.
//
// String helpers are rune- and width-aware: TruncateRunes counts
// characters (not bytes) so multi-byte UTF-8 text is never split
// mid-character, and the width helpers account for double-width CJK
// characters via go-runewidth when laying out terminal columns.
//
// AtomicWriteFile writes files crash-safely (temp file, fsync, rename).
package util
