// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/morganforge/convstore/internal/util"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// TimestampLayout is a fixed-width RFC3339 layout with nanosecond precision.
// Timestamps are stored and compared as strings, so the layout must keep
// lexicographic order equal to chronological order; the fixed fraction width
// is what guarantees that.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Message is a single conversation turn. Message order within a conversation
// is semantically meaningful and preserved verbatim.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the full persisted record, one JSON file per conversation.
// MessageCount is derived: it always equals len(Messages) at save time.
// The nullable metadata fields marshal to JSON null when unset.
type Conversation struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
	ModelKey         *string   `json:"model_key"`
	SystemPrompt     *string   `json:"system_prompt"`
	WorkingDirectory *string   `json:"working_directory"`
	MessageCount     int       `json:"message_count"`
	Messages         []Message `json:"messages"`
}

// IndexEntry is the lightweight projection of a record used for listing.
type IndexEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
	Preview      string `json:"preview"`
}

// index is the on-disk shape of index.json.
type index struct {
	Conversations []IndexEntry `json:"conversations"`
}

// =============================================================================
// PREVIEW DERIVATION
// =============================================================================

// previewLimit is the maximum preview length in characters. Truncation does
// not try to preserve word boundaries.
const previewLimit = 100

// preview returns up to the first 100 characters of the first message whose
// role is "user", or the empty string when no such message exists.
func preview(messages []Message) string {
	for _, msg := range messages {
		if msg.Role == "user" {
			return util.TruncateRunesNoEllipsis(msg.Content, previewLimit)
		}
	}
	return ""
}

// formatTimestamp renders t in the store's timestamp layout.
func formatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
