// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/morganforge/convstore/internal/store"
)

// =============================================================================
// PLAIN TEXT EXPORTER
// =============================================================================

// TextExporter exports conversations as a plain text transcript.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a conversation to a plain text transcript.
func (e *TextExporter) Export(conv *store.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	var sb strings.Builder

	sb.WriteString(conv.Title + "\n")
	sb.WriteString(strings.Repeat("=", len(conv.Title)) + "\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("ID:       %s\n", conv.ID))
		sb.WriteString(fmt.Sprintf("Created:  %s\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("Updated:  %s\n", formatTimestamp(conv.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("Messages: %d\n", len(conv.Messages)))
		sb.WriteString("\n")
	}

	for _, msg := range conv.Messages {
		sb.WriteString(fmt.Sprintf("[%s]\n", roleLabel(msg.Role)))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
