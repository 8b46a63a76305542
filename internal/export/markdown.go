// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/morganforge/convstore/internal/store"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *store.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.Title)))
		if conv.ModelKey != nil {
			sb.WriteString(fmt.Sprintf("model: %s\n", escapeYAML(*conv.ModelKey)))
		}
		sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt))
		sb.WriteString(fmt.Sprintf("updated: %s\n", conv.UpdatedAt))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: convstore\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.Title)))

	if e.options.IncludeMetadata {
		sb.WriteString("## Conversation Information\n\n")
		sb.WriteString(fmt.Sprintf("- **ID**: %s\n", conv.ID))
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(conv.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(conv.Messages)))
		if conv.WorkingDirectory != nil {
			sb.WriteString(fmt.Sprintf("- **Working Directory**: %s\n", *conv.WorkingDirectory))
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")
	for i, msg := range conv.Messages {
		sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg.Role)))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeYAML quotes a value for a YAML frontmatter scalar when it contains
// characters that would change its meaning.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#{}[]\"'\n") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// escapeMarkdown escapes characters with heading-level significance.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("#", "\\#", "*", "\\*", "_", "\\_", "`", "\\`")
	return replacer.Replace(s)
}
