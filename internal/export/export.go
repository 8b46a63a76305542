// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversation transcripts to files in various
// formats (plain text, Markdown, JSON).
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/morganforge/convstore/internal/store"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to a target format.
type Exporter interface {
	// Export renders the conversation and returns the content.
	Export(conv *store.Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type of the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written.
	// Default: current working directory.
	OutputDir string

	// IncludeMetadata includes a metadata header (timestamps, model,
	// message count) in formats that support one.
	IncludeMetadata bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
	}
}

// ForFormat returns the exporter for a format name: "txt", "md", or "json".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch format {
	case "txt", "text":
		return NewTextExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (expected txt, md, or json)", format)
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ExportToFile renders the conversation with the given exporter and writes
// it under opts.OutputDir, returning the output file path. File names carry
// a timestamp plus a short random suffix so repeated exports in the same
// second never collide.
func ExportToFile(conv *store.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("conversation_%s_%s_%s%s",
		store.Slugify(conv.Title),
		timestamp,
		uuid.NewString()[:8],
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// SHARED FORMAT HELPERS
// =============================================================================

// roleLabel maps a message role to its display label.
func roleLabel(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "system":
		return "System"
	case "tool":
		return "Tool"
	default:
		return role
	}
}

// formatTimestamp renders a stored timestamp for humans. Unparseable or
// empty timestamps pass through unchanged.
func formatTimestamp(ts string) string {
	t, err := time.Parse(store.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}
