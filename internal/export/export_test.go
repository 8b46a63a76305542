// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morganforge/convstore/internal/store"
)

func testConversation() *store.Conversation {
	model := "test-model"
	return &store.Conversation{
		ID:        "test-123",
		Title:     "Test Conversation",
		CreatedAt: "2025-03-01T09:00:00.000000000Z",
		UpdatedAt: "2025-03-01T10:00:00.000000000Z",
		ModelKey:  &model,
		Messages: []store.Message{
			{Role: "user", Content: "Hello"},
			{Role: "assistant", Content: "Hi there!"},
		},
		MessageCount: 2,
	}
}

// =============================================================================
// FORMAT SELECTION
// =============================================================================

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{
		"txt":  ".txt",
		"md":   ".md",
		"json": ".json",
	} {
		exporter, err := ForFormat(format, nil)
		if err != nil {
			t.Fatalf("ForFormat(%q) failed: %v", format, err)
		}
		if exporter.FileExtension() != ext {
			t.Errorf("ForFormat(%q).FileExtension() = %q, want %q", format, exporter.FileExtension(), ext)
		}
	}

	if _, err := ForFormat("pdf", nil); err == nil {
		t.Error("ForFormat should reject unknown formats")
	}
}

// =============================================================================
// EXPORTERS
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	exporter := NewMarkdownExporter(nil)

	content, err := exporter.Export(testConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(content)

	if !strings.HasPrefix(md, "---\n") {
		t.Error("Markdown should start with YAML frontmatter")
	}
	if !strings.Contains(md, "title: Test Conversation") {
		t.Error("frontmatter should contain the title")
	}
	if !strings.Contains(md, "model: test-model") {
		t.Error("frontmatter should contain the model key")
	}
	if !strings.Contains(md, "### User") || !strings.Contains(md, "### Assistant") {
		t.Error("Markdown should contain role headings")
	}
	if !strings.Contains(md, "Hello") {
		t.Error("Markdown should contain message content")
	}

	if _, err := exporter.Export(nil); err == nil {
		t.Error("Export(nil) should fail")
	}
}

func TestMarkdownExporter_WithoutMetadata(t *testing.T) {
	exporter := NewMarkdownExporter(&Options{IncludeMetadata: false})

	content, err := exporter.Export(testConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(string(content), "---\ntitle:") {
		t.Error("frontmatter should be omitted without metadata")
	}
}

func TestJSONExporter_Faithful(t *testing.T) {
	exporter := NewJSONExporter(nil)
	conv := testConversation()

	content, err := exporter.Export(conv)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var back store.Conversation
	if err := json.Unmarshal(content, &back); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if back.ID != conv.ID || back.Title != conv.Title || len(back.Messages) != 2 {
		t.Error("exported JSON is not a faithful copy of the record")
	}
}

func TestTextExporter(t *testing.T) {
	exporter := NewTextExporter(nil)

	content, err := exporter.Export(testConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	txt := string(content)

	if !strings.Contains(txt, "Test Conversation") {
		t.Error("text export should contain the title")
	}
	if !strings.Contains(txt, "[User]") || !strings.Contains(txt, "[Assistant]") {
		t.Error("text export should contain role labels")
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{OutputDir: dir, IncludeMetadata: true}

	path, err := ExportToFile(testConversation(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	if filepath.Ext(path) != ".md" {
		t.Errorf("output extension = %q, want .md", filepath.Ext(path))
	}
	if !strings.Contains(filepath.Base(path), "test-conversation") {
		t.Errorf("filename %q should contain the slugified title", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestExportToFile_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{OutputDir: dir}
	exporter := NewTextExporter(opts)

	p1, err := ExportToFile(testConversation(), exporter, opts)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := ExportToFile(testConversation(), exporter, opts)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Error("back-to-back exports should not collide on filename")
	}
}
