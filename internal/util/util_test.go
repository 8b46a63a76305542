// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING HELPERS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input  string
		max    int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 2, "hi"},
		{"hello", 3, "hel"},
		{"", 5, ""},
		{"test", 0, ""},
		{"日本語テキストです", 6, "日本語..."},
	}

	for _, tc := range tests {
		if got := TruncateRunes(tc.input, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello"},
		{"日本語テキスト", 3, "日本語"},
		{"x", 0, ""},
	}

	for _, tc := range tests {
		if got := TruncateRunesNoEllipsis(tc.input, tc.max); got != tc.want {
			t.Errorf("TruncateRunesNoEllipsis(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

func TestStringWidth_CJK(t *testing.T) {
	// Double-width characters count as 2 columns.
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", got)
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("hi", 5); got != "hi   " {
		t.Errorf("PadWidth(hi, 5) = %q", got)
	}
	if got := PadWidth("hello", 3); got != "hello" {
		t.Errorf("PadWidth should not truncate: %q", got)
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("hello world", 8); got != "hello..." {
		t.Errorf("TruncateWidth = %q, want %q", got, "hello...")
	}
	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("TruncateWidth should pass short strings through: %q", got)
	}
	if got := TruncateWidth("anything", 0); got != "" {
		t.Errorf("TruncateWidth with zero width = %q, want empty", got)
	}
}

// =============================================================================
// ATOMIC WRITE
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q, want %q", data, "first")
	}

	// Overwrite in place.
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q, want %q", data, "second")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp files)", len(entries))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "out.txt")
	if err := AtomicWriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
