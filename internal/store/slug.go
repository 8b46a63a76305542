// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "strings"

// =============================================================================
// TITLE SLUGIFICATION
// =============================================================================

const (
	// slugMaxLen caps slug length. Slugs are pure ASCII at this point, so
	// byte slicing is character slicing.
	slugMaxLen = 50

	// slugFallback is used when a title slugifies to nothing.
	slugFallback = "conversation"
)

// Slugify converts a title into a filesystem-safe conversation id:
// lowercase and trim, replace every character outside [a-z0-9-] with a
// hyphen, collapse runs of hyphens, strip leading/trailing hyphens, cap at
// 50 characters (stripping any hyphen left dangling by the cut), and fall
// back to "conversation" when nothing survives.
func Slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(lowered))
	lastHyphen := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		// Everything else, including literal hyphens, collapses into a
		// single separator.
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	if slug == "" {
		return slugFallback
	}
	return slug
}
