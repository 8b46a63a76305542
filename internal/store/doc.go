// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists conversations to a directory as one JSON file per
// record, plus a denormalized index.json used for fast listing.
//
// # Layout
//
//	~/.conversations/
//	    index.json        {"conversations": [ <entry>, ... ]}
//	    <id>.json         full conversation record
//
// Record files are the source of truth. The index is a projection kept in
// step on every save and delete, and can always be regenerated from the
// record files with RebuildIndex. Conversation ids are slugified titles
// with -1, -2, ... suffixes on collision.
//
// # Error Contract
//
// Read-side operations never fail: a corrupt or missing index reads as
// empty, a corrupt or missing record reads as absent, and Delete reports
// failure as a plain false. Only operations that write (Save, RebuildIndex)
// return errors. One known sharp edge follows from that contract: if the
// index file is corrupt, the next save rewrites it from the empty state, so
// entries that existed only in the corrupted index are discarded. Run
// RebuildIndex to recover them from the record files.
//
// # Usage
//
//	s, err := store.New()
//	id, err := s.Save(messages, "Fix the build", store.SaveOptions{})
//	conv, ok := s.Load(id)
//	for _, entry := range s.ListAll() { ... }
package store
