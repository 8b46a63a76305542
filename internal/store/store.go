// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/morganforge/convstore/internal/util"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// DefaultDirName is the storage directory under the user's home directory.
const DefaultDirName = ".conversations"

// indexFileName is the index file inside the storage directory. It is never
// treated as a record.
const indexFileName = "index.json"

// Store handles conversation persistence. All operations are synchronous
// and single-caller; concurrent writers from multiple processes are not
// coordinated (last writer wins on the index).
type Store struct {
	// Dir is the storage directory.
	Dir string

	// MaxConversations caps stored records (0 = unlimited). When a save
	// pushes the store over the cap, the oldest-updated records are
	// deleted.
	MaxConversations int

	// now supplies timestamps; tests substitute a fixed clock.
	now func() time.Time
}

// New creates a store rooted at ~/.conversations.
func New() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewWithDir(filepath.Join(home, DefaultDirName))
}

// NewWithDir creates a store rooted at dir, creating the directory if
// needed.
func NewWithDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir, now: time.Now}, nil
}

// =============================================================================
// SAVE
// =============================================================================

// SaveOptions carries the optional Save parameters. A zero value is valid:
// the id is derived from the title and the metadata fields persist as null.
type SaveOptions struct {
	// ID updates the record with that exact id, creating it if absent.
	// When empty, an unused id is derived from the title.
	ID string

	ModelKey         *string
	SystemPrompt     *string
	WorkingDirectory *string
}

// Save persists a conversation and upserts its index entry, returning the
// resolved id. created_at is carried over from any record already on disk
// at the resolved id (read-before-write); updated_at is always refreshed.
// Empty messages are allowed. A corrupt index does not fail the save: it is
// read as empty and rewritten.
func (s *Store) Save(messages []Message, title string, opts SaveOptions) (string, error) {
	id := opts.ID
	if id == "" {
		id = s.assignID(title)
	}

	now := formatTimestamp(s.now())
	path := s.recordPath(id)

	// Preserve created_at across updates. A missing, unreadable, or
	// unparseable existing record falls back to now.
	createdAt := now
	if data, err := os.ReadFile(path); err == nil {
		var existing Conversation
		if err := json.Unmarshal(data, &existing); err == nil && existing.CreatedAt != "" {
			createdAt = existing.CreatedAt
		}
	}

	if messages == nil {
		messages = []Message{}
	}

	conv := Conversation{
		ID:               id,
		Title:            title,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
		ModelKey:         opts.ModelKey,
		SystemPrompt:     opts.SystemPrompt,
		WorkingDirectory: opts.WorkingDirectory,
		MessageCount:     len(messages),
		Messages:         messages,
	}

	data, err := json.MarshalIndent(&conv, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", err
	}

	if err := s.upsertIndexEntry(id, title, len(messages), preview(messages), now); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}

	return id, nil
}

// assignID derives an unused id from the title by slugifying it and
// appending -1, -2, ... until no record file claims the result.
func (s *Store) assignID(title string) string {
	base := Slugify(title)
	id := base
	for counter := 1; s.recordExists(id); counter++ {
		id = base + "-" + strconv.Itoa(counter)
	}
	return id
}

// enforceLimit deletes the oldest-updated records beyond MaxConversations.
func (s *Store) enforceLimit() {
	entries := s.ListAll()
	for i := s.MaxConversations; i < len(entries); i++ {
		s.Delete(entries[i].ID)
	}
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the record for id. A missing or unparseable record file is
// reported as absent, never as an error.
func (s *Store) Load(id string) (*Conversation, bool) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, false
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, false
	}
	return &conv, true
}

// GetByNumber resolves the n-th conversation (1-indexed) in ListAll order,
// so GetByNumber(1) is the most recently updated. Out-of-range n is absent.
func (s *Store) GetByNumber(n int) (*Conversation, bool) {
	entries := s.ListAll()
	if n < 1 || n > len(entries) {
		return nil, false
	}
	return s.Load(entries[n-1].ID)
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

// ListAll returns every index entry sorted by updated_at descending.
// Entries without an updated_at compare as the empty string and land last.
// The index file itself is never persisted in sorted order.
func (s *Store) ListAll() []IndexEntry {
	entries := s.loadIndex().Conversations
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt > entries[j].UpdatedAt
	})
	return entries
}

// Search returns entries whose title or preview contains the query,
// case-insensitively, in ListAll order.
func (s *Store) Search(query string) []IndexEntry {
	query = strings.ToLower(query)
	var results []IndexEntry
	for _, entry := range s.ListAll() {
		if strings.Contains(strings.ToLower(entry.Title), query) ||
			strings.Contains(strings.ToLower(entry.Preview), query) {
			results = append(results, entry)
		}
	}
	return results
}

// SearchMessages returns entries for conversations where any message
// content contains the query, case-insensitively. This loads every record,
// so it is proportionally slower than Search.
func (s *Store) SearchMessages(query string) []IndexEntry {
	if query == "" {
		return s.ListAll()
	}
	query = strings.ToLower(query)
	var results []IndexEntry
	for _, entry := range s.ListAll() {
		conv, ok := s.Load(entry.ID)
		if !ok {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, entry)
				break
			}
		}
	}
	return results
}

// =============================================================================
// STATS
// =============================================================================

// Stats summarizes the store for reporting.
type Stats struct {
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	NewestUpdated string `json:"newest_updated,omitempty"`
	OldestUpdated string `json:"oldest_updated,omitempty"`
}

// CollectStats computes store statistics from the index.
func (s *Store) CollectStats() Stats {
	entries := s.ListAll()
	stats := Stats{Conversations: len(entries)}
	for _, entry := range entries {
		stats.Messages += entry.MessageCount
	}
	if len(entries) > 0 {
		stats.NewestUpdated = entries[0].UpdatedAt
		stats.OldestUpdated = entries[len(entries)-1].UpdatedAt
	}
	return stats
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes the record file and its index entry. It reports false when
// no record exists for id, or when removal fails. A failed removal leaves
// the index entry in place; a failed index rewrite after a successful
// removal also reports false, leaving the entry for RebuildIndex to clean
// up.
func (s *Store) Delete(id string) bool {
	path := s.recordPath(id)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		return false
	}
	return s.removeIndexEntry(id) == nil
}

// Clear removes every record file and resets the index, returning the
// number of records removed. Per-file removal errors are swallowed.
func (s *Store) Clear() int {
	removed := 0
	for _, path := range s.recordFiles() {
		if os.Remove(path) == nil {
			removed++
		}
	}
	s.saveIndex(index{Conversations: []IndexEntry{}})
	return removed
}

// =============================================================================
// INDEX MAINTENANCE
// =============================================================================

// RebuildIndex regenerates index.json from the record files, skipping any
// file that fails to parse. When a record lacks an id or title, the
// filename stem stands in. The fresh index is written in scan order;
// sorting happens only at read time in ListAll. This is the repair
// operation of last resort when the index and the record files diverge.
func (s *Store) RebuildIndex() error {
	idx := index{Conversations: []IndexEntry{}}

	for _, path := range s.recordFiles() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), ".json")
		entry := IndexEntry{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
			Preview:      preview(conv.Messages),
		}
		if entry.ID == "" {
			entry.ID = stem
		}
		if entry.Title == "" {
			entry.Title = stem
		}
		idx.Conversations = append(idx.Conversations, entry)
	}

	return s.saveIndex(idx)
}

// loadIndex reads index.json. An unreadable or corrupt index degrades to an
// empty one: the index is a non-authoritative projection of the record
// files.
func (s *Store) loadIndex() index {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return index{Conversations: []IndexEntry{}}
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return index{Conversations: []IndexEntry{}}
	}
	if idx.Conversations == nil {
		idx.Conversations = []IndexEntry{}
	}
	return idx
}

// saveIndex rewrites index.json wholesale.
func (s *Store) saveIndex(idx index) error {
	data, err := json.MarshalIndent(&idx, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.indexPath(), data, 0644)
}

// upsertIndexEntry updates the entry for id in place, or appends a new one
// with created_at = updated_at = now.
func (s *Store) upsertIndexEntry(id, title string, messageCount int, preview, now string) error {
	idx := s.loadIndex()
	for i := range idx.Conversations {
		if idx.Conversations[i].ID == id {
			idx.Conversations[i].Title = title
			idx.Conversations[i].UpdatedAt = now
			idx.Conversations[i].MessageCount = messageCount
			idx.Conversations[i].Preview = preview
			return s.saveIndex(idx)
		}
	}
	idx.Conversations = append(idx.Conversations, IndexEntry{
		ID:           id,
		Title:        title,
		CreatedAt:    now,
		UpdatedAt:    now,
		MessageCount: messageCount,
		Preview:      preview,
	})
	return s.saveIndex(idx)
}

// removeIndexEntry rewrites the index without the entry for id.
func (s *Store) removeIndexEntry(id string) error {
	idx := s.loadIndex()
	kept := idx.Conversations[:0]
	for _, entry := range idx.Conversations {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	idx.Conversations = kept
	return s.saveIndex(idx)
}

// =============================================================================
// HELPERS
// =============================================================================

// recordPath returns the record file path for a conversation id.
func (s *Store) recordPath(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// indexPath returns the index file path.
func (s *Store) indexPath() string {
	return filepath.Join(s.Dir, indexFileName)
}

// recordExists reports whether a record file exists for id.
func (s *Store) recordExists(id string) bool {
	_, err := os.Stat(s.recordPath(id))
	return err == nil
}

// recordFiles returns every .json file in the store directory except the
// index itself.
func (s *Store) recordFiles() []string {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil
	}
	var files []string
	for _, path := range matches {
		if filepath.Base(path) == indexFileName {
			continue
		}
		files = append(files, path)
	}
	return files
}
