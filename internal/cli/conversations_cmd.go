// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations_cmd.go - Conversation management CLI commands for convstore.
//
// Command handlers for list, show, export, delete, delete-all, search,
// rebuild, stats, and watch. Conversations are addressed either by id or by
// their 1-based position in the listing (so "convstore show 1" opens the
// most recently updated conversation).
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/morganforge/convstore/internal/config"
	"github.com/morganforge/convstore/internal/export"
	"github.com/morganforge/convstore/internal/store"
	"github.com/morganforge/convstore/internal/util"
	"github.com/morganforge/convstore/internal/watch"
)

// =============================================================================
// LIST
// =============================================================================

// HandleList lists all conversations, newest first.
func HandleList(st *store.Store, args *ArgParser) error {
	entries := st.ListAll()

	if args.BoolFlag("json") {
		return NewJSONResponse("list", entries).Print()
	}

	if len(entries) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	width := GetTerminalWidth()
	previewWidth := width - (4 + 26 + 18 + 6)
	if previewWidth < 10 {
		previewWidth = 10
	}

	fmt.Println(TitleStyle.Render("Conversations"))
	fmt.Println(HeaderStyle.Render(
		util.PadWidth("#", 4) +
			util.PadWidth("ID", 26) +
			util.PadWidth("UPDATED", 18) +
			util.PadWidth("MSGS", 6) +
			"PREVIEW"))

	for i, entry := range entries {
		preview := strings.ReplaceAll(entry.Preview, "\n", " ")
		fmt.Println(
			util.PadWidth(fmt.Sprintf("%d", i+1), 4) +
				util.PadWidth(util.TruncateWidth(entry.ID, 24), 26) +
				util.PadWidth(formatUpdated(entry.UpdatedAt), 18) +
				util.PadWidth(fmt.Sprintf("%d", entry.MessageCount), 6) +
				util.TruncateWidth(preview, previewWidth))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

// HandleShow prints a single conversation by id or list position.
func HandleShow(st *store.Store, args *ArgParser) error {
	ref := args.Positional(0)
	if ref == "" {
		return fmt.Errorf("usage: convstore show <id|N>")
	}

	conv, ok := resolveConversation(st, ref)
	if !ok {
		return fmt.Errorf("conversation %q not found", ref)
	}

	if args.BoolFlag("json") {
		return NewJSONResponse("show", conv).Print()
	}

	fmt.Println(TitleStyle.Render(conv.Title))
	fmt.Println(DimStyle.Render("ID:       " + conv.ID))
	fmt.Println(DimStyle.Render("Created:  " + formatUpdated(conv.CreatedAt)))
	fmt.Println(DimStyle.Render("Updated:  " + formatUpdated(conv.UpdatedAt)))
	if conv.ModelKey != nil {
		fmt.Println(DimStyle.Render("Model:    " + *conv.ModelKey))
	}
	if conv.WorkingDirectory != nil {
		fmt.Println(DimStyle.Render("Workdir:  " + *conv.WorkingDirectory))
	}
	fmt.Println()

	for _, msg := range conv.Messages {
		fmt.Println(HeaderStyle.Render("[" + msg.Role + "]"))
		fmt.Println(msg.Content)
		fmt.Println()
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// HandleExport writes a conversation transcript to a file.
func HandleExport(st *store.Store, cfg *config.Config, args *ArgParser) error {
	ref := args.Positional(0)
	if ref == "" {
		return fmt.Errorf("usage: convstore export <id|N> [--format txt|md|json] [--out DIR]")
	}

	conv, ok := resolveConversation(st, ref)
	if !ok {
		return fmt.Errorf("conversation %q not found", ref)
	}

	opts := &export.Options{
		OutputDir:       args.FlagOrDefault("out", cfg.Export.OutputDir),
		IncludeMetadata: cfg.Export.IncludeMetadata,
	}
	format := args.FlagOrDefault("format", cfg.Export.Format)

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}

	if args.BoolFlag("json") {
		return NewJSONResponse("export", map[string]string{
			"id":     conv.ID,
			"path":   path,
			"format": format,
		}).Print()
	}
	fmt.Println(SuccessStyle.Render("Exported to " + path))
	return nil
}

// =============================================================================
// DELETE
// =============================================================================

// HandleDelete deletes a single conversation. Requires --confirm.
func HandleDelete(st *store.Store, args *ArgParser) error {
	id := args.Positional(0)
	if id == "" {
		return fmt.Errorf("usage: convstore delete <id> --confirm")
	}
	if !args.BoolFlag("confirm") {
		return fmt.Errorf("deletion requires --confirm")
	}

	if !st.Delete(id) {
		return fmt.Errorf("conversation %q not found or could not be deleted", id)
	}

	if args.BoolFlag("json") {
		return NewJSONResponse("delete", map[string]string{"id": id}).Print()
	}
	fmt.Println(SuccessStyle.Render("Deleted " + id))
	return nil
}

// HandleDeleteAll deletes every conversation. Requires --confirm.
func HandleDeleteAll(st *store.Store, args *ArgParser) error {
	if !args.BoolFlag("confirm") {
		return fmt.Errorf("deleting all conversations requires --confirm")
	}

	removed := st.Clear()

	if args.BoolFlag("json") {
		return NewJSONResponse("delete-all", map[string]int{"removed": removed}).Print()
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Deleted %d conversation(s)", removed)))
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// HandleSearch searches titles and previews, or full message content with
// --messages.
func HandleSearch(st *store.Store, args *ArgParser) error {
	query := strings.Join(args.PositionalFrom(0), " ")
	if query == "" {
		return fmt.Errorf("usage: convstore search <query> [--messages]")
	}

	var results []store.IndexEntry
	if args.BoolFlag("messages") {
		results = st.SearchMessages(query)
	} else {
		results = st.Search(query)
	}

	if args.BoolFlag("json") {
		return NewJSONResponse("search", results).Print()
	}

	if len(results) == 0 {
		fmt.Printf("No conversations match %q.\n", query)
		return nil
	}
	for _, entry := range results {
		fmt.Println(
			util.PadWidth(util.TruncateWidth(entry.ID, 24), 26) +
				util.PadWidth(formatUpdated(entry.UpdatedAt), 18) +
				util.TruncateWidth(strings.ReplaceAll(entry.Preview, "\n", " "), 40))
	}
	return nil
}

// =============================================================================
// INDEX MAINTENANCE
// =============================================================================

// HandleRebuild regenerates the index from record files.
func HandleRebuild(st *store.Store, args *ArgParser) error {
	if err := st.RebuildIndex(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	count := len(st.ListAll())
	if args.BoolFlag("json") {
		return NewJSONResponse("rebuild", map[string]int{"conversations": count}).Print()
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Index rebuilt: %d conversation(s)", count)))
	return nil
}

// HandleWatch runs the index rebuild watcher until interrupted.
func HandleWatch(st *store.Store, cfg *config.Config) error {
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	w, err := watch.New(st.Dir, st, debounce)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Println(TitleStyle.Render("Watching " + st.Dir))
	fmt.Println(DimStyle.Render("Rebuilding the index when record files change. Ctrl+C to stop."))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// =============================================================================
// STATS
// =============================================================================

// HandleStats prints store statistics.
func HandleStats(st *store.Store, args *ArgParser) error {
	stats := st.CollectStats()

	if args.BoolFlag("json") {
		return NewJSONResponse("stats", stats).Print()
	}

	fmt.Println(TitleStyle.Render("Store Statistics"))
	fmt.Printf("Conversations: %d\n", stats.Conversations)
	fmt.Printf("Messages:      %d\n", stats.Messages)
	if stats.NewestUpdated != "" {
		fmt.Printf("Newest update: %s\n", formatUpdated(stats.NewestUpdated))
		fmt.Printf("Oldest update: %s\n", formatUpdated(stats.OldestUpdated))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveConversation loads a conversation by id, or by 1-based list
// position when ref is a positive integer.
func resolveConversation(st *store.Store, ref string) (*store.Conversation, bool) {
	if n := parsePositionalNumber(ref); n > 0 {
		if conv, ok := st.GetByNumber(n); ok {
			return conv, true
		}
		// A purely numeric ref could still be a literal id.
	}
	return st.Load(ref)
}

// formatUpdated renders a stored timestamp for table display. Empty or
// unparseable timestamps pass through unchanged.
func formatUpdated(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(store.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04")
}
