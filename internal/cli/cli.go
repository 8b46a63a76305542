// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for convstore.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdList Command = iota
	CmdShow
	CmdExport
	CmdDelete
	CmdDeleteAll
	CmdSearch
	CmdRebuild
	CmdStats
	CmdWatch
	CmdVersion
	CmdHelp
)

const usageText = `convstore - conversation history storage

Convstore persists conversational message histories to a local directory
as one JSON file per conversation, plus a denormalized index for fast
listing. Record files are the source of truth; the index can always be
regenerated from them.

Usage:
  convstore [list]                 List conversations, newest first (default)
  convstore show <id|N>            Show a conversation by id or list position
  convstore export <id|N>          Export a conversation transcript
    --format txt|md|json           Export format (default: txt)
    --out DIR                      Output directory (default: .)
  convstore delete <id> --confirm  Delete a conversation
  convstore delete-all --confirm   Delete all conversations
  convstore search <query>         Search titles and previews
    --messages                     Search full message content instead
  convstore rebuild                Rebuild the index from record files
  convstore stats                  Show store statistics
  convstore watch                  Rebuild the index on external file changes
  convstore version                Show version information
  convstore help                   Show this help

Global Flags:
  --json          Output in JSON format
  --dir PATH      Override the storage directory

Storage:
  Conversations live in ~/.conversations by default. Set storage.dir in
  ~/.convstore/config.toml or CONVSTORE_DIR to override.

Note:
  The index is a cache. If it is ever corrupted, reads treat it as empty
  and the next save rewrites it, which discards entries that existed only
  in the corrupted file. Run "convstore rebuild" to recover the index from
  the record files.
`

// Parse parses os.Args into a command and its remaining arguments.
// With no arguments the command defaults to list.
func Parse() (Command, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdList, NewArgParser(nil)
	}

	cmd := strings.ToLower(raw[0])
	rest := raw[1:]

	switch cmd {
	case "list", "ls", "l":
		return CmdList, NewArgParser(rest)
	case "show", "get":
		return CmdShow, NewArgParser(rest)
	case "export":
		return CmdExport, NewArgParser(rest)
	case "delete", "rm":
		return CmdDelete, NewArgParser(rest)
	case "delete-all", "clear":
		return CmdDeleteAll, NewArgParser(rest)
	case "search", "find":
		return CmdSearch, NewArgParser(rest)
	case "rebuild", "reindex":
		return CmdRebuild, NewArgParser(rest)
	case "stats":
		return CmdStats, NewArgParser(rest)
	case "watch":
		return CmdWatch, NewArgParser(rest)
	case "version", "--version", "-v":
		return CmdVersion, NewArgParser(rest)
	case "help", "--help", "-h":
		return CmdHelp, NewArgParser(rest)
	default:
		// Flags without a command still mean list (e.g. "convstore --json").
		if strings.HasPrefix(cmd, "-") {
			return CmdList, NewArgParser(raw)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, NewArgParser(rest)
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("convstore %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
