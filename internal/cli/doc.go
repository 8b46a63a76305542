// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for convstore.
//
// # Key Types
//
//   - Command: enumeration of available CLI commands
//   - ArgParser: unified flag and positional argument parsing
//   - JSONResponse: machine-readable output envelope for --json mode
//
// # Usage
//
// Parse and route commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdList:
//	    return cli.HandleList(st, args)
//	// ... other commands
//	}
//
// Output is styled with lipgloss; colors are disabled automatically for
// non-TTY output and when NO_COLOR is set.
package cli
