// convstore - conversation history storage with a fast listing index.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/morganforge/convstore/internal/cli"
	"github.com/morganforge/convstore/internal/config"
	"github.com/morganforge/convstore/internal/store"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if cmd == cli.CmdHelp {
		cli.PrintUsage()
		return
	}
	if cmd == cli.CmdVersion {
		cli.PrintVersion()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	st, err := openStore(cfg, args)
	if err != nil {
		fail(err)
	}

	switch cmd {
	case cli.CmdList:
		err = cli.HandleList(st, args)
	case cli.CmdShow:
		err = cli.HandleShow(st, args)
	case cli.CmdExport:
		err = cli.HandleExport(st, cfg, args)
	case cli.CmdDelete:
		err = cli.HandleDelete(st, args)
	case cli.CmdDeleteAll:
		err = cli.HandleDeleteAll(st, args)
	case cli.CmdSearch:
		err = cli.HandleSearch(st, args)
	case cli.CmdRebuild:
		err = cli.HandleRebuild(st, args)
	case cli.CmdStats:
		err = cli.HandleStats(st, args)
	case cli.CmdWatch:
		err = cli.HandleWatch(st, cfg)
	}

	if err != nil {
		fail(err)
	}
}

// openStore creates the store from config, with --dir taking precedence.
func openStore(cfg *config.Config, args *cli.ArgParser) (*store.Store, error) {
	dir := args.Flag("dir")
	if dir == "" {
		dir = cfg.Storage.Dir
	}

	var st *store.Store
	var err error
	if dir == "" {
		st, err = store.New()
	} else {
		st, err = store.NewWithDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	st.MaxConversations = cfg.Storage.MaxConversations
	return st, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
