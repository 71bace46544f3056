// SYNTX TUI - A terminal chat interface for a local completion endpoint.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/syntx-system/syntx-tui/internal/api"
	"github.com/syntx-system/syntx-tui/internal/config"
	"github.com/syntx-system/syntx-tui/internal/model"
	"github.com/syntx-system/syntx-tui/internal/session"
	"github.com/syntx-system/syntx-tui/internal/storage"
	"github.com/syntx-system/syntx-tui/internal/store"
	"github.com/syntx-system/syntx-tui/internal/ui/chat"
	"github.com/syntx-system/syntx-tui/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("syntx-tui %s (%s)\n", Version, GitCommit)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "syntx-tui requires an interactive terminal")
		os.Exit(1)
	}

	// Optional debug log; the TUI owns the screen so nothing may print.
	if os.Getenv("SYNTX_DEBUG") != "" {
		f, err := tea.LogToFile("syntx-debug.log", "debug")
		if err == nil {
			defer f.Close()
		}
	} else if devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0); err == nil {
		log.SetOutput(devnull)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	// Persistence is best effort: a broken slot degrades to an in-memory
	// session instead of refusing to start.
	var adapter *storage.Adapter
	var slot *storage.Slot

	slotPath := cfg.Storage.SlotPath
	if slotPath == "" {
		slotPath, err = storage.DefaultSlotPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if slotPath != "" {
		slot, err = storage.OpenSlot(slotPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: conversations will not be saved: %v\n", err)
		} else {
			adapter = storage.NewAdapter(slot, func(err error) {
				log.Printf("save failed: %v", err)
			})
		}
	}

	var conversations []*model.Conversation
	if adapter != nil {
		conversations, _ = adapter.Load()
	}
	st := store.New(conversations)

	client := api.NewClientWithConfig(&api.ClientConfig{
		Endpoint:         cfg.API.Endpoint,
		Timeout:          time.Duration(cfg.API.TimeoutSecs) * time.Second,
		MaxNewTokens:     cfg.API.MaxNewTokens,
		Temperature:      cfg.API.Temperature,
		TopP:             cfg.API.TopP,
		SubmitsPerSecond: cfg.API.SubmitsPerSecond,
	})

	var persister session.Persister
	if adapter != nil {
		persister = adapter
	}
	controller := session.NewController(st, client, persister)

	// No speech backend ships with this build; the voice key reports that
	// instead of crashing.
	recognizer := voice.NewUnsupported()

	p := tea.NewProgram(
		chat.New(controller, recognizer, cfg),
		tea.WithAltScreen(),
	)

	// Hot-reload the config file into the running program.
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		if watcher, err := config.NewWatcher(tomlPath, func(c *config.Config) {
			p.Send(chat.ConfigReloaded(c))
		}); err == nil {
			if watcher.Watch() == nil {
				defer watcher.Close()
			}
		}
	}

	_, runErr := p.Run()

	// Drain pending writes before exit.
	if err := controller.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: final save failed: %v\n", err)
	}
	if adapter != nil {
		adapter.Close()
	}
	if slot != nil {
		slot.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`syntx-tui - terminal chat for a local completion endpoint

Usage:
  syntx-tui            start the chat interface
  syntx-tui version    print version information

Configuration lives in ~/.syntx/config.toml (or config.json) and is
reloaded automatically while the app runs. Conversations persist in
~/.syntx/syntx.db. Type /help inside the app for commands.`)
}
