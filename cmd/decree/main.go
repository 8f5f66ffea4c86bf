// Decree: Architectural Decision Record MCP Server
//
// A universal MCP server that integrates with any AI coding tool
// (Claude Code, OpenCode, Gemini CLI, Codex, Cursor, VS Code Copilot)
// to keep coding agents inside the boundaries your team's ADRs draw.
//
// Usage:
//
//	decree serve       # Start MCP server (stdio transport)
//	decree contract    # Print the current constraints contract as JSON
//	decree guardrails  # Regenerate guardrail lint configs
//	decree index       # Rebuild the search index
//	decree update      # Update to the latest version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	decreeserver "github.com/HendryAvila/decree/internal/server"
	"github.com/HendryAvila/decree/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "contract":
		if err := runContract(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "guardrails", "index":
		if err := runRebuild(os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("decree v%s\n", decreeserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := decreeserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// runContract prints the current constraints contract as indented JSON
// on stdout, so it can be piped into jq or diffed in CI.
func runContract() error {
	manager, cleanup, err := decreeserver.NewManager()
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := manager.Current()
	if err != nil {
		return fmt.Errorf("building contract: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding contract: %w", err)
	}
	fmt.Println(string(data))

	for _, w := range c.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.ADRID, w.Message)
	}
	return nil
}

// runRebuild regenerates all derived artifacts (contract, guardrail
// files, search index) from the accepted ADRs on disk. The "guardrails"
// and "index" verbs share the rebuild; they differ in what they report.
func runRebuild(verb string) error {
	manager, cleanup, err := decreeserver.NewManager()
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := manager.Rebuild()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "contract %.16s rebuilt from %d accepted decision(s)\n",
		summary.Contract.Hash, len(summary.Contract.AcceptedADRs))

	if verb == "guardrails" {
		for _, p := range summary.Guardrails.Written {
			fmt.Fprintf(os.Stderr, "  wrote   %s\n", p)
		}
		for _, p := range summary.Guardrails.Skipped {
			fmt.Fprintf(os.Stderr, "  current %s\n", p)
		}
		for _, f := range summary.Guardrails.Failures {
			fmt.Fprintf(os.Stderr, "  FAILED  %s: %v\n", f.Path, f.Err)
		}
		if len(summary.Guardrails.Failures) > 0 {
			return fmt.Errorf("%d guardrail target(s) failed", len(summary.Guardrails.Failures))
		}
		return nil
	}

	if summary.IndexErr != nil {
		return fmt.Errorf("rebuilding index: %w", summary.IndexErr)
	}
	fmt.Fprintf(os.Stderr, "search index rebuilt\n")
	return nil
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. This runs in a goroutine during
// "serve" and is best-effort — network failures are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(decreeserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: decree update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(decreeserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(decreeserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart decree to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Decree v%s — Architectural Decision Record MCP Server

Usage:
  decree serve       Start the MCP server (stdio transport)
  decree contract    Print the current constraints contract as JSON
  decree guardrails  Regenerate guardrail lint configs from accepted ADRs
  decree index       Rebuild the ADR search index
  decree update      Update to the latest version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "decree": {
        "command": "decree",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/HendryAvila/decree
`, decreeserver.Version)
}
