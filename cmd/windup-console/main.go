// Command windup-console is the interactive schedule inspector: it loads
// the project configuration, assembles the provider working set, and opens
// a terminal UI browsing the computed schedule and the run journal.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jonathanvila/windup/internal/config"
	"github.com/jonathanvila/windup/internal/journal"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/rules"
	"github.com/jonathanvila/windup/internal/ruleset"
	"github.com/jonathanvila/windup/internal/tui"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		die("Error getting working directory: %v", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		die("Error loading configuration: %v", err)
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		die("Error assembling providers: %v", err)
	}
	jrnl, err := journal.New(cfg.JournalPath())
	if err != nil {
		die("Error opening journal: %v", err)
	}
	console, err := tui.NewConsole(reg, jrnl)
	if err != nil {
		die("Error building console: %v", err)
	}

	p := tea.NewProgram(console, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		die("Error running console: %v", err)
	}
}

func buildRegistry(cfg *config.Config) (*provider.Registry, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	reg := provider.NewRegistry(catalog)
	rules.RegisterBuiltins(reg)
	for _, dir := range cfg.RulesetDirs() {
		repo, err := ruleset.Load(dir)
		if err != nil {
			return nil, err
		}
		files, err := repo.Discover()
		if err != nil {
			return nil, err
		}
		if err := ruleset.RegisterRules(reg, files...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
