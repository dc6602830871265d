// Command windup is the migration analysis CLI: it schedules the registered
// analysis providers over a source tree and writes findings and reports
// under the .windup workspace.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathanvila/windup/internal/config"
	"github.com/jonathanvila/windup/internal/logging"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/rules"
	"github.com/jonathanvila/windup/internal/ruleset"
)

var (
	// Global flags
	verbose    bool
	projectDir string

	// Logger
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "windup",
	Short: "windup - static migration analysis",
	Long: `windup inspects an application's source tree with an ordered set of
analysis providers: built-in scanners plus rules loaded from YAML and Go
ruleset files. Providers are bucketed into phases and scheduled
deterministically; results land as findings and report artifacts under
the .windup workspace.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		built, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return err
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "project directory (defaults to the working directory)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(lintCmd)
}

// loadConfig resolves the project directory and reads its configuration.
func loadConfig() (*config.Config, error) {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		dir = cwd
	}
	return config.Load(dir)
}

// buildRegistry assembles the working set: built-in providers plus every
// rule discovered in the configured ruleset directories.
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
