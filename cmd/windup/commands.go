package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathanvila/windup/internal/config"
	"github.com/jonathanvila/windup/internal/engine"
	"github.com/jonathanvila/windup/internal/journal"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/report"
	"github.com/jonathanvila/windup/internal/ruleset"
	"github.com/jonathanvila/windup/internal/schedule"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute and print the execution schedule",
	Long: `Schedules every registered provider without executing anything.
The output is grouped by phase in execution order; unresolved constraint
targets are listed as warnings with a suggestion when a registered id is
close.`,
	RunE: runPlan,
}

var (
	runParallel int
	runOutput   string
	runRulesets []string
)

var runCmd = &cobra.Command{
	Use:   "run [source-dir]",
	Short: "Execute the analysis over a source tree",
	Long: `Schedules and executes every registered provider against the source
directory (the configured source when omitted). Findings and report
artifacts are written to the output directory; the run record lands
under .windup/runs/.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalysis,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered providers with their constraints",
	RunE:  runProviders,
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Print the phase catalog in execution order",
	RunE:  runPhases,
}

var lintCmd = &cobra.Command{
	Use:   "lint [ruleset-dir...]",
	Short: "Validate ruleset files without registering them",
	Long: `Checks every YAML rule file in the given directories (the configured
ruleset directories when omitted) and prints every problem found. Exits
non-zero when any file fails.`,
	RunE: runLint,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the schedule as JSON")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "max providers of one batch running concurrently")
	runCmd.Flags().StringVar(&runOutput, "output", "", "report output directory")
	runCmd.Flags().StringSliceVar(&runRulesets, "rulesets", nil, "ruleset directories (overrides the config)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	result, err := schedule.Schedule(reg.WorkingSet(), reg.Catalog())
	if err != nil {
		return err
	}
	if planJSON {
		return printPlanJSON(cmd, result)
	}
	printPlan(cmd, reg, result)
	return nil
}

func printPlan(cmd *cobra.Command, reg *provider.Registry, result *schedule.Result) {
	out := cmd.OutOrStdout()
	position := 0
	for _, group := range result.Groups() {
		if len(group.Units) == 0 {
			continue
		}
		fmt.Fprintf(out, "phase %s:\n", group.Phase)
		for _, unit := range group.Units {
			position++
			fmt.Fprintf(out, "  %2d. %s\n", position, unit.ID())
		}
	}
	warnings := result.Warnings()
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(out, "\nwarnings:\n")
	for _, warning := range warnings {
		message := warning.String()
		if hint := suggestID(reg, warning.Target); hint != "" {
			message = fmt.Sprintf("%s (did you mean %q?)", message, hint)
		}
		fmt.Fprintf(out, "  %s\n", message)
	}
}

func printPlanJSON(cmd *cobra.Command, result *schedule.Result) error {
	type jsonGroup struct {
		Phase string   `json:"phase"`
		Units []string `json:"units"`
	}
	payload := struct {
		Sequence []string    `json:"sequence"`
		Groups   []jsonGroup `json:"groups"`
		Warnings []string    `json:"warnings,omitempty"`
	}{Sequence: result.IDs()}
	for _, group := range result.Groups() {
		if len(group.Units) == 0 {
			continue
		}
		units := make([]string, 0, len(group.Units))
		for _, unit := range group.Units {
			units = append(units, unit.ID())
		}
		payload.Groups = append(payload.Groups, jsonGroup{Phase: group.Phase.String(), Units: units})
	}
	for _, warning := range result.Warnings() {
		payload.Warnings = append(payload.Warnings, warning.String())
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Project.Parallel = runParallel
	}
	if cmd.Flags().Changed("output") {
		cfg.Project.Output = runOutput
	}
	if cmd.Flags().Changed("rulesets") {
		cfg.Project.Rulesets = runRulesets
	}
	if err := config.Init(cfg.ProjectDir); err != nil {
		return err
	}
	source := cfg.SourceDir()
	if len(args) == 1 {
		source = args[0]
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	jrnl, err := journal.New(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	eng, err := engine.New(reg,
		engine.WithLogger(logger),
		engine.WithJournal(jrnl),
		engine.WithReportStore(report.NewStore(cfg.OutputDir())),
		engine.WithRepository(engine.NewFSRepository(cfg.RunsDir())),
		engine.WithParallelism(cfg.Parallelism()),
	)
	if err != nil {
		return err
	}
	logger.Info("starting analysis",
		zap.String("source", source),
		zap.Int("parallel", cfg.Parallelism()),
	)
	runReport, runErr := eng.Run(cmd.Context(), source)
	if runReport.RunID != "" {
		printRunReport(cmd, runReport)
	}
	return runErr
}

func printRunReport(cmd *cobra.Command, runReport engine.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s in %s (%d findings)\n",
		runReport.RunID, runReport.Status, runReport.Duration().Round(0), runReport.Findings)
	for _, warning := range runReport.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}
	for _, outcome := range runReport.Providers {
		switch outcome.Status {
		case engine.StatusSkipped:
			fmt.Fprintf(out, "  %-9s %s\n", outcome.Status, outcome.ID)
		case engine.StatusFailed:
			fmt.Fprintf(out, "  %-9s %s: %s\n", outcome.Status, outcome.ID, outcome.Error)
		default:
			fmt.Fprintf(out, "  %-9s %s (%s)\n", outcome.Status, outcome.ID, outcome.Duration().Round(0))
		}
	}
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPHASE\tAFTER\tBEFORE\tTAGS\tORIGIN")
	for _, meta := range reg.WorkingSet() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			meta.ID(),
			meta.Phase(),
			constraintColumn(meta.ExecuteAfter(), meta.ExecuteAfterIDs()),
			constraintColumn(meta.ExecuteBefore(), meta.ExecuteBeforeIDs()),
			strings.Join(meta.Tags(), ","),
			meta.Origin(),
		)
	}
	return w.Flush()
}

func constraintColumn(refs []provider.Ref, ids []string) string {
	parts := make([]string, 0, len(refs)+len(ids))
	for _, ref := range refs {
		if !ref.IsZero() {
			parts = append(parts, ref.String())
		}
	}
	parts = append(parts, ids...)
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func runPhases(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, p := range catalog.Phases() {
		marker := ""
		if p == catalog.Default() {
			marker = "  (default)"
		}
		fmt.Fprintf(out, "%2d. %s%s\n", i+1, p, marker)
	}
	return nil
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.RulesetDirs()
	}
	out := cmd.OutOrStdout()
	files, problems := 0, 0
	for _, dir := range dirs {
		reports, err := ruleset.LintDir(dir, catalog)
		if err != nil {
			return err
		}
		for _, lintReport := range reports {
			files++
			if lintReport.IsValid() {
				fmt.Fprintf(out, "%s: ok\n", lintReport.Path)
				continue
			}
			problems += len(lintReport.Problems)
			fmt.Fprintf(out, "%s:\n", lintReport.Path)
			for _, problem := range lintReport.Problems {
				fmt.Fprintf(out, "  %v\n", problem)
			}
		}
	}
	if problems > 0 {
		return fmt.Errorf("lint: %d problems across %d files", problems, files)
	}
	fmt.Fprintf(out, "%d files checked\n", files)
	return nil
}

// suggestID fuzzy-matches an unknown id against the registered providers.
func suggestID(reg *provider.Registry, target string) string {
	matches := fuzzy.Find(target, reg.IDs())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
