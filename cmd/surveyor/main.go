package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/surveyor"
	"github.com/jward/surveyor/internal/analyzer"
	"github.com/jward/surveyor/internal/config"
	"github.com/jward/surveyor/internal/history"
	"github.com/jward/surveyor/visitors"
)

var (
	flagConfig  string
	flagVerbose bool
	flagNoColor bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "surveyor",
	Short:         "Survey a tree of source projects and report on each",
	Long:          "Surveyor discovers project roots under the given paths, runs one tree-sitter analysis pass per root, and routes per-file results to reporting visitors.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .surveyor.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable severity coloring")

	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(historyCmd)
}

var (
	flagShowErrors   bool
	flagResolveUnits bool
	flagSkipInstall  bool
	flagExclude      []string
	flagLimit        int
	flagMinSeverity  string
	flagCount        []string
	flagScript       string
	flagHistoryDB    string
)

var surveyCmd = &cobra.Command{
	Use:   "survey [paths...]",
	Short: "Run one analysis pass over each discovered root",
	Long: "Runs the survey loop. A single path without a project manifest is expanded " +
		"into its immediate subdirectories; multiple paths (or a path with a manifest) " +
		"are used as-is.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSurvey,
}

func init() {
	surveyCmd.Flags().BoolVar(&flagShowErrors, "show-errors", false, "report parse diagnostics")
	surveyCmd.Flags().BoolVar(&flagResolveUnits, "resolve-units", false, "retain full syntax trees and run node-level visitors")
	surveyCmd.Flags().BoolVar(&flagSkipInstall, "skip-install", false, "skip the dependency-install step before each root")
	surveyCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "path segments to skip during file iteration")
	surveyCmd.Flags().IntVar(&flagLimit, "limit", 0, "process at most N roots (0 = no limit)")
	surveyCmd.Flags().StringVar(&flagMinSeverity, "min-severity", "", "minimum diagnostic severity to report: info|warning|error")
	surveyCmd.Flags().StringSliceVar(&flagCount, "count", nil, "count occurrences of these identifiers (implies --resolve-units)")
	surveyCmd.Flags().StringVar(&flagScript, "script", "", "run a Risor visitor script per file")
	surveyCmd.Flags().StringVar(&flagHistoryDB, "history-db", "", "record run statistics to this SQLite database")
}

func runSurvey(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	settings, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &settings)

	cfg := surveyor.Config{
		ShowErrors:   settings.ShowErrors,
		ResolveUnits: settings.ResolveUnits,
		SkipInstall:  settings.SkipInstall,
		Excluded:     settings.Excluded,
		RootLimit:    settings.Limit,
	}
	if len(flagCount) > 0 {
		cfg.ResolveUnits = true
	}
	if flagScript != "" {
		cfg.ShowErrors = true
	}

	opts := []surveyor.Option{
		surveyor.WithLogger(logger),
		surveyor.WithColor(!flagNoColor),
	}
	if settings.HistoryDB != "" {
		store, err := history.NewStore(settings.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrating history database: %w", err)
		}
		opts = append(opts, surveyor.WithHistory(store))
	}

	d := surveyor.New(cfg, opts...)

	if settings.ShowErrors {
		min := analyzer.ParseSeverity(settings.MinSeverity)
		filter := visitors.NewSeverityFilter(min, os.Stdout, d.Stats())
		filter.Colorize(!flagNoColor)
		d.Register(filter)
	}
	if len(flagCount) > 0 {
		d.Register(visitors.NewOccurrenceCounter(os.Stdout, d.Stats(), flagCount...))
	}
	if flagScript != "" {
		script, err := visitors.NewScript(flagScript, os.Stdout, d.Stats())
		if err != nil {
			return err
		}
		d.Register(script)
	}

	start := time.Now()
	if err := d.Run(context.Background(), args); err != nil {
		return err
	}
	stats := d.Stats()
	logger.Info("survey complete",
		"duration", time.Since(start).Round(time.Millisecond),
		"roots", stats.RootsProcessed,
		"files", stats.FilesAnalyzed,
		"findings", stats.Findings,
	)
	return nil
}

// applyFlagOverrides lets explicitly set flags win over config file and
// environment values.
func applyFlagOverrides(cmd *cobra.Command, s *config.Settings) {
	if cmd.Flags().Changed("show-errors") {
		s.ShowErrors = flagShowErrors
	}
	if cmd.Flags().Changed("resolve-units") {
		s.ResolveUnits = flagResolveUnits
	}
	if cmd.Flags().Changed("skip-install") {
		s.SkipInstall = flagSkipInstall
	}
	if cmd.Flags().Changed("exclude") {
		s.Excluded = flagExclude
	}
	if cmd.Flags().Changed("limit") {
		s.Limit = flagLimit
	}
	if cmd.Flags().Changed("min-severity") {
		s.MinSeverity = flagMinSeverity
	}
	if cmd.Flags().Changed("history-db") {
		s.HistoryDB = flagHistoryDB
	}
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryDB, "history-db", "", "SQLite database recorded with survey --history-db")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "n", 20, "number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagHistoryDB == "" {
		return fmt.Errorf("--history-db is required")
	}
	store, err := history.NewStore(flagHistoryDB)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrating history database: %w", err)
	}

	runs, err := store.Runs(flagHistoryLimit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("run %d: started %s, discovered %d, processed %d, skipped %d, findings %d\n",
			r.ID, r.StartedAt.Format(time.RFC3339),
			r.RootsDiscovered, r.RootsProcessed, r.RootsSkipped, r.Findings)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
	}
	return nil
}
