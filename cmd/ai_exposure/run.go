package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full measurement pipeline end-to-end",
	Long: `Orchestrates the entire measurement process: skill-counts -> merge-skills -> job-scores -> expand-spells -> flag-resumes -> company-measure.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runPostingsRoot  string
	runResumePath    string
	runKeywordPath   string
	runOutDir        string
	runScratchDir    string
	runYearFrom      int
	runYearTo        int
	runMinSupport    int64
	runTopK          int
	runThreshold     float64
	runMissingEnd    string
	runReferenceYear int
	runSaveAs        string
	runWorkers       int
	runMemoryLimit   string
	runVerbose       bool
	runDatabaseURL   string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runPostingsRoot, "postings-root", "p", "", "Root directory holding one subdirectory per posting year")
	runCommand.Flags().StringVarP(&runResumePath, "resume", "r", "", "Path to the merged résumé CSV")
	runCommand.Flags().StringVarP(&runKeywordPath, "keywords", "k", "", "Keyword file for résumé classification (defaults to the top skills artifact)")
	runCommand.Flags().StringVarP(&runOutDir, "out", "o", "", "Output directory for artifacts and stage reports")
	runCommand.Flags().StringVar(&runScratchDir, "scratch-dir", "", "Directory for spill files (defaults to <out>/scratch)")
	runCommand.Flags().IntVar(&runYearFrom, "year-from", 0, "First posting year to process (inclusive)")
	runCommand.Flags().IntVar(&runYearTo, "year-to", 0, "Last posting year to process (inclusive)")
	runCommand.Flags().Int64Var(&runMinSupport, "min-support", 0, "Minimum total count before ranking (0 disables the filter)")
	runCommand.Flags().IntVar(&runTopK, "top-k", 0, "Number of top-ranked skills kept as classification keywords")
	runCommand.Flags().Float64Var(&runThreshold, "threshold", 0, "Job score above which a posting counts as an AI job")
	runCommand.Flags().StringVar(&runMissingEnd, "missing-end", "", "Policy for spells without an end date: current-year or drop")
	runCommand.Flags().IntVar(&runReferenceYear, "reference-year", 0, "Year standing in for \"now\" when closing open spells (0 uses the wall clock)")
	runCommand.Flags().StringVar(&runSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	runCommand.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent per-year workers")
	runCommand.Flags().StringVar(&runMemoryLimit, "memory-limit", "", "Working-set cap shared by concurrent workers, e.g. 8GB")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress and artifact samples")

	// Database URL for run tracking
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	cfg, err := loadBaseConfig(runConfigPath, runVerbose)
	if err != nil {
		return err
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("postings-root") {
		cfg.PostingsRoot = runPostingsRoot
	}
	if cmd.Flags().Changed("resume") {
		cfg.ResumePath = runResumePath
	}
	if cmd.Flags().Changed("keywords") {
		cfg.KeywordPath = runKeywordPath
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = runOutDir
	}
	if cmd.Flags().Changed("scratch-dir") {
		cfg.ScratchDir = runScratchDir
	}
	if cmd.Flags().Changed("year-from") {
		cfg.YearFrom = runYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		cfg.YearTo = runYearTo
	}
	if cmd.Flags().Changed("min-support") {
		// Changed() distinguishes an explicit 0 (filter off) from unset.
		cfg.MinSupport = &runMinSupport
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = runTopK
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold = runThreshold
	}
	if cmd.Flags().Changed("missing-end") {
		cfg.MissingEnd = runMissingEnd
	}
	if cmd.Flags().Changed("reference-year") {
		cfg.ReferenceYear = runReferenceYear
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = runSaveAs
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("memory-limit") {
		cfg.MemoryLimit = runMemoryLimit
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults for unset values and validate
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}

	// Step 4: Validate required inputs before any stage runs
	if cfg.PostingsRoot == "" {
		return fmt.Errorf("a postings root is required (--postings-root flag or 'postings_root' in config)")
	}
	if cfg.ResumePath == "" {
		return fmt.Errorf("a résumé file is required (--resume flag or 'resume_path' in config)")
	}
	if cfg.OutDir == "" {
		return fmt.Errorf("an output directory is required (--out flag or 'out_dir' in config)")
	}
	if cfg.YearFrom == 0 || cfg.YearTo == 0 {
		return fmt.Errorf("a year range is required (--year-from and --year-to flags or config)")
	}

	// Step 5: Database URL handling (optional run tracking)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return pipeline.RunPipeline(ctx, &cfg)
}
