package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/spf13/cobra"
)

var skillCountsCmd = &cobra.Command{
	Use:   "skill-counts",
	Short: "Count per-skill AI co-occurrence for each posting year",
	Long:  "Stream every posting file of each year in the range, count how many jobs mention each skill and how many of those also mention an AI seed term, and write one skill count artifact per year.",
	RunE:  runSkillCounts,
}

var (
	countsConfigPath   string
	countsPostingsRoot string
	countsOutDir       string
	countsYearFrom     int
	countsYearTo       int
	countsSaveAs       string
	countsVerbose      bool
)

func init() {
	skillCountsCmd.Flags().StringVar(&countsConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	skillCountsCmd.Flags().StringVarP(&countsPostingsRoot, "postings-root", "p", "", "Root directory holding one subdirectory per posting year")
	skillCountsCmd.Flags().StringVarP(&countsOutDir, "out", "o", "", "Output directory for artifacts and stage reports")
	skillCountsCmd.Flags().IntVar(&countsYearFrom, "year-from", 0, "First posting year to process (inclusive)")
	skillCountsCmd.Flags().IntVar(&countsYearTo, "year-to", 0, "Last posting year to process (inclusive)")
	skillCountsCmd.Flags().StringVar(&countsSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	skillCountsCmd.Flags().BoolVarP(&countsVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(skillCountsCmd)
}

func runSkillCounts(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(countsConfigPath, countsVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("postings-root") {
		cfg.PostingsRoot = countsPostingsRoot
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = countsOutDir
	}
	if cmd.Flags().Changed("year-from") {
		cfg.YearFrom = countsYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		cfg.YearTo = countsYearTo
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = countsSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = countsVerbose
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}
	if cfg.PostingsRoot == "" {
		return fmt.Errorf("a postings root is required (--postings-root flag or 'postings_root' in config)")
	}

	paths, sess, err := pipeline.Setup(&cfg)
	if err != nil {
		return err
	}

	reports, err := pipeline.RunSkillCounts(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully counted skills for %d year(s)\n", len(reports))
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
