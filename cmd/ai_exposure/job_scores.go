package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/jonathan/ai-exposure/internal/pipeline/steps"
	"github.com/spf13/cobra"
)

var jobScoresCmd = &cobra.Command{
	Use:   "job-scores",
	Short: "Score job postings against the merged skill score table",
	Long:  "Re-read each year's postings, average the merged skill scores over every posting's matched skills, flag postings above the score threshold, and write per-year job score and company share artifacts.",
	RunE:  runJobScores,
}

var (
	scoresConfigPath   string
	scoresPostingsRoot string
	scoresOutDir       string
	scoresYearFrom     int
	scoresYearTo       int
	scoresThreshold    float64
	scoresSaveAs       string
	scoresVerbose      bool
)

func init() {
	jobScoresCmd.Flags().StringVar(&scoresConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	jobScoresCmd.Flags().StringVarP(&scoresPostingsRoot, "postings-root", "p", "", "Root directory holding one subdirectory per posting year")
	jobScoresCmd.Flags().StringVarP(&scoresOutDir, "out", "o", "", "Directory holding the skill score artifact; also receives the outputs")
	jobScoresCmd.Flags().IntVar(&scoresYearFrom, "year-from", 0, "First posting year to score (inclusive)")
	jobScoresCmd.Flags().IntVar(&scoresYearTo, "year-to", 0, "Last posting year to score (inclusive)")
	jobScoresCmd.Flags().Float64Var(&scoresThreshold, "threshold", 0, "Job score above which a posting counts as an AI job")
	jobScoresCmd.Flags().StringVar(&scoresSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	jobScoresCmd.Flags().BoolVarP(&scoresVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(jobScoresCmd)
}

func runJobScores(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(scoresConfigPath, scoresVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("postings-root") {
		cfg.PostingsRoot = scoresPostingsRoot
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = scoresOutDir
	}
	if cmd.Flags().Changed("year-from") {
		cfg.YearFrom = scoresYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		cfg.YearTo = scoresYearTo
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold = scoresThreshold
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = scoresSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scoresVerbose
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
	if err := requireStageInputs(steps.JobScores, &cfg, paths); err != nil {
		return err
	}

	reports, err := pipeline.RunJobScores(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully scored postings for %d year(s)\n", len(reports)/2)
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
