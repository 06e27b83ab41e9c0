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

var mergeSkillsCmd = &cobra.Command{
	Use:   "merge-skills",
	Short: "Merge yearly skill counts into ranked AI association scores",
	Long:  "Sum the per-year skill count artifacts across the year range, filter skills below the minimum support, compute each skill's AI association score, and write the ranked score table plus the top-K keyword artifact.",
	RunE:  runMergeSkills,
}

var (
	mergeConfigPath string
	mergeOutDir     string
	mergeYearFrom   int
	mergeYearTo     int
	mergeMinSupport int64
	mergeTopK       int
	mergeSaveAs     string
	mergeVerbose    bool
)

func init() {
	mergeSkillsCmd.Flags().StringVar(&mergeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	mergeSkillsCmd.Flags().StringVarP(&mergeOutDir, "out", "o", "", "Directory holding the yearly count artifacts; also receives the outputs")
	mergeSkillsCmd.Flags().IntVar(&mergeYearFrom, "year-from", 0, "First year of count artifacts to merge (inclusive)")
	mergeSkillsCmd.Flags().IntVar(&mergeYearTo, "year-to", 0, "Last year of count artifacts to merge (inclusive)")
	mergeSkillsCmd.Flags().Int64Var(&mergeMinSupport, "min-support", 0, "Minimum total count before ranking (0 disables the filter)")
	mergeSkillsCmd.Flags().IntVar(&mergeTopK, "top-k", 0, "Number of top-ranked skills kept as classification keywords")
	mergeSkillsCmd.Flags().StringVar(&mergeSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	mergeSkillsCmd.Flags().BoolVarP(&mergeVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(mergeSkillsCmd)
}

func runMergeSkills(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(mergeConfigPath, mergeVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = mergeOutDir
	}
	if cmd.Flags().Changed("year-from") {
		cfg.YearFrom = mergeYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		cfg.YearTo = mergeYearTo
	}
	if cmd.Flags().Changed("min-support") {
		// Changed() distinguishes an explicit 0 (filter off) from unset.
		cfg.MinSupport = &mergeMinSupport
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = mergeTopK
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = mergeSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = mergeVerbose
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}

	paths, sess, err := pipeline.Setup(&cfg)
	if err != nil {
		return err
	}
	if err := requireStageInputs(steps.MergeSkills, &cfg, paths); err != nil {
		return err
	}

	reports, err := pipeline.RunMergeSkills(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully merged skill counts\n")
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
