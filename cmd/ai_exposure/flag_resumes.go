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

var flagResumesCmd = &cobra.Command{
	Use:   "flag-resumes",
	Short: "Flag AI-related person-year rows by keyword match",
	Long:  "Scan each expanded person-year row's title and description for the classification keywords (the top skills artifact by default, or an explicit keyword file) and record the earliest hit.",
	RunE:  runFlagResumes,
}

var (
	flagsConfigPath  string
	flagsOutDir      string
	flagsKeywordPath string
	flagsSaveAs      string
	flagsVerbose     bool
)

func init() {
	flagResumesCmd.Flags().StringVar(&flagsConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flagResumesCmd.Flags().StringVarP(&flagsOutDir, "out", "o", "", "Directory holding the expanded rows; also receives the output")
	flagResumesCmd.Flags().StringVarP(&flagsKeywordPath, "keywords", "k", "", "Keyword file for classification (defaults to the top skills artifact)")
	flagResumesCmd.Flags().StringVar(&flagsSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	flagResumesCmd.Flags().BoolVarP(&flagsVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(flagResumesCmd)
}

func runFlagResumes(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(flagsConfigPath, flagsVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = flagsOutDir
	}
	if cmd.Flags().Changed("keywords") {
		cfg.KeywordPath = flagsKeywordPath
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = flagsSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagsVerbose
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}

	paths, sess, err := pipeline.Setup(&cfg)
	if err != nil {
		return err
	}
	if err := requireStageInputs(steps.FlagResumes, &cfg, paths); err != nil {
		return err
	}
	// The merge-skills dependency is optional in the registry because an
	// explicit keyword file replaces the top skills artifact.
	if cfg.KeywordPath == "" {
		if _, err := os.Stat(paths.TopSkills()); err != nil {
			return fmt.Errorf("no keyword file given and %s does not exist; run merge-skills first or pass --keywords", paths.TopSkills())
		}
	}

	reports, err := pipeline.RunFlagResumes(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully flagged person-year rows\n")
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
