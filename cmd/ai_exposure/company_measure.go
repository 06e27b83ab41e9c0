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

var companyMeasureCmd = &cobra.Command{
	Use:   "company-measure",
	Short: "Roll flagged person-years up into company-year measures",
	Long:  "De-duplicate flagged rows so each person counts once per company and year, then compute every company-year's employee count, AI employee count, and AI exposure measure.",
	RunE:  runCompanyMeasure,
}

var (
	measureConfigPath string
	measureOutDir     string
	measureSaveAs     string
	measureVerbose    bool
)

func init() {
	companyMeasureCmd.Flags().StringVar(&measureConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	companyMeasureCmd.Flags().StringVarP(&measureOutDir, "out", "o", "", "Directory holding the flagged rows; also receives the output")
	companyMeasureCmd.Flags().StringVar(&measureSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	companyMeasureCmd.Flags().BoolVarP(&measureVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(companyMeasureCmd)
}

func runCompanyMeasure(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(measureConfigPath, measureVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = measureOutDir
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = measureSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = measureVerbose
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}

	paths, sess, err := pipeline.Setup(&cfg)
	if err != nil {
		return err
	}
	if err := requireStageInputs(steps.CompanyMeasure, &cfg, paths); err != nil {
		return err
	}

	reports, err := pipeline.RunCompanyMeasure(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully rolled up company-year measures\n")
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
