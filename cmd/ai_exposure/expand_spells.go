package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/spf13/cobra"
)

var expandSpellsCmd = &cobra.Command{
	Use:   "expand-spells",
	Short: "Expand résumé employment spells into person-year rows",
	Long:  "Read the merged résumé table and emit one row per calendar year each employment spell covers, resolving open spells via the currency flag or the missing-end policy.",
	RunE:  runExpandSpells,
}

var (
	expandConfigPath    string
	expandResumePath    string
	expandOutDir        string
	expandMissingEnd    string
	expandReferenceYear int
	expandSaveAs        string
	expandVerbose       bool
)

func init() {
	expandSpellsCmd.Flags().StringVar(&expandConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	expandSpellsCmd.Flags().StringVarP(&expandResumePath, "resume", "r", "", "Path to the merged résumé CSV")
	expandSpellsCmd.Flags().StringVarP(&expandOutDir, "out", "o", "", "Output directory for artifacts and stage reports")
	expandSpellsCmd.Flags().StringVar(&expandMissingEnd, "missing-end", "", "Policy for spells without an end date: current-year or drop")
	expandSpellsCmd.Flags().IntVar(&expandReferenceYear, "reference-year", 0, "Year standing in for \"now\" when closing open spells (0 uses the wall clock)")
	expandSpellsCmd.Flags().StringVar(&expandSaveAs, "save-as", "", "Artifact format: csv or jsonl")
	expandSpellsCmd.Flags().BoolVarP(&expandVerbose, "verbose", "v", false, "Print detailed progress and stage reports")

	rootCmd.AddCommand(expandSpellsCmd)
}

func runExpandSpells(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadBaseConfig(expandConfigPath, expandVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("resume") {
		cfg.ResumePath = expandResumePath
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = expandOutDir
	}
	if cmd.Flags().Changed("missing-end") {
		cfg.MissingEnd = expandMissingEnd
	}
	if cmd.Flags().Changed("reference-year") {
		cfg.ReferenceYear = expandReferenceYear
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = expandSaveAs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = expandVerbose
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}
	if cfg.ResumePath == "" {
		return fmt.Errorf("a résumé file is required (--resume flag or 'resume_path' in config)")
	}

	paths, sess, err := pipeline.Setup(&cfg)
	if err != nil {
		return err
	}

	reports, err := pipeline.RunExpandSpells(ctx, &cfg, sess, paths)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully expanded employment spells\n")
	printReports(observability.NewPrinter(os.Stdout), reports, cfg.Verbose)
	return nil
}
