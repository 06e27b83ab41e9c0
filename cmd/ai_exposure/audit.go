package main

import (
	"fmt"
	"os"

	"github.com/jonathan/ai-exposure/internal/audit"
	"github.com/jonathan/ai-exposure/internal/observability"
	"github.com/jonathan/ai-exposure/internal/pipeline"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check finished artifacts against their invariants",
	Long:  "Re-read the artifacts in the output directory and verify score bounds, count arithmetic, null handling, and the documented ordering contracts. Artifacts are never modified; violations are reported and fail the command.",
	RunE:  runAudit,
}

var (
	auditConfigPath string
	auditOutDir     string
	auditYearFrom   int
	auditYearTo     int
	auditThreshold  float64
	auditSaveAs     string
)

func init() {
	auditCmd.Flags().StringVar(&auditConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	auditCmd.Flags().StringVarP(&auditOutDir, "out", "o", "", "Directory holding the artifacts to audit")
	auditCmd.Flags().IntVar(&auditYearFrom, "year-from", 0, "First year of per-year artifacts to audit (inclusive)")
	auditCmd.Flags().IntVar(&auditYearTo, "year-to", 0, "Last year of per-year artifacts to audit (inclusive)")
	auditCmd.Flags().Float64Var(&auditThreshold, "threshold", 0, "Job score threshold the artifacts were produced with")
	auditCmd.Flags().StringVar(&auditSaveAs, "save-as", "", "Artifact format: csv or jsonl")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadBaseConfig(auditConfigPath, false)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = auditOutDir
	}
	if cmd.Flags().Changed("year-from") {
		cfg.YearFrom = auditYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		cfg.YearTo = auditYearTo
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold = auditThreshold
	}
	if cmd.Flags().Changed("save-as") {
		cfg.SaveAs = auditSaveAs
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return err
	}

	paths, err := pipeline.NewPaths(cfg.OutDir, cfg.SaveAs)
	if err != nil {
		return err
	}

	auditor := audit.New(cfg.ScoreThreshold)
	var checked, rows int64

	check := func(path string, fn func(string) (int64, error)) error {
		if _, err := os.Stat(path); err != nil {
			return nil // absent artifacts are not audited
		}
		n, err := fn(path)
		if err != nil {
			return fmt.Errorf("failed to audit %s: %w", path, err)
		}
		checked++
		rows += n
		return nil
	}

	if cfg.YearFrom != 0 && cfg.YearTo != 0 {
		for year := cfg.YearFrom; year <= cfg.YearTo; year++ {
			if err := check(paths.SkillCounts(year), auditor.CheckSkillCounts); err != nil {
				return err
			}
			if err := check(paths.JobScores(year), auditor.CheckJobScores); err != nil {
				return err
			}
			if err := check(paths.CompanyShare(year), auditor.CheckCompanyShare); err != nil {
				return err
			}
		}
	}
	if err := check(paths.SkillScores(), auditor.CheckSkillScores); err != nil {
		return err
	}
	if err := check(paths.TopSkills(), auditor.CheckSkillScores); err != nil {
		return err
	}
	if err := check(paths.ResumeYears(), auditor.CheckResumeYears); err != nil {
		return err
	}
	if err := check(paths.ResumeFlags(), auditor.CheckResumeFlags); err != nil {
		return err
	}
	if err := check(paths.CompanyMeasures(), auditor.CheckCompanyMeasures); err != nil {
		return err
	}

	if checked == 0 {
		return fmt.Errorf("no artifacts found in %s (wrong --out, --save-as, or year range?)", cfg.OutDir)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Audited %d artifact(s), %d row(s)\n", checked, rows)
	observability.NewPrinter(os.Stdout).PrintAuditFindings(auditor.Findings())

	if n := len(auditor.Findings()); n > 0 {
		return fmt.Errorf("audit found %d violation(s) in %s", n, cfg.OutDir)
	}
	return nil
}
