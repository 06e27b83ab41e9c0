// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/ai-exposure/internal/audit"
	"github.com/jonathan/ai-exposure/internal/report"
	"github.com/jonathan/ai-exposure/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTopSkills outputs the head of the ranked skill score table.
func (p *Printer) PrintTopSkills(rows []types.SkillScore) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ranked skills: %d\n\n", len(rows)))

	count := min(len(rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		row := rows[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, row.Skill))
		sb.WriteString(fmt.Sprintf("    Score: %.4f  (in %d postings, %d with AI)\n", row.AIScore, row.TotalCnt, row.TotalCo))
	}

	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more skills", len(rows)-maxItemsToShow))
	}

	p.printBox("TOP AI-ASSOCIATED SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobScores outputs a summary of one year's scored postings.
func (p *Printer) PrintJobScores(year int, rows []types.JobScore) {
	if len(rows) == 0 {
		return
	}

	var flagged, matched int
	for _, row := range rows {
		if row.AIJob == 1 {
			flagged++
		}
		if row.JobAIScore != nil {
			matched++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings scored: %d\n", len(rows)))
	sb.WriteString(fmt.Sprintf("With matched skills: %d\n", matched))
	sb.WriteString(fmt.Sprintf("Flagged as AI jobs: %d\n\n", flagged))

	count := min(len(rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		row := rows[i]
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", row.JobID, row.CompanyName))
		if row.JobAIScore != nil {
			sb.WriteString(fmt.Sprintf("  Score: %.4f over %d/%d skills\n", *row.JobAIScore, row.NMatchedSkills, row.NSkills))
		} else {
			sb.WriteString(fmt.Sprintf("  Score: -- (no matched skills of %d)\n", row.NSkills))
		}
	}

	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(rows)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("JOB SCORES %d", year), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompanyMeasures outputs the head of the final company-year table.
func (p *Printer) PrintCompanyMeasures(rows []types.CompanyYearMeasure) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company-years measured: %d\n\n", len(rows)))

	count := min(len(rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		row := rows[i]
		sb.WriteString(fmt.Sprintf("• %s %d\n", row.CompanyName, row.Year))
		if row.AIMeasure != nil {
			sb.WriteString(fmt.Sprintf("  %d of %d employees AI-related (%.4f)\n", row.AIEmployees, row.Employees, *row.AIMeasure))
		} else {
			sb.WriteString("  no employees\n")
		}
	}

	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more company-years", len(rows)-maxItemsToShow))
	}

	p.printBox("COMPANY AI MEASURES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStageReport outputs one stage's row accounting.
func (p *Printer) PrintStageReport(r *report.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	if r.Year != 0 {
		sb.WriteString(fmt.Sprintf("Stage:   %s (%d)\n", r.Stage, r.Year))
	} else {
		sb.WriteString(fmt.Sprintf("Stage:   %s\n", r.Stage))
	}
	sb.WriteString(fmt.Sprintf("Rows:    %d in, %d out, %d dropped\n", r.RowsIn, r.RowsOut, r.RowsDropped))
	sb.WriteString(fmt.Sprintf("Took:    %dms\n", r.DurationMs))

	if len(r.Drops) > 0 {
		sb.WriteString("\nDrops by reason:\n")
		reasons := make([]string, 0, len(r.Drops))
		for reason := range r.Drops {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", reason, r.Drops[reason]))
		}
	}

	p.printBox("STAGE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAuditFindings outputs any artifact invariant violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAuditFindings(findings []audit.Finding) {
	if len(findings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(findings)))

	for i, f := range findings {
		detail := f.Detail
		if len(detail) > 45 {
			detail = detail[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s in %s\n", f.Check, f.Artifact))
		sb.WriteString(fmt.Sprintf("  %s\n", detail))
		if i < len(findings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ARTIFACT VIOLATIONS", sb.String())
}
