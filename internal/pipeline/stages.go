package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/ai-exposure/internal/classify"
	"github.com/jonathan/ai-exposure/internal/config"
	"github.com/jonathan/ai-exposure/internal/engine"
	"github.com/jonathan/ai-exposure/internal/match"
	"github.com/jonathan/ai-exposure/internal/postings"
	"github.com/jonathan/ai-exposure/internal/report"
	"github.com/jonathan/ai-exposure/internal/resumes"
	"github.com/jonathan/ai-exposure/internal/rollup"
	"github.com/jonathan/ai-exposure/internal/skills"
	"github.com/jonathan/ai-exposure/internal/tabular"
	"github.com/jonathan/ai-exposure/internal/types"
)

// Setup builds the artifact path resolver and the execution session from the
// configuration. Shared by the run command and the individual stage commands.
func Setup(cfg *config.Config) (Paths, *engine.Session, error) {
	paths, err := NewPaths(cfg.OutDir, cfg.SaveAs)
	if err != nil {
		return Paths{}, nil, err
	}
	if err := paths.EnsureOutDir(); err != nil {
		return Paths{}, nil, err
	}

	limit, err := config.ParseMemoryLimit(cfg.MemoryLimit)
	if err != nil {
		return Paths{}, nil, fmt.Errorf("invalid memory limit: %w", err)
	}
	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(cfg.OutDir, "scratch")
	}
	sess, err := engine.NewSession(cfg.Workers, limit, scratch)
	if err != nil {
		return Paths{}, nil, err
	}
	return paths, sess, nil
}

func yearRange(cfg *config.Config) ([]int, error) {
	if cfg.YearFrom == 0 || cfg.YearTo == 0 {
		return nil, fmt.Errorf("year range is required ('year_from' and 'year_to')")
	}
	var years []int
	for y := cfg.YearFrom; y <= cfg.YearTo; y++ {
		years = append(years, y)
	}
	return years, nil
}

func seedTerms(cfg *config.Config) (*skills.TermSet, error) {
	terms := cfg.AITerms
	if len(terms) == 0 {
		terms = skills.DefaultAITerms()
	}
	return skills.NewTermSet(terms)
}

// RunSkillCounts executes the per-year co-occurrence counting stage. Years
// run in parallel bounded by the session's worker count; each year streams
// its posting files through a spillable group counter and writes the ordered
// count artifact plus its stage report.
func RunSkillCounts(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	files, err := tabular.DiscoverYearFiles(cfg.PostingsRoot, cfg.PostingsSubdir, cfg.PostingsExt, cfg.YearFrom, cfg.YearTo)
	if err != nil {
		return nil, err
	}
	terms, err := seedTerms(cfg)
	if err != nil {
		return nil, err
	}
	years, err := yearRange(cfg)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sess.Workers)

	var mu sync.Mutex
	reports := make([]*report.Report, 0, len(years))

	for _, year := range years {
		year := year
		g.Go(func() error {
			rep, err := countYear(gCtx, cfg, sess, paths, terms, year, files[year])
			if err != nil {
				return fmt.Errorf("skill counts for %d failed: %w", year, err)
			}
			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Year < reports[j].Year })
	return reports, nil
}

func countYear(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths, terms *skills.TermSet, year int, inputs []string) (*report.Report, error) {
	rep := report.New(StageSkillCounts, year)

	counter, err := skills.NewCounter(sess, skills.CounterOptions{
		Terms:            terms,
		Delimiter:        cfg.SkillDelimiter,
		ExcludeSeedTerms: cfg.ExcludeSeedTerms,
		Budget:           sess.StageBudget(),
	})
	if err != nil {
		return nil, err
	}
	defer counter.Close()

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := countFile(cfg, counter, rep, input); err != nil {
			return nil, err
		}
	}

	artifact := paths.SkillCounts(year)
	writer, err := tabular.NewWriter(artifact, paths.Format, types.SkillYearStatHeader)
	if err != nil {
		return nil, err
	}
	if err := counter.Emit(sess, func(stat types.SkillYearStat) error {
		return writer.Write(stat)
	}); err != nil {
		writer.Close()
		return nil, err
	}
	rep.Out(writer.Rows())
	if err := writer.Close(); err != nil {
		return nil, err
	}

	rep.Finish(artifact)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	return rep, nil
}

func countFile(cfg *config.Config, counter *skills.Counter, rep *report.Report, path string) error {
	src, err := tabular.OpenSource(path, []string{cfg.SkillsColumn})
	if err != nil {
		return err
	}
	defer src.Close()

	err = src.Each(func(row tabular.SourceRow) error {
		rep.In(1)
		counted, err := counter.AddPosting(row.Field(cfg.SkillsColumn))
		if err != nil {
			return err
		}
		if !counted {
			rep.Drop(DropEmptySkills, 1)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if d := src.Dropped(); d > 0 {
		rep.In(d)
		rep.Drop(DropMalformedRow, d)
	}
	return nil
}

// RunMergeSkills merges the yearly count artifacts into cross-year skill
// scores, applies the minimum-support filter before ranking and writes both
// the full ranking and its top-K prefix.
func RunMergeSkills(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	years, err := yearRange(cfg)
	if err != nil {
		return nil, err
	}

	rep := report.New(StageMergeSkills, 0)
	topRep := report.New(StageMergeSkills, 0)

	merger := skills.NewMerger(sess, skills.MergerOptions{
		MinSupport: cfg.MinSupportValue(),
		Budget:     sess.StageBudget(),
	})
	defer merger.Close()

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := tabular.EachRow[types.SkillYearStat](paths.SkillCounts(year), types.SkillYearStatHeader, func(stat types.SkillYearStat) error {
			rep.In(1)
			return merger.AddStat(stat)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read skill counts for %d: %w", year, err)
		}
	}

	scoresPath := paths.SkillScores()
	topPath := paths.TopSkills()
	scoresW, err := tabular.NewWriter(scoresPath, paths.Format, types.SkillScoreHeader)
	if err != nil {
		return nil, err
	}
	topW, err := tabular.NewWriter(topPath, paths.Format, types.SkillScoreHeader)
	if err != nil {
		scoresW.Close()
		return nil, err
	}

	err = merger.Emit(sess, func(row types.SkillScore, rank int) error {
		if err := scoresW.Write(row); err != nil {
			return err
		}
		if rank <= cfg.TopK {
			return topW.Write(row)
		}
		return nil
	})
	if err != nil {
		scoresW.Close()
		topW.Close()
		return nil, err
	}

	rep.Drop(DropBelowMinSupport, merger.Filtered())
	rep.Out(scoresW.Rows())
	topRep.In(scoresW.Rows())
	topRep.Out(topW.Rows())

	if err := scoresW.Close(); err != nil {
		return nil, err
	}
	if err := topW.Close(); err != nil {
		return nil, err
	}

	rep.Finish(scoresPath)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	topRep.Finish(topPath)
	if err := topRep.Write(); err != nil {
		return nil, err
	}
	return []*report.Report{rep, topRep}, nil
}

// RunJobScores scores every posting against the merged skill table and
// derives the per-year posting share roll-up. Years run in parallel; the
// score table is read once and shared.
func RunJobScores(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	files, err := tabular.DiscoverYearFiles(cfg.PostingsRoot, cfg.PostingsSubdir, cfg.PostingsExt, cfg.YearFrom, cfg.YearTo)
	if err != nil {
		return nil, err
	}
	years, err := yearRange(cfg)
	if err != nil {
		return nil, err
	}

	scores, err := tabular.ReadAll[types.SkillScore](paths.SkillScores(), types.SkillScoreHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill scores: %w", err)
	}
	table := postings.NewScoreTable(scores)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sess.Workers)

	var mu sync.Mutex
	var reports []*report.Report

	for _, year := range years {
		year := year
		g.Go(func() error {
			reps, err := scoreYear(gCtx, cfg, sess, paths, table, year, files[year])
			if err != nil {
				return fmt.Errorf("job scores for %d failed: %w", year, err)
			}
			mu.Lock()
			reports = append(reports, reps...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Year != reports[j].Year {
			return reports[i].Year < reports[j].Year
		}
		return reports[i].Artifact < reports[j].Artifact
	})
	return reports, nil
}

func scoreYear(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths, table *postings.ScoreTable, year int, inputs []string) ([]*report.Report, error) {
	rep := report.New(StageJobScores, year)
	shareRep := report.New(StageJobScores, year)

	scorer := postings.NewScorer(table, cfg.SkillDelimiter, cfg.ScoreThreshold)
	buffer := engine.NewRowBuffer(sess, fmt.Sprintf("job_scores_%d", year), engine.OrderScoreDesc, sess.StageBudget())
	defer buffer.Close()
	share := rollup.NewShareRollup(sess, sess.StageBudget())
	defer share.Close()

	columns := []string{cfg.JobIDColumn, cfg.CompanyColumn, cfg.CompanyNameColumn, cfg.SkillsColumn}
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := tabular.OpenSource(input, columns)
		if err != nil {
			return nil, err
		}
		err = src.Each(func(row tabular.SourceRow) error {
			rep.In(1)
			posting := types.Posting{
				JobID:       row.Field(cfg.JobIDColumn),
				Company:     row.Field(cfg.CompanyColumn),
				CompanyName: row.Field(cfg.CompanyNameColumn),
				SkillsRaw:   row.Field(cfg.SkillsColumn),
			}
			js, ok := scorer.ScoreJob(posting)
			if !ok {
				rep.Drop(DropEmptySkills, 1)
				return nil
			}
			if err := share.AddJob(js); err != nil {
				return err
			}
			return buffer.Append(engine.SortKey{
				Num:  js.JobAIScore,
				Cnt:  int64(js.NMatchedSkills),
				Text: js.JobID,
			}, js)
		})
		if err != nil {
			src.Close()
			return nil, err
		}
		if d := src.Dropped(); d > 0 {
			rep.In(d)
			rep.Drop(DropMalformedRow, d)
		}
		if err := src.Close(); err != nil {
			return nil, err
		}
	}

	jobsPath := paths.JobScores(year)
	writer, err := tabular.NewWriter(jobsPath, paths.Format, types.JobScoreHeader)
	if err != nil {
		return nil, err
	}
	err = buffer.Each(func(payload []byte) error {
		var js types.JobScore
		if err := json.Unmarshal(payload, &js); err != nil {
			return err
		}
		return writer.Write(js)
	})
	if err != nil {
		writer.Close()
		return nil, err
	}
	rep.Out(writer.Rows())
	shareRep.In(writer.Rows())
	if err := writer.Close(); err != nil {
		return nil, err
	}

	sharePath := paths.CompanyShare(year)
	shareW, err := tabular.NewWriter(sharePath, paths.Format, types.CompanyShareHeader)
	if err != nil {
		return nil, err
	}
	if err := share.Emit(sess, func(cs types.CompanyShare) error {
		return shareW.Write(cs)
	}); err != nil {
		shareW.Close()
		return nil, err
	}
	shareRep.Out(shareW.Rows())
	if err := shareW.Close(); err != nil {
		return nil, err
	}

	rep.Finish(jobsPath)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	shareRep.Finish(sharePath)
	if err := shareRep.Write(); err != nil {
		return nil, err
	}
	return []*report.Report{rep, shareRep}, nil
}

// RunExpandSpells expands employment spells into one row per covered year.
// Unparseable start dates and, under the drop policy, open spells are
// excluded row by row and counted in the report, never fatal.
func RunExpandSpells(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	if cfg.ResumePath == "" {
		return nil, fmt.Errorf("résumé path is required ('resume_path')")
	}
	policy, err := resumes.ParsePolicy(cfg.MissingEnd)
	if err != nil {
		return nil, err
	}
	expander := resumes.NewExpander(resumes.ExpandOptions{Policy: policy, ReferenceYear: cfg.ReferenceYear})

	rep := report.New(StageExpandSpells, 0)

	required := []string{
		cfg.ResumeIDColumn,
		cfg.ResumeTitleColumn,
		cfg.ResumeCompanyColumn,
		cfg.ResumeDescriptionColumn,
		cfg.ResumeStartColumn,
		cfg.ResumeEndColumn,
	}
	src, err := tabular.OpenSource(cfg.ResumePath, required)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	hasCurrency := src.HasColumn(cfg.ResumeCurrentColumn)

	buffer := engine.NewRowBuffer(sess, "resume_years", engine.OrderPersonTitleYear, sess.StageBudget())
	defer buffer.Close()

	err = src.Each(func(row tabular.SourceRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.In(1)
		spell := types.ResumeSpell{
			PersonID:    row.Field(cfg.ResumeIDColumn),
			Title:       row.Field(cfg.ResumeTitleColumn),
			CompanyName: row.Field(cfg.ResumeCompanyColumn),
			Description: row.Field(cfg.ResumeDescriptionColumn),
			StartRaw:    row.Field(cfg.ResumeStartColumn),
			EndRaw:      row.Field(cfg.ResumeEndColumn),
		}
		if hasCurrency {
			spell.IsCurrent = parseCurrency(row.Field(cfg.ResumeCurrentColumn))
		}
		rows, dropReason := expander.Expand(spell)
		if dropReason != "" {
			rep.Drop(dropReason, 1)
			return nil
		}
		for _, r := range rows {
			if err := buffer.Append(engine.SortKey{Text: r.PersonID, Text2: r.Title, Year: r.Year}, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if d := src.Dropped(); d > 0 {
		rep.In(d)
		rep.Drop(DropMalformedRow, d)
	}

	artifact := paths.ResumeYears()
	writer, err := tabular.NewWriter(artifact, paths.Format, types.ResumeYearRowHeader)
	if err != nil {
		return nil, err
	}
	err = buffer.Each(func(payload []byte) error {
		var r types.ResumeYearRow
		if err := json.Unmarshal(payload, &r); err != nil {
			return err
		}
		return writer.Write(r)
	})
	if err != nil {
		writer.Close()
		return nil, err
	}
	rep.Out(writer.Rows())
	if err := writer.Close(); err != nil {
		return nil, err
	}

	rep.Finish(artifact)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	return []*report.Report{rep}, nil
}

// parseCurrency reads the optional currency column leniently. Empty or
// unrecognized values mean "unknown", which is nil, not false.
func parseCurrency(raw string) *bool {
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return nil
	}
	return &v
}

// RunFlagResumes classifies every expanded row by earliest keyword match.
// Keywords come from the configured keyword file or, by default, the
// top-skills artifact; an empty keyword set is a fatal configuration error.
func RunFlagResumes(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	keywords, source, err := loadKeywords(cfg, paths)
	if err != nil {
		return nil, err
	}
	matcher, err := match.NewSubstringMatcher(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher from %s: %w", source, err)
	}

	rep := report.New(StageFlagResumes, 0)

	artifact := paths.ResumeFlags()
	writer, err := tabular.NewWriter(artifact, paths.Format, types.FlaggedRowHeader)
	if err != nil {
		return nil, err
	}

	err = tabular.EachRow[types.ResumeYearRow](paths.ResumeYears(), types.ResumeYearRowHeader, func(row types.ResumeYearRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.In(1)
		return writer.Write(classify.Classify(matcher, row))
	})
	if err != nil {
		writer.Close()
		return nil, err
	}
	rep.Out(writer.Rows())
	if err := writer.Close(); err != nil {
		return nil, err
	}

	rep.Finish(artifact)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	return []*report.Report{rep}, nil
}

// loadKeywords reads the classification keyword set: the configured keyword
// file when set, otherwise the top-skills artifact from merge-skills.
func loadKeywords(cfg *config.Config, paths Paths) ([]string, string, error) {
	source := cfg.KeywordPath
	if source == "" {
		source = paths.TopSkills()
	}
	rows, err := tabular.ReadAll[types.SkillScore](source, types.SkillScoreHeader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read keywords from %s: %w", source, err)
	}
	keywords := make([]string, 0, len(rows))
	for _, row := range rows {
		keywords = append(keywords, row.Skill)
	}
	return keywords, source, nil
}

// RunCompanyMeasure rolls classified rows up to company-year measures,
// de-duplicating people who held several titles at the same company in the
// same year.
func RunCompanyMeasure(ctx context.Context, cfg *config.Config, sess *engine.Session, paths Paths) ([]*report.Report, error) {
	rep := report.New(StageCompanyMeasure, 0)

	people := rollup.NewPersonRollup(sess, sess.StageBudget())
	defer people.Close()

	err := tabular.EachRow[types.FlaggedRow](paths.ResumeFlags(), types.FlaggedRowHeader, func(row types.FlaggedRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.In(1)
		return people.AddRow(row)
	})
	if err != nil {
		return nil, err
	}

	artifact := paths.CompanyMeasures()
	writer, err := tabular.NewWriter(artifact, paths.Format, types.CompanyYearMeasureHeader)
	if err != nil {
		return nil, err
	}
	if err := people.Emit(sess, func(m types.CompanyYearMeasure) error {
		return writer.Write(m)
	}); err != nil {
		writer.Close()
		return nil, err
	}
	rep.Out(writer.Rows())
	if err := writer.Close(); err != nil {
		return nil, err
	}

	rep.Finish(artifact)
	if err := rep.Write(); err != nil {
		return nil, err
	}
	return []*report.Report{rep}, nil
}
