package skills

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/ai-exposure/internal/engine"
	"github.com/jonathan/ai-exposure/internal/types"
)

// Score computes a skill's AI co-occurrence share. A skill that was never
// observed scores zero rather than dividing by zero.
func Score(totalCnt, totalCo int64) float64 {
	if totalCnt == 0 {
		return 0
	}
	return float64(totalCo) / float64(totalCnt)
}

// Merger sums per-year skill stats into cross-year totals and ranks them.
type Merger struct {
	groups     *engine.GroupCounter
	budget     int64
	minSupport int64
	filtered   int64
}

// MergerOptions configures the cross-year merge.
type MergerOptions struct {
	// MinSupport drops skills with fewer total observations before ranking.
	// Zero disables the filter.
	MinSupport int64
	Budget     int64
}

// NewMerger creates a merger backed by a spillable group accumulator.
func NewMerger(sess *engine.Session, opts MergerOptions) *Merger {
	return &Merger{
		groups:     engine.NewGroupCounter(sess, "skill_merge", opts.Budget),
		budget:     opts.Budget,
		minSupport: opts.MinSupport,
	}
}

// AddStat folds one per-year stat into the running totals.
func (m *Merger) AddStat(stat types.SkillYearStat) error {
	return m.groups.Add(stat.Skill, stat.Cnt, stat.Co)
}

// Filtered reports how many skills the min-support filter removed. Valid
// after Emit.
func (m *Merger) Filtered() int64 {
	return m.filtered
}

// Emit streams scored skills ordered by score descending, then total count
// descending, then skill ascending. rank is 1-based over the emitted rows,
// so callers can split off a leading slice without re-sorting.
func (m *Merger) Emit(sess *engine.Session, fn func(row types.SkillScore, rank int) error) error {
	buf := engine.NewRowBuffer(sess, "skill_scores_sorted", engine.OrderScoreDesc, m.budget)
	defer buf.Close()

	m.filtered = 0
	err := m.groups.Each(func(skill string, cnt, co int64) error {
		if m.minSupport > 0 && cnt < m.minSupport {
			m.filtered++
			return nil
		}
		score := Score(cnt, co)
		return buf.Append(
			engine.SortKey{Num: &score, Cnt: cnt, Text: skill},
			types.SkillScore{Skill: skill, TotalCnt: cnt, TotalCo: co, AIScore: score},
		)
	})
	if err != nil {
		return err
	}

	rank := 0
	return buf.Each(func(payload []byte) error {
		var row types.SkillScore
		if err := json.Unmarshal(payload, &row); err != nil {
			return fmt.Errorf("failed to decode skill score: %w", err)
		}
		rank++
		return fn(row, rank)
	})
}

// Close releases the merger's scratch resources.
func (m *Merger) Close() error {
	return m.groups.Close()
}
