package skills

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/ai-exposure/internal/engine"
	"github.com/jonathan/ai-exposure/internal/types"
)

// CounterOptions configures a per-year skill counter.
type CounterOptions struct {
	Terms            *TermSet
	Delimiter        string
	ExcludeSeedTerms bool
	Budget           int64
}

// Counter accumulates per-skill counts over one year of postings in a single
// streaming pass. A job contributes to a skill's co count when its skill set
// contains any seed term, regardless of how many; the job-level flag is
// computed once per posting, so no join is needed afterwards.
type Counter struct {
	opts   CounterOptions
	groups *engine.GroupCounter
}

// NewCounter creates a counter backed by a spillable group accumulator.
func NewCounter(sess *engine.Session, opts CounterOptions) (*Counter, error) {
	if opts.Terms == nil || opts.Terms.Len() == 0 {
		return nil, fmt.Errorf("seed term set is empty")
	}
	return &Counter{
		opts:   opts,
		groups: engine.NewGroupCounter(sess, "skill_counts", opts.Budget),
	}, nil
}

// AddPosting counts one posting's skills. Returns false when the posting has
// no usable skills after normalization and contributed nothing.
func (c *Counter) AddPosting(skillsRaw string) (bool, error) {
	set := SplitSkills(skillsRaw, c.opts.Delimiter)
	if len(set) == 0 {
		return false, nil
	}

	var co int64
	if c.opts.Terms.ContainsAny(set) {
		co = 1
	}

	for _, skill := range set {
		if c.opts.ExcludeSeedTerms && c.opts.Terms.Contains(skill) {
			continue
		}
		if err := c.groups.Add(skill, 1, co); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Emit streams the accumulated stats ordered by co descending, then cnt
// descending, then skill ascending.
func (c *Counter) Emit(sess *engine.Session, fn func(types.SkillYearStat) error) error {
	buf := engine.NewRowBuffer(sess, "skill_counts_sorted", engine.OrderScoreDesc, c.opts.Budget)
	defer buf.Close()

	err := c.groups.Each(func(skill string, cnt, co int64) error {
		num := float64(co)
		return buf.Append(
			engine.SortKey{Num: &num, Cnt: cnt, Text: skill},
			types.SkillYearStat{Skill: skill, Cnt: cnt, Co: co},
		)
	})
	if err != nil {
		return err
	}

	return buf.Each(func(payload []byte) error {
		var stat types.SkillYearStat
		if err := json.Unmarshal(payload, &stat); err != nil {
			return fmt.Errorf("failed to decode skill stat: %w", err)
		}
		return fn(stat)
	})
}

// Close releases the counter's scratch resources.
func (c *Counter) Close() error {
	return c.groups.Close()
}
