// Package rollup aggregates classified résumé rows and scored postings into
// company-level measures. The résumé path de-duplicates people first so a
// person holding several titles in one year counts once; the postings path
// needs no de-dup because job ids are already unique.
package rollup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/ai-exposure/internal/engine"
	"github.com/jonathan/ai-exposure/internal/types"
)

// keySep joins compound group keys. The ASCII unit separator does not occur
// in company names or person ids.
const keySep = "\x1f"

// splitTail splits the last field off a compound key, leaving everything
// before the final separator intact.
func splitTail(key string) (rest, last string, err error) {
	i := strings.LastIndex(key, keySep)
	if i < 0 {
		return "", "", fmt.Errorf("malformed group key %q", key)
	}
	return key[:i], key[i+1:], nil
}

// PersonRollup builds the company-year employee measure from flagged résumé
// rows.
type PersonRollup struct {
	budget int64
	dedup  *engine.GroupCounter
}

// NewPersonRollup creates a roll-up backed by spillable accumulators.
func NewPersonRollup(sess *engine.Session, budget int64) *PersonRollup {
	return &PersonRollup{
		budget: budget,
		dedup:  engine.NewGroupCounter(sess, "person_dedup", budget),
	}
}

// AddRow folds one flagged row into the per-person groups. A person's rows
// for one company-year collapse later; any single hit marks the person
// AI-related for that period.
func (r *PersonRollup) AddRow(row types.FlaggedRow) error {
	key := row.CompanyName + keySep + strconv.Itoa(row.Year) + keySep + row.PersonID
	return r.dedup.Add(key, 1, int64(row.AIRelated))
}

// Emit collapses the per-person groups into company-year measures, ordered
// by company name then year.
func (r *PersonRollup) Emit(sess *engine.Session, fn func(types.CompanyYearMeasure) error) error {
	summary := engine.NewGroupCounter(sess, "company_year_summary", r.budget)
	defer summary.Close()

	err := r.dedup.Each(func(key string, _, hits int64) error {
		companyYear, _, err := splitTail(key)
		if err != nil {
			return err
		}
		var flagged int64
		if hits > 0 {
			flagged = 1
		}
		return summary.Add(companyYear, 1, flagged)
	})
	if err != nil {
		return err
	}

	buf := engine.NewRowBuffer(sess, "company_measures_sorted", engine.OrderEntityYear, r.budget)
	defer buf.Close()

	err = summary.Each(func(key string, employees, aiEmployees int64) error {
		company, yearRaw, err := splitTail(key)
		if err != nil {
			return err
		}
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			return fmt.Errorf("malformed year in group key %q: %w", key, err)
		}
		m := types.CompanyYearMeasure{
			CompanyName: company,
			Year:        year,
			Employees:   employees,
			AIEmployees: aiEmployees,
		}
		if employees > 0 {
			m.AIMeasure = types.Float64Ptr(float64(aiEmployees) / float64(employees))
		}
		return buf.Append(engine.SortKey{Text: company, Year: year}, m)
	})
	if err != nil {
		return err
	}

	return buf.Each(func(payload []byte) error {
		var m types.CompanyYearMeasure
		if err := json.Unmarshal(payload, &m); err != nil {
			return fmt.Errorf("failed to decode company measure: %w", err)
		}
		return fn(m)
	})
}

// Close releases the roll-up's scratch resources.
func (r *PersonRollup) Close() error {
	return r.dedup.Close()
}

// ShareRollup builds one year's company posting-share table from scored jobs.
type ShareRollup struct {
	budget int64
	groups *engine.GroupCounter
}

// NewShareRollup creates a roll-up backed by a spillable accumulator.
func NewShareRollup(sess *engine.Session, budget int64) *ShareRollup {
	return &ShareRollup{
		budget: budget,
		groups: engine.NewGroupCounter(sess, "company_share", budget),
	}
}

// AddJob folds one scored posting into its company's totals.
func (r *ShareRollup) AddJob(js types.JobScore) error {
	return r.groups.Add(js.CompanyName, 1, int64(js.AIJob))
}

// Emit streams company shares ordered by share descending with nulls last,
// then posting count descending, then company name.
func (r *ShareRollup) Emit(sess *engine.Session, fn func(types.CompanyShare) error) error {
	buf := engine.NewRowBuffer(sess, "company_share_sorted", engine.OrderScoreDesc, r.budget)
	defer buf.Close()

	err := r.groups.Each(func(company string, postings, aiJobs int64) error {
		share := types.CompanyShare{
			CompanyName: company,
			NPostings:   postings,
			NAIJobs:     aiJobs,
		}
		if postings > 0 {
			share.AIJobShare = types.Float64Ptr(float64(aiJobs) / float64(postings))
		}
		return buf.Append(engine.SortKey{Num: share.AIJobShare, Cnt: postings, Text: company}, share)
	})
	if err != nil {
		return err
	}

	return buf.Each(func(payload []byte) error {
		var share types.CompanyShare
		if err := json.Unmarshal(payload, &share); err != nil {
			return fmt.Errorf("failed to decode company share: %w", err)
		}
		return fn(share)
	})
}

// Close releases the roll-up's scratch resources.
func (r *ShareRollup) Close() error {
	return r.groups.Close()
}
