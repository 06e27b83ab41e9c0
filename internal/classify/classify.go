// Package classify flags expanded résumé rows as AI-related by scanning each
// row's title and description against the scored keyword set.
package classify

import (
	"strings"

	"github.com/jonathan/ai-exposure/internal/match"
	"github.com/jonathan/ai-exposure/internal/types"
)

// BuildText returns the lowercased search text for one row. An empty
// description contributes nothing; it never suppresses the title.
func BuildText(title, description string) string {
	return strings.ToLower(title) + " " + strings.ToLower(description)
}

// Classify flags one expanded row. The result carries the keyword found at
// the earliest position in the row's text, nil when nothing matched.
func Classify(m match.Matcher, row types.ResumeYearRow) types.FlaggedRow {
	out := types.FlaggedRow{
		PersonID:    row.PersonID,
		CompanyName: row.CompanyName,
		Year:        row.Year,
	}
	if hit, ok := m.Match(BuildText(row.Title, row.Description)); ok {
		out.AIRelated = 1
		out.FirstHitSkill = types.StringPtr(hit.Keyword)
	}
	return out
}
