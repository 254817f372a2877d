package ezekia

import (
	"strings"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// EducationExtractor recovers education items from work history
type EducationExtractor interface {
	Extract(positions []models.Position) []Education
}

// DefaultEducationKeywords mark a position summary as describing education
var DefaultEducationKeywords = []string{"ausbildung", "studium", "universität", "schule"}

// KeywordExtractor treats every position whose summary contains one of the
// keywords (case-insensitive) as an education entry
type KeywordExtractor struct {
	Keywords []string
}

// NewKeywordExtractor returns an extractor using DefaultEducationKeywords
func NewKeywordExtractor() KeywordExtractor {
	return KeywordExtractor{Keywords: DefaultEducationKeywords}
}

// Extract implements EducationExtractor
func (k KeywordExtractor) Extract(positions []models.Position) []Education {
	var out []Education
	for _, pos := range positions {
		if pos.Summary == "" || !k.matches(pos.Summary) {
			continue
		}
		out = append(out, SynthesizedEducation{
			Years:       synthesizedYears(pos.StartDate, pos.EndDate),
			Degree:      "Education/Training",
			Institution: pos.Company,
			Field:       pos.Title,
			Description: pos.Summary,
		})
	}
	return out
}

func (k KeywordExtractor) matches(summary string) bool {
	lower := strings.ToLower(summary)
	for _, kw := range k.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// synthesizedYears renders "YYYY - YYYY" from position dates; an open or
// sentinel end date reads Present, and no start date yields an empty range
func synthesizedYears(start, end string) string {
	if start == "" {
		return ""
	}
	return yearOf(start) + " - " + endLabel(end, yearOf)
}

// endLabel maps the open-ended sentinels to Present and formats anything else
func endLabel(end string, format func(string) string) string {
	if end == "" || end == openEndDate {
		return present
	}
	return format(end)
}
