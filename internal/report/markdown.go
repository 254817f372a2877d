package report

import (
	"fmt"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// ToMarkdown renders the narrative sections as a markdown document
func ToMarkdown(rec models.CandidateRecord, sections models.ReportSections) string {
	name := rec.PersonalData.Name
	if name == "" {
		name = "Candidate"
	}

	return fmt.Sprintf("# Candidate Report for %s\n\n## PERSÖNLICHKEIT\n%s\n\n## ZUSAMMENFASSUNG\n%s\n",
		name, sections.PersonalitySection, sections.SummarySection)
}
