package gui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

const noSelectionText = "Select an assignment to see its details."

// assignmentDetails renders the detail view of an assignment as markdown
func assignmentDetails(asg models.Assignment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", asg.Name)
	if asg.Client.Logo != nil && *asg.Client.Logo != "" {
		fmt.Fprintf(&sb, "![%s](%s)\n\n", asg.Client.Name, *asg.Client.Logo)
	}
	fmt.Fprintf(&sb, "**Client:** %s\n\n", asg.Client.Name)
	fmt.Fprintf(&sb, "**Status:** %s\n\n", asg.Status)
	fmt.Fprintf(&sb, "**Contact Person:** %s\n\n", asg.ContactPerson)
	fmt.Fprintf(&sb, "**Created:** %s\n\n", displayDate(asg.CreatedAt))
	fmt.Fprintf(&sb, "**Candidates:** %d\n\n", asg.CandidateCount)
	sb.WriteString("### Description\n\n")
	sb.WriteString(asg.Description)
	sb.WriteString("\n")

	return sb.String()
}

// candidateDetails renders the summary of a candidate below its assignment
func candidateDetails(c models.CandidateSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", c.Name)
	if c.Photo != "" {
		fmt.Fprintf(&sb, "![%s](%s)\n\n", c.Name, c.Photo)
	}
	fmt.Fprintf(&sb, "**Status:** %s\n\n", c.Status)
	fmt.Fprintf(&sb, "**Experience (years):** %s\n\n", c.ExperienceYears)
	if len(c.Positions) > 0 {
		fmt.Fprintf(&sb, "**Current Position:** %s\n\n", candidateLine(c))
		sb.WriteString("### Positions\n\n")
		for _, p := range c.Positions {
			fmt.Fprintf(&sb, "- %s", candidateLine(models.CandidateSummary{Positions: []models.Position{p}}))
			if span := positionSpan(p); span != "" {
				fmt.Fprintf(&sb, " (%s)", span)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func positionSpan(p models.Position) string {
	start, end := displayDate(p.StartDate), displayDate(p.EndDate)
	switch {
	case start == "" && end == "":
		return ""
	case end == "" || strings.HasPrefix(p.EndDate, "9999"):
		return start + " - Present"
	default:
		return start + " - " + end
	}
}

// displayDate formats RFC 3339 and ISO dates as DD.MM.YYYY; anything else is returned as is
func displayDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02.01.2006")
		}
	}
	if len(s) > 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("02.01.2006")
		}
	}
	return s
}
