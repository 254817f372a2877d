package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/fmuoria/ezekia-report-agent/internal/llm"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// Section headings the model is asked to produce
const (
	PersonalityHeading = "PERSÖNLICHKEIT"
	SummaryHeading     = "ZUSAMMENFASSUNG"
)

const (
	systemPrompt = "You are an executive search specialist who writes professional candidate profiles."
	temperature  = 0.7
	maxTokens    = 1500

	fallbackMessage = "failed to generate report text"
	notAvailable    = "N/A"
)

// Generator writes the narrative sections of a report
type Generator struct {
	completer llm.Completer
}

// NewGenerator creates a generator backed by completer
func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate builds the prompt, requests a completion and splits the reply
func (g *Generator) Generate(ctx context.Context, rec models.CandidateRecord) (models.ReportSections, error) {
	text, err := g.RequestCompletion(ctx, BuildPrompt(rec))
	if err != nil {
		return models.ReportSections{}, err
	}

	sections := SplitSections(text)
	if sections.PersonalitySection == "" {
		slog.Warn("completion did not contain the expected headings", "chars", len(text))
	}
	return sections, nil
}

// RequestCompletion sends prompt in a single call. Provider errors keep the
// provider's message.
func (g *Generator) RequestCompletion(ctx context.Context, prompt string) (string, error) {
	text, err := g.completer.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      sanitizeUTF8(prompt),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		var llmErr *llm.Error
		if errors.As(err, &llmErr) && llmErr.Message != "" {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", fallbackMessage, err)
	}
	return text, nil
}

// BuildPrompt renders the candidate record into the German report instruction
func BuildPrompt(rec models.CandidateRecord) string {
	pd := rec.PersonalData

	currentRole := notAvailable
	if len(rec.Experience) > 0 {
		currentRole = fmt.Sprintf("%s at %s", orNA(rec.Experience[0].Title), orNA(rec.Experience[0].Company))
	}

	age := notAvailable
	if pd.Age != nil {
		age = fmt.Sprintf("%d", *pd.Age)
	}

	var sb strings.Builder

	sb.WriteString("Create a professional executive search report for:\n\n")

	sb.WriteString("# Candidate Profile\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", orNA(pd.Name)))
	sb.WriteString(fmt.Sprintf("Current Position: %s\n", currentRole))
	sb.WriteString(fmt.Sprintf("Age: %s\n", age))
	sb.WriteString(fmt.Sprintf("Nationality: %s\n", orNA(pd.Nationality)))
	sb.WriteString(fmt.Sprintf("Languages: %s\n\n", orNA(formatLanguages(pd.Languages))))

	sb.WriteString("# Work Experience\n")
	for _, exp := range rec.Experience {
		sb.WriteString(fmt.Sprintf("- %s: %s at %s\n  %s\n", exp.Years, exp.Title, exp.Company, exp.Description))
	}
	sb.WriteString("\n")

	sb.WriteString("# Education\n")
	for _, edu := range rec.Education {
		sb.WriteString(fmt.Sprintf("- %s: %s in %s at %s\n", edu.Years, edu.Degree, edu.Field, edu.Institution))
	}
	sb.WriteString("\n")

	sb.WriteString("# Task\n")
	sb.WriteString("Write two detailed sections in German:\n\n")
	sb.WriteString("1. PERSÖNLICHKEIT (Personality) - ~350 words describing the candidate's character, leadership style, and professional demeanor based on their career trajectory.\n\n")
	sb.WriteString("2. ZUSAMMENFASSUNG (Summary) - ~450 words comprehensive overview of their professional profile, key achievements, and unique value proposition.\n\n")

	sb.WriteString("Guidelines:\n")
	sb.WriteString("- Use formal German\n")
	sb.WriteString("- Write in third-person\n")
	sb.WriteString("- Provide specific details rather than generic descriptions\n")
	sb.WriteString("- Format as single paragraphs with no bullet points\n")
	sb.WriteString("- Be consistent with the candidate's background\n\n")

	sb.WriteString(`Return with headings "PERSÖNLICHKEIT" and "ZUSAMMENFASSUNG".` + "\n")

	return sb.String()
}

func formatLanguages(languages map[string]string) string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, languages[name]))
	}
	return strings.Join(parts, ", ")
}

var (
	// heading decoration closing the cut heading, e.g. "**:" after "**PERSÖNLICHKEIT"
	leadingDecoration = regexp.MustCompile(`^[#*:]+`)
	// the decoration-only line opening the next heading, e.g. "\n## 2. **"
	trailingHeading = regexp.MustCompile(`\n[#*\s]*(?:\d+\.)?[#*\s]*$`)
)

// SplitSections cuts text at the first personality heading and the remainder
// at the first summary heading. A missing personality heading leaves both
// sections empty; a missing summary heading leaves the summary empty.
func SplitSections(text string) models.ReportSections {
	_, rest, found := strings.Cut(text, PersonalityHeading)
	if !found {
		return models.ReportSections{}
	}

	personality, summary, found := strings.Cut(rest, SummaryHeading)
	if !found {
		return models.ReportSections{PersonalitySection: cleanSection(rest)}
	}

	return models.ReportSections{
		PersonalitySection: cleanSection(personality),
		SummarySection:     cleanSection(summary),
	}
}

// cleanSection strips whitespace and the heading decoration next to the cut
// points. Markdown inside the section is kept.
func cleanSection(s string) string {
	s = leadingDecoration.ReplaceAllString(s, "")
	s = trailingHeading.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// sanitizeUTF8 replaces invalid byte sequences so the request body stays valid JSON
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
