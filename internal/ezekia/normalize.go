package ezekia

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

const (
	present     = "Present"
	openEndDate = "9999-12-31"

	defaultAssignmentName = "Unnamed Assignment"
	defaultStatus         = "Unknown"
	defaultClientName     = "No Client"
	defaultContactPerson  = "N/A"
	defaultDescription    = "No description available."

	defaultCandidateName   = "Unknown"
	defaultCandidateStatus = "Active"
	defaultExperience      = "N/A"
)

// NormalizeAssignment decodes one assignment in either known shape. Input that
// is not an assignment object yields a fully defaulted record.
func NormalizeAssignment(raw json.RawMessage, now time.Time) models.Assignment {
	var shape assignmentShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		slog.Debug("assignment decoded with defaults", "error", err)
	}

	company := shape.company()
	a := models.Assignment{
		ID:             string(shape.ID),
		Name:           orDefault(string(shape.Name), defaultAssignmentName),
		Status:         orDefault(string(shape.Status), defaultStatus),
		Client:         models.Client{Name: orDefault(string(company.Name), defaultClientName)},
		ContactPerson:  orDefault(string(shape.ContactPerson), defaultContactPerson),
		CreatedAt:      orDefault(string(shape.CreatedAt), now.Format(time.RFC3339)),
		Description:    orDefault(descriptionText(string(shape.Description)), defaultDescription),
		CandidateCount: int(shape.CandidatesCount),
	}
	if company.LogoURL != "" {
		logo := company.LogoURL
		a.Client.Logo = &logo
	}
	return a
}

// descriptionText converts rich-text descriptions to Markdown
func descriptionText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// NormalizeCandidate decodes one entry of an assignment's candidate list
func NormalizeCandidate(raw json.RawMessage) models.CandidateSummary {
	var shape candidateShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		slog.Debug("candidate decoded with defaults", "error", err)
	}

	name := string(shape.Name)
	if name == "" {
		name = strings.TrimSpace(string(shape.FirstName) + " " + string(shape.LastName))
	}

	return models.CandidateSummary{
		ID:              string(shape.ID),
		Name:            orDefault(name, defaultCandidateName),
		Status:          orDefault(string(shape.Status), defaultCandidateStatus),
		Photo:           string(firstText(shape.ProfilePicture, shape.Photo)),
		Positions:       shape.Profile.Positions.positions(),
		ExperienceYears: orDefault(string(shape.ExperienceYears), defaultExperience),
	}
}

// NormalizeRecord assembles the report record from the fetched parts
func NormalizeRecord(person Person, positions []models.Position, education []Education, project json.RawMessage, now time.Time) models.CandidateRecord {
	rec := models.NewCandidateRecord()

	pd := &rec.PersonalData
	pd.Name = person.DisplayName()
	pd.Address = FormatAddress(person.Address)
	pd.Phone = first(person.Phones)
	pd.Email = first(person.Emails)
	pd.MaritalStatus = person.MaritalStatus
	pd.Nationality = person.Nationality
	pd.Photo = person.Photo

	if birth, ok := parseDate(person.Birthday); ok {
		age := Age(birth, now)
		pd.Age = &age
		pd.Birthdate = birth.Format("2006-01-02")
	} else {
		pd.Birthdate = person.Birthday
	}

	for _, lang := range person.Languages {
		if lang.Name != "" {
			pd.Languages[lang.Name] = lang.Level
		}
	}

	rec.Experience = NormalizeExperience(positions)
	rec.Education = NormalizeEducation(education)

	if len(project) > 0 {
		rec.ProjectData = project
	}
	return rec
}

// NormalizeExperience maps positions to experience entries, open-ended first,
// then by end date descending
func NormalizeExperience(positions []models.Position) []models.ExperienceEntry {
	out := make([]models.ExperienceEntry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, models.ExperienceEntry{
			Years:       pos.StartDate + " - " + endLabel(pos.EndDate, identity),
			Title:       pos.Title,
			Company:     pos.Company,
			Location:    pos.Location,
			Description: pos.Summary,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return endsLater(out[i].Years, out[j].Years)
	})
	return out
}

// NormalizeEducation flattens any education variant, sorted by end year descending
func NormalizeEducation(items []Education) []models.EducationEntry {
	out := make([]models.EducationEntry, 0, len(items))
	for _, item := range items {
		f := item.entry()
		out = append(out, models.EducationEntry{
			Years:       f.years,
			Degree:      f.degree,
			Institution: f.institution,
			Field:       f.field,
			Description: f.description,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return endsLater(out[i].Years, out[j].Years)
	})
	return out
}

// endsLater orders year ranges by their end token: Present first, then
// descending string order, empty last. Equal tokens are not reordered.
func endsLater(a, b string) bool {
	ta, tb := endToken(a), endToken(b)
	if ta == tb {
		return false
	}
	if ta == present {
		return true
	}
	if tb == present {
		return false
	}
	return ta > tb
}

func endToken(years string) string {
	_, end, _ := strings.Cut(years, " - ")
	return strings.TrimSpace(end)
}

// FormatAddress joins the street and "postalCode city" lines
func FormatAddress(a Address) string {
	if a.Line != "" {
		return a.Line
	}

	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	switch {
	case a.PostalCode != "" && a.City != "":
		lines = append(lines, a.PostalCode+" "+a.City)
	case a.City != "":
		lines = append(lines, a.City)
	}
	return strings.Join(lines, "\n")
}

// Age is the number of full years between birth and now
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) > 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func identity(s string) string { return s }
