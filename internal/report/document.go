package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// PageKind identifies the layout of a page
type PageKind string

const (
	PageCover       PageKind = "cover"
	PagePersonal    PageKind = "personal"
	PageExperience  PageKind = "experience"
	PageEducation   PageKind = "education"
	PagePersonality PageKind = "personality"
	PageSummary     PageKind = "summary"
)

const (
	reportTitle     = "Vertraulicher Bericht"
	defaultClient   = "Client"
	defaultLocation = "DE"

	confidentialityTitle  = "Vertraulichkeitsklausel"
	confidentialityClause = "Dieser Vertrauliche Bericht enthält zum Teil Informationen, die uns unter Zusicherung strengster " +
		"Vertraulichkeit mitgeteilt wurden. Entsprechend unseren berufsethischen Prinzipien müssen wir Sie dazu verpflichten, " +
		"nur einer begrenzten Auswahl von Personen, die sich direkt mit der Auswertung befassen, Einsicht in diese Berichte zu " +
		"gewähren. Der Inhalt muss auch jeglichen Drittpersonen gegenüber geheim gehalten werden. Es dürfen keinerlei Referenzen " +
		"ohne Zustimmung des Kandidaten oder unsererseits eingeholt werden."
)

// continuingEducation is printed below the first education entry
var continuingEducation = []string{
	"Development Center for Potential Leaders und Präsentationstraining – Storyline und Visualisierung (beides 2024)",
	"Diverse Course auf Coursera (Data Analysis, RPA, etc.)",
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// Options are the inputs of a document that do not come from the record
type Options struct {
	Date     time.Time
	Branding config.Branding
}

// Row is one label/value line. Lines holds multi-line values.
type Row struct {
	Label string
	Value string
	Lines []string
}

// Table is a titled group of rows
type Table struct {
	Title string
	Rows  []Row
}

// ExperienceItem is one block on the experience page
type ExperienceItem struct {
	Years       string
	Company     string
	Title       string
	Description string
}

// EducationItem is one block on the education page
type EducationItem struct {
	Years       string
	Degree      string
	Institution string
	Field       string
	Description string
	Continuing  []string
}

// Cover is the content of the first page
type Cover struct {
	Letterhead      config.Branding
	Title           string
	CandidateName   string
	ClientName      string
	Position        string
	Location        string
	Presenter       string
	Date            string
	Confidentiality []string
}

// Page is one printed page. Only the fields of its Kind are set.
type Page struct {
	Number     int
	Kind       PageKind
	Header     string
	Title      string
	Subtitle   string
	Tables     []Table
	Experience []ExperienceItem
	Education  []EducationItem
	Heading    string
	Paragraphs []string
	Cover      *Cover
}

// Document is the paginated print layout of a report
type Document struct {
	Title         string
	CandidateName string
	Pages         []Page
}

// BuildDocument lays out the six report pages
func BuildDocument(rec models.CandidateRecord, sections models.ReportSections, assignment models.Assignment, opts Options) Document {
	pd := rec.PersonalData
	name := pd.Name

	doc := Document{
		Title:         reportTitle + " " + name,
		CandidateName: name,
	}

	client := assignment.Client.Name
	if client == "" {
		client = defaultClient
	}

	doc.Pages = append(doc.Pages, Page{
		Kind: PageCover,
		Cover: &Cover{
			Letterhead:      opts.Branding,
			Title:           reportTitle,
			CandidateName:   name,
			ClientName:      client,
			Position:        "Position: " + assignment.Name,
			Location:        "Standort:",
			Presenter:       opts.Branding.Presenter,
			Date:            GermanDate(opts.Date),
			Confidentiality: []string{confidentialityTitle, confidentialityClause},
		},
	})

	doc.Pages = append(doc.Pages, Page{
		Kind:  PagePersonal,
		Title: "Persönliche Daten",
		Tables: []Table{
			{Rows: personalRows(pd)},
			{Title: "Einkommen (wie von dem Kandidaten angegeben)", Rows: []Row{
				{Label: "Aktuelles Zielgehalt", Value: "€"},
				{Label: "davon fix", Value: "€"},
				{Label: "davon variabel", Value: "€"},
				{Label: "Sonstiges"},
				{Label: "Erwartung"},
			}},
			{Rows: []Row{
				{Label: "Kündigungsfrist", Value: "Monate zum Monatsende"},
				{Label: "Umzugsbereitschaft"},
			}},
		},
	})

	experience := make([]ExperienceItem, 0, len(rec.Experience))
	for _, exp := range rec.Experience {
		location := exp.Location
		if location == "" {
			location = defaultLocation
		}
		experience = append(experience, ExperienceItem{
			Years:       exp.Years,
			Company:     exp.Company + ", " + location,
			Title:       exp.Title,
			Description: exp.Description,
		})
	}
	doc.Pages = append(doc.Pages, Page{
		Kind:       PageExperience,
		Title:      "Beurteilung und Empfehlung",
		Subtitle:   "Beruflich-fachliche Erfahrung",
		Experience: experience,
	})

	education := make([]EducationItem, 0, len(rec.Education))
	for i, edu := range rec.Education {
		item := EducationItem{
			Years:       edu.Years,
			Degree:      "Abschluss " + edu.Degree,
			Institution: edu.Institution,
			Field:       edu.Field,
			Description: edu.Description,
		}
		if item.Description == "" {
			item.Description = "-"
		}
		if i == 0 {
			item.Continuing = continuingEducation
		}
		education = append(education, item)
	}
	doc.Pages = append(doc.Pages, Page{
		Kind:      PageEducation,
		Subtitle:  "Theoretische Ausbildung:",
		Education: education,
	})

	doc.Pages = append(doc.Pages, Page{
		Kind:       PagePersonality,
		Title:      "Persönlichkeit und Fähigkeiten",
		Heading:    "PERSÖNLICHKEIT",
		Paragraphs: Paragraphs(sections.PersonalitySection),
	})

	doc.Pages = append(doc.Pages, Page{
		Kind:       PageSummary,
		Heading:    "ZUSAMMENFASSUNG",
		Paragraphs: Paragraphs(sections.SummarySection),
	})

	for i := range doc.Pages {
		doc.Pages[i].Number = i + 1
		if i > 0 {
			doc.Pages[i].Header = fmt.Sprintf("%s %s - %d -", reportTitle, name, i+1)
		}
	}

	return doc
}

func personalRows(pd models.PersonalData) []Row {
	age := ""
	if pd.Age != nil {
		age = fmt.Sprintf("%d J.", *pd.Age)
	}

	return []Row{
		{Label: "Name:", Value: pd.Name},
		{Label: "Adresse:", Value: pd.Address},
		{Label: "Telefonnummer:", Value: pd.Phone},
		{Label: "Email:", Value: pd.Email},
		{Label: "Alter / Geburtsdatum:", Value: age + " / " + pd.Birthdate},
		{Label: "Familienstand:", Value: pd.MaritalStatus},
		{Label: "Nationalität:", Value: pd.Nationality},
		{Label: "Sprachkenntnisse:", Lines: LanguageLines(pd.Languages)},
	}
}

// LanguageLines renders languages as "<language> <level>", sorted by language
func LanguageLines(languages map[string]string) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, strings.TrimSpace(name+" "+languages[name]))
	}
	return lines
}

// GermanDate formats t as "17. Oktober 2026"
func GermanDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// Paragraphs turns generated text into printable paragraphs. Double hyphens
// become em dashes; empty text yields no paragraphs.
func Paragraphs(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "--", "—")
	return paragraphBreak.Split(text, -1)
}

// FilterRecord keeps only the parts of rec enabled in cfg. Disabled parts are
// emptied, never nil.
func FilterRecord(rec models.CandidateRecord, cfg models.ReportConfig) models.CandidateRecord {
	out := models.NewCandidateRecord()
	out.ProjectData = rec.ProjectData
	if cfg.IncludePersonal {
		out.PersonalData = rec.PersonalData
	}
	if cfg.IncludeExperience {
		out.Experience = rec.Experience
	}
	if cfg.IncludeEducation {
		out.Education = rec.Education
	}
	return out
}
