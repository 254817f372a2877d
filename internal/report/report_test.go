package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() models.CandidateRecord {
	age := 41
	rec := models.NewCandidateRecord()
	rec.PersonalData = models.PersonalData{
		Name:          "Jörg Weiß",
		Address:       "Hauptstraße 1, 80331 München",
		Phone:         "+49 89 123",
		Email:         "jw@example.com",
		Age:           &age,
		Birthdate:     "1983-02-01",
		MaritalStatus: "verheiratet",
		Nationality:   "deutsch",
		Languages:     map[string]string{"Englisch": "fließend", "Deutsch": "Muttersprache"},
	}
	rec.Experience = []models.ExperienceEntry{
		{Years: "2020 - Present", Title: "CTO", Company: "Acme", Location: "Berlin", Description: "Leads engineering"},
		{Years: "2015 - 2020", Title: "Architect", Company: "Beta"},
	}
	rec.Education = []models.EducationEntry{
		{Years: "2002 - 2007", Degree: "Diplom", Institution: "TU München", Field: "Informatik"},
		{Years: "2008 - 2009", Degree: "MBA", Institution: "INSEAD", Description: "Part time"},
	}
	return rec
}

func testSections() models.ReportSections {
	return models.ReportSections{
		PersonalitySection: "Erster Absatz -- mit Strich.\n\nZweiter Absatz.",
		SummarySection:     "Zusammenfassung.",
	}
}

func testAssignment() models.Assignment {
	return models.Assignment{ID: "7", Name: "Head of IT", Client: models.Client{Name: "Gamma AG"}}
}

func TestToMarkdown(t *testing.T) {
	md := ToMarkdown(testRecord(), models.ReportSections{PersonalitySection: "P", SummarySection: "S"})
	assert.Equal(t, "# Candidate Report for Jörg Weiß\n\n## PERSÖNLICHKEIT\nP\n\n## ZUSAMMENFASSUNG\nS\n", md)

	md = ToMarkdown(models.NewCandidateRecord(), models.ReportSections{})
	assert.True(t, strings.HasPrefix(md, "# Candidate Report for Candidate\n"))
}

func TestBuildDocumentPages(t *testing.T) {
	date := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	branding := config.Branding{CompanyName: "Search GmbH", Presenter: "Max Muster"}

	doc := BuildDocument(testRecord(), testSections(), testAssignment(), Options{Date: date, Branding: branding})

	require.Len(t, doc.Pages, 6)
	kinds := []PageKind{PageCover, PagePersonal, PageExperience, PageEducation, PagePersonality, PageSummary}
	for i, page := range doc.Pages {
		assert.Equal(t, i+1, page.Number)
		assert.Equal(t, kinds[i], page.Kind)
	}

	assert.Empty(t, doc.Pages[0].Header)
	assert.Equal(t, "Vertraulicher Bericht Jörg Weiß - 2 -", doc.Pages[1].Header)
	assert.Equal(t, "Vertraulicher Bericht Jörg Weiß - 6 -", doc.Pages[5].Header)

	cover := doc.Pages[0].Cover
	require.NotNil(t, cover)
	assert.Equal(t, "Gamma AG", cover.ClientName)
	assert.Equal(t, "Position: Head of IT", cover.Position)
	assert.Equal(t, "Max Muster", cover.Presenter)
	assert.Equal(t, "17. Oktober 2026", cover.Date)
	assert.Equal(t, "Vertraulichkeitsklausel", cover.Confidentiality[0])
}

func TestBuildDocumentClientFallback(t *testing.T) {
	doc := BuildDocument(testRecord(), testSections(), models.Assignment{Name: "X"}, Options{})
	assert.Equal(t, "Client", doc.Pages[0].Cover.ClientName)
}

func TestBuildDocumentPersonalRows(t *testing.T) {
	doc := BuildDocument(testRecord(), testSections(), testAssignment(), Options{})
	rows := doc.Pages[1].Tables[0].Rows

	values := map[string]Row{}
	for _, r := range rows {
		values[r.Label] = r
	}
	assert.Equal(t, "41 J. / 1983-02-01", values["Alter / Geburtsdatum:"].Value)
	assert.Equal(t, []string{"Deutsch Muttersprache", "Englisch fließend"}, values["Sprachkenntnisse:"].Lines)
	assert.Len(t, doc.Pages[1].Tables, 3)

	rec := testRecord()
	rec.PersonalData.Age = nil
	doc = BuildDocument(rec, testSections(), testAssignment(), Options{})
	assert.Equal(t, " / 1983-02-01", doc.Pages[1].Tables[0].Rows[4].Value)
}

func TestBuildDocumentExperienceAndEducation(t *testing.T) {
	doc := BuildDocument(testRecord(), testSections(), testAssignment(), Options{})

	exp := doc.Pages[2].Experience
	require.Len(t, exp, 2)
	assert.Equal(t, "Acme, Berlin", exp[0].Company)
	assert.Equal(t, "Beta, DE", exp[1].Company)

	edu := doc.Pages[3].Education
	require.Len(t, edu, 2)
	assert.Equal(t, "Abschluss Diplom", edu[0].Degree)
	assert.Equal(t, "-", edu[0].Description)
	assert.Len(t, edu[0].Continuing, 2)
	assert.Equal(t, "Part time", edu[1].Description)
	assert.Empty(t, edu[1].Continuing)
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "Ein Satz.", expected: []string{"Ein Satz."}},
		{name: "dash", input: "A -- B", expected: []string{"A — B"}},
		{name: "blank lines", input: "A\n\nB\n\n\nC", expected: []string{"A", "B", "C"}},
		{name: "single newline kept", input: "A\nB", expected: []string{"A\nB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paragraphs(tt.input))
		})
	}
}

func TestGermanDate(t *testing.T) {
	assert.Equal(t, "1. Januar 2025", GermanDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31. März 2024", GermanDate(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)))
}

func TestFilterRecord(t *testing.T) {
	rec := testRecord()

	all := FilterRecord(rec, models.DefaultReportConfig())
	assert.Equal(t, rec.PersonalData.Name, all.PersonalData.Name)
	assert.Len(t, all.Experience, 2)
	assert.Len(t, all.Education, 2)

	onlyExp := FilterRecord(rec, models.ReportConfig{IncludeExperience: true})
	assert.Empty(t, onlyExp.PersonalData.Name)
	assert.NotNil(t, onlyExp.PersonalData.Languages)
	assert.Len(t, onlyExp.Experience, 2)
	assert.NotNil(t, onlyExp.Education)
	assert.Empty(t, onlyExp.Education)
}

func TestRenderHTML(t *testing.T) {
	doc := BuildDocument(testRecord(), testSections(), testAssignment(), Options{
		Date:     time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC),
		Branding: config.Branding{CompanyName: "Search & Partner", AddressLines: []string{"Weg 1", "80000 München"}},
	})

	html, err := RenderHTML(doc, Assets{Logo: []byte{0x89, 'P', 'N', 'G'}, LogoType: "image/png"})
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Vertraulicher Bericht Jörg Weiß</title>")
	assert.Contains(t, html, "Search &amp; Partner")
	assert.Contains(t, html, "<p>80000 München</p>")
	assert.Contains(t, html, "17. Oktober 2026")
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, "Vertraulicher Bericht Jörg Weiß - 4 -")
	assert.Contains(t, html, "Erster Absatz — mit Strich.")
	assert.Contains(t, html, "Deutsch Muttersprache<br>")
	assert.Equal(t, 6, strings.Count(html, `<div class="page"`))
}

func TestRenderHTMLWithoutLogo(t *testing.T) {
	doc := BuildDocument(testRecord(), testSections(), testAssignment(), Options{})
	html, err := RenderHTML(doc, Assets{})
	require.NoError(t, err)
	assert.NotContains(t, html, "<img")
}

func TestLoadAssets(t *testing.T) {
	assets, err := LoadAssets(config.Branding{})
	require.NoError(t, err)
	assert.Empty(t, assets.Logo)

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0600))
	assets, err = LoadAssets(config.Branding{LogoPath: path})
	require.NoError(t, err)
	assert.Equal(t, []byte("fake"), assets.Logo)
	assert.Equal(t, "image/png", assets.LogoType)

	_, err = LoadAssets(config.Branding{LogoPath: filepath.Join(t.TempDir(), "missing.png")})
	assert.Error(t, err)
}
