package models

import (
	"encoding/json"
	"errors"
)

// ErrNothingSelected is returned when a report configuration enables no part
var ErrNothingSelected = errors.New("select at least one section to include in the report")

// Client is the company an assignment is run for
type Client struct {
	Name string  `json:"name"`
	Logo *string `json:"logo"`
}

// Assignment represents a job requisition tracked in Ezekia
type Assignment struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Client         Client `json:"client"`
	ContactPerson  string `json:"contactPerson"`
	CreatedAt      string `json:"createdAt"`
	Description    string `json:"description"`
	CandidateCount int    `json:"candidates_count"`
}

// Position is a single entry of a candidate's work history as delivered by Ezekia
type Position struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Summary   string `json:"summary"`
	Location  string `json:"location,omitempty"`
}

// CandidateSummary is the list view of a candidate within one assignment
type CandidateSummary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	Photo           string     `json:"photo"`
	Positions       []Position `json:"positions"`
	ExperienceYears string     `json:"experience_years"`
}

// PersonalData holds the demographic part of a candidate record
type PersonalData struct {
	Name          string            `json:"name"`
	Address       string            `json:"address"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	Age           *int              `json:"age"`
	Birthdate     string            `json:"birthdate"`
	MaritalStatus string            `json:"marital_status"`
	Nationality   string            `json:"nationality"`
	Languages     map[string]string `json:"languages"`
	Photo         string            `json:"photo"`
}

// EducationEntry is one normalized education item
type EducationEntry struct {
	Years       string `json:"years"`
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ExperienceEntry is one normalized work experience item
type ExperienceEntry struct {
	Years       string `json:"years"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
}

// CandidateRecord is the normalized detail record used to build a report.
// Every field is present; missing upstream values are empty, never absent.
type CandidateRecord struct {
	PersonalData PersonalData      `json:"personal_data"`
	Education    []EducationEntry  `json:"education"`
	Experience   []ExperienceEntry `json:"experience"`
	ProjectData  json.RawMessage   `json:"project_data"`
}

// NewCandidateRecord returns a record with all collections initialized
func NewCandidateRecord() CandidateRecord {
	return CandidateRecord{
		PersonalData: PersonalData{Languages: map[string]string{}},
		Education:    []EducationEntry{},
		Experience:   []ExperienceEntry{},
		ProjectData:  json.RawMessage("{}"),
	}
}

// ReportSections holds the two narrative sections produced by the language model
type ReportSections struct {
	PersonalitySection string `json:"personality_section"`
	SummarySection     string `json:"summary_section"`
}

// Report is the transient result of one generation request
type Report struct {
	CandidateData  CandidateRecord `json:"candidateData"`
	ReportSections ReportSections  `json:"reportSections"`
}

// ReportConfig selects which parts of the record are sent to the narrative generator
type ReportConfig struct {
	IncludePersonal   bool `json:"includePersonal"`
	IncludeExperience bool `json:"includeExperience"`
	IncludeEducation  bool `json:"includeEducation"`
}

// DefaultReportConfig enables all parts
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		IncludePersonal:   true,
		IncludeExperience: true,
		IncludeEducation:  true,
	}
}

// Any reports whether at least one part is selected
func (c ReportConfig) Any() bool {
	return c.IncludePersonal || c.IncludeExperience || c.IncludeEducation
}

// Validate returns ErrNothingSelected when no part is enabled
func (c ReportConfig) Validate() error {
	if !c.Any() {
		return ErrNothingSelected
	}
	return nil
}
