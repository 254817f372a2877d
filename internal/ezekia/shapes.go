package ezekia

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// Decoders for the upstream JSON shapes. Ezekia has moved and retyped fields
// between API versions, so every decoder accepts each known variant and never
// fails on a type mismatch; unknown shapes decode to the zero value.

// text is a string, a number, or an object carrying a name
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = text(strings.TrimSpace(s))
		}
	case '{':
		var obj struct {
			Name  text `json:"name"`
			Value text `json:"value"`
			Label text `json:"label"`
		}
		if err := json.Unmarshal(b, &obj); err == nil {
			*t = firstText(obj.Name, obj.Value, obj.Label)
		}
	case '[', 'n', 't', 'f':
	default:
		*t = text(b)
	}
	return nil
}

func (t text) String() string { return string(t) }

func firstText(values ...text) text {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// flexInt is a number or a numeric string
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	*n = 0
	var t text
	_ = t.UnmarshalJSON(b)
	if f, err := strconv.ParseFloat(string(t), 64); err == nil {
		*n = flexInt(f)
	}
	return nil
}

// companyRef is {"name": ..., "image": {"url": ...}} or a bare name
type companyRef struct {
	Name    text
	LogoURL string
}

func (c *companyRef) UnmarshalJSON(b []byte) error {
	*c = companyRef{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] != '{' {
		return c.Name.UnmarshalJSON(b)
	}

	var obj struct {
		Name  text `json:"name"`
		Image struct {
			URL text `json:"url"`
		} `json:"image"`
		Logo text `json:"logo"`
	}
	_ = json.Unmarshal(b, &obj)
	c.Name = obj.Name
	c.LogoURL = string(firstText(obj.Image.URL, obj.Logo))
	return nil
}

// assignmentShape covers the v2 list item (company under relationships) and the
// v1 project detail (company under client)
type assignmentShape struct {
	ID            text `json:"id"`
	Name          text `json:"name"`
	Status        text `json:"status"`
	Relationships struct {
		Company *companyRef `json:"company"`
	} `json:"relationships"`
	Client          *companyRef `json:"client"`
	ContactPerson   text        `json:"contactPerson"`
	CreatedAt       text        `json:"createdAt"`
	Description     text        `json:"description"`
	CandidatesCount flexInt     `json:"candidates_count"`
}

func (a assignmentShape) company() companyRef {
	if c := a.Relationships.Company; c != nil && c.Name != "" {
		return *c
	}
	if a.Client != nil {
		return *a.Client
	}
	return companyRef{}
}

// positionShape is one work history entry
type positionShape struct {
	Title     text       `json:"title"`
	Company   companyRef `json:"company"`
	StartDate text       `json:"startDate"`
	EndDate   text       `json:"endDate"`
	Summary   text       `json:"summary"`
	Location  text       `json:"location"`
}

// candidateShape is one entry of projects/{id}/candidates
type candidateShape struct {
	ID              text `json:"id"`
	Name            text `json:"name"`
	FirstName       text `json:"firstName"`
	LastName        text `json:"lastName"`
	Status          text `json:"status"`
	ProfilePicture  text `json:"profilePicture"`
	Photo           text `json:"photo"`
	ExperienceYears text `json:"experience_years"`
	Profile         struct {
		Positions positionList `json:"positions"`
	} `json:"profile"`
}

// positionList decodes an array of positions, dropping entries that are not objects
type positionList []positionShape

func (p *positionList) UnmarshalJSON(b []byte) error {
	*p = nil
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make(positionList, 0, len(items))
	for _, raw := range items {
		var pos positionShape
		if err := json.Unmarshal(raw, &pos); err != nil {
			continue
		}
		out = append(out, pos)
	}
	*p = out
	return nil
}

func (p positionList) positions() []models.Position {
	out := make([]models.Position, 0, len(p))
	for _, pos := range p {
		out = append(out, pos.position())
	}
	return out
}

func (p positionShape) position() models.Position {
	return models.Position{
		Title:     string(p.Title),
		Company:   string(p.Company.Name),
		StartDate: string(p.StartDate),
		EndDate:   string(p.EndDate),
		Summary:   string(p.Summary),
		Location:  string(p.Location),
	}
}

// contact is an email or phone entry: a bare string or an object
type contact string

func (c *contact) UnmarshalJSON(b []byte) error {
	*c = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] != '{' {
		var t text
		_ = t.UnmarshalJSON(b)
		*c = contact(t)
		return nil
	}
	var obj struct {
		Email   text `json:"email"`
		Number  text `json:"number"`
		Address text `json:"address"`
		Value   text `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		*c = contact(firstText(obj.Email, obj.Number, obj.Address, obj.Value))
	}
	return nil
}

// contactList tolerates a single contact in place of an array
type contactList []string

func (l *contactList) UnmarshalJSON(b []byte) error {
	*l = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] != '[' {
		var c contact
		_ = c.UnmarshalJSON(b)
		if c != "" {
			*l = contactList{string(c)}
		}
		return nil
	}
	var items []contact
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	for _, c := range items {
		*l = append(*l, string(c))
	}
	return nil
}

// Address is a postal address, structured or a free-form line
type Address struct {
	Street     string
	PostalCode string
	City       string
	Line       string
}

func (a *Address) UnmarshalJSON(b []byte) error {
	*a = Address{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] != '{' {
		var t text
		_ = t.UnmarshalJSON(b)
		a.Line = string(t)
		return nil
	}
	var obj struct {
		Street     text `json:"street"`
		PostalCode text `json:"postalCode"`
		City       text `json:"city"`
	}
	_ = json.Unmarshal(b, &obj)
	a.Street, a.PostalCode, a.City = string(obj.Street), string(obj.PostalCode), string(obj.City)
	return nil
}

// Language is one spoken language with its proficiency
type Language struct {
	Name  string
	Level string
}

type languageList []Language

func (l *languageList) UnmarshalJSON(b []byte) error {
	*l = nil
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	for _, raw := range items {
		var obj struct {
			Language text `json:"language"`
			Name     text `json:"name"`
			Level    text `json:"level"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			var t text
			_ = t.UnmarshalJSON(raw)
			obj.Name = t
		}
		*l = append(*l, Language{Name: string(firstText(obj.Language, obj.Name)), Level: string(obj.Level)})
	}
	return nil
}

// Person is the demographic detail of v2/people/{id}
type Person struct {
	ID            string
	Name          string
	FirstName     string
	LastName      string
	Emails        []string
	Phones        []string
	Address       Address
	Birthday      string
	MaritalStatus string
	Nationality   string
	Languages     []Language
	Photo         string

	// Positions embedded under profile.positions; nil when the field was absent
	Positions []models.Position
}

func (p *Person) UnmarshalJSON(b []byte) error {
	*p = Person{}
	var obj struct {
		ID            text         `json:"id"`
		Name          text         `json:"name"`
		FirstName     text         `json:"firstName"`
		LastName      text         `json:"lastName"`
		Emails        contactList  `json:"emails"`
		Phones        contactList  `json:"phones"`
		Address       Address      `json:"address"`
		Birthday      text         `json:"birthday"`
		MaritalStatus text         `json:"maritalStatus"`
		Nationality   text         `json:"nationality"`
		Languages     languageList `json:"languages"`
		Photo         text         `json:"photo"`
		Profile       struct {
			Positions *positionList `json:"positions"`
		} `json:"profile"`
	}
	_ = json.Unmarshal(b, &obj)

	p.ID = string(obj.ID)
	p.Name = string(obj.Name)
	p.FirstName = string(obj.FirstName)
	p.LastName = string(obj.LastName)
	p.Emails = obj.Emails
	p.Phones = obj.Phones
	p.Address = obj.Address
	p.Birthday = string(obj.Birthday)
	p.MaritalStatus = string(obj.MaritalStatus)
	p.Nationality = string(obj.Nationality)
	p.Languages = obj.Languages
	p.Photo = string(obj.Photo)
	if obj.Profile.Positions != nil {
		p.Positions = obj.Profile.Positions.positions()
	}
	return nil
}

// empty reports whether no demographic field was decoded
func (p Person) empty() bool {
	return p.ID == "" && p.DisplayName() == "" && len(p.Emails) == 0 && len(p.Phones) == 0 &&
		p.Birthday == "" && p.Nationality == "" && p.Positions == nil
}

// DisplayName is name, else first and last name, else empty
func (p Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Education is one education item in any of its source shapes
type Education interface {
	entry() educationFields
}

type educationFields struct {
	years       string
	degree      string
	institution string
	field       string
	description string
}

// SynthesizedEducation was recovered from a position summary; its year range is final
type SynthesizedEducation struct {
	Years       string
	Degree      string
	Institution string
	Field       string
	Description string
}

func (e SynthesizedEducation) entry() educationFields {
	return educationFields{e.Years, e.Degree, e.Institution, e.Field, e.Description}
}

// UpstreamEducation is an item of people/{id}/education
type UpstreamEducation struct {
	StartYear   string
	EndYear     string
	Degree      string
	Institution string
	Field       string
	Description string
}

func (e UpstreamEducation) entry() educationFields {
	return educationFields{
		years:       e.StartYear + " - " + e.EndYear,
		degree:      e.Degree,
		institution: e.Institution,
		field:       e.Field,
		description: e.Description,
	}
}

func (e *UpstreamEducation) UnmarshalJSON(b []byte) error {
	*e = UpstreamEducation{}
	var obj struct {
		StartYear   text `json:"startYear"`
		EndYear     text `json:"endYear"`
		Start       text `json:"start"`
		End         text `json:"end"`
		Degree      text `json:"degree"`
		Institution text `json:"institution"`
		School      text `json:"school"`
		Field       text `json:"field"`
		Description text `json:"description"`
	}
	_ = json.Unmarshal(b, &obj)
	e.StartYear = string(firstText(obj.StartYear, text(yearOf(string(obj.Start)))))
	e.EndYear = string(firstText(obj.EndYear, text(yearOf(string(obj.End)))))
	e.Degree = string(obj.Degree)
	e.Institution = string(firstText(obj.Institution, obj.School))
	e.Field = string(obj.Field)
	e.Description = string(obj.Description)
	return nil
}

// yearOf returns the leading four characters of a date string
func yearOf(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// payload unwraps the {"data": ...} envelope. Bodies without one are returned as is.
func payload(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return nil
	}
	if body[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
			if string(bytes.TrimSpace(env.Data)) == "null" {
				return nil
			}
			return env.Data
		}
	}
	return body
}

// elements splits an array payload into its elements
func elements(data json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &list) != nil {
		return nil
	}
	return list
}
