package ezekia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fmuoria/ezekia-report-agent/internal/gateway"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

var (
	assignmentFields = []string{"name", "status", "relationships.company", "contactPerson", "createdAt", "description", "candidates_count"}
	candidateFields  = []string{"id", "name", "firstName", "lastName", "profilePicture", "profile.positions", "status", "experience_years"}
	personFields     = []string{"name", "firstName", "lastName", "emails", "phones", "address", "birthday", "maritalStatus", "nationality", "languages", "photo", "profile.positions"}
	projectFields    = []string{"name", "status", "client", "contactPerson", "createdAt", "description"}
)

// Client reads assignments and candidates from Ezekia and normalizes them
type Client struct {
	gw        gateway.Invoker
	extractor EducationExtractor
	now       func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithEducationExtractor replaces the education heuristic; nil disables it
func WithEducationExtractor(e EducationExtractor) Option {
	return func(c *Client) { c.extractor = e }
}

// WithClock sets the time source used for ages and default timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a data client on top of a gateway
func NewClient(gw gateway.Invoker, opts ...Option) *Client {
	c := &Client{
		gw:        gw,
		extractor: NewKeywordExtractor(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, endpoint string, params gateway.Params) (json.RawMessage, error) {
	resp, err := c.gw.Invoke(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, err
	}
	return payload(resp.Body), nil
}

// ListAssignments returns the most recently updated assignments
func (c *Client) ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error) {
	data, err := c.get(ctx, "projects", gateway.Params{
		"isAssignment": true,
		"count":        limit,
		"sortBy":       "updatedAt",
		"sortOrder":    "desc",
		"fields":       assignmentFields,
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	list := elements(data)
	assignments := make([]models.Assignment, 0, len(list))
	for _, raw := range list {
		assignments = append(assignments, NormalizeAssignment(raw, now))
	}

	slog.Info("fetched assignments", "count", len(assignments))
	return assignments, nil
}

// ListCandidates returns the candidates attached to an assignment
func (c *Client) ListCandidates(ctx context.Context, assignmentID string, limit int) ([]models.CandidateSummary, error) {
	data, err := c.get(ctx, "projects/"+url.PathEscape(assignmentID)+"/candidates", gateway.Params{
		"count":     limit,
		"sortBy":    "updatedAt",
		"sortOrder": "desc",
		"fields":    candidateFields,
	})
	if err != nil {
		return nil, err
	}

	list := elements(data)
	candidates := make([]models.CandidateSummary, 0, len(list))
	for _, raw := range list {
		candidates = append(candidates, NormalizeCandidate(raw))
	}

	slog.Info("fetched candidates", "assignment_id", assignmentID, "count", len(candidates))
	return candidates, nil
}

// GetCandidateDetail fetches the demographic detail of a person. An empty body
// yields the zero Person.
func (c *Client) GetCandidateDetail(ctx context.Context, personID string) (Person, error) {
	data, err := c.get(ctx, "v2/people/"+url.PathEscape(personID), gateway.Params{"fields": personFields})
	if err != nil {
		return Person{}, err
	}

	var p Person
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}
	if p.empty() {
		slog.Debug("person detail decoded empty", "person_id", personID, "bytes", len(data))
	}
	return p, nil
}

// GetPositions returns a person's work history, preferring the list embedded
// in the detail record
func (c *Client) GetPositions(ctx context.Context, personID string) ([]models.Position, error) {
	person, err := c.GetCandidateDetail(ctx, personID)
	if err != nil {
		return nil, err
	}
	return c.positionsFor(ctx, personID, person)
}

func (c *Client) positionsFor(ctx context.Context, personID string, person Person) ([]models.Position, error) {
	if person.Positions != nil {
		slog.Debug("using embedded positions", "person_id", personID, "count", len(person.Positions))
		return person.Positions, nil
	}

	data, err := c.get(ctx, "v2/people/"+url.PathEscape(personID)+"/positions", gateway.Params{
		"sortBy":    "startDate",
		"sortOrder": "desc",
	})
	if err != nil {
		return nil, err
	}

	var list positionList
	_ = json.Unmarshal(data, &list)
	if list == nil && len(data) > 0 {
		slog.Debug("positions payload is not a list", "person_id", personID, "bytes", len(data))
	}
	positions := list.positions()
	slog.Debug("fetched positions", "person_id", personID, "count", len(positions))
	return positions, nil
}

// GetEducation returns education items recovered from the work history, or
// the education resource when nothing was recovered. A failing education
// resource yields an empty list.
func (c *Client) GetEducation(ctx context.Context, personID string) ([]Education, error) {
	positions, err := c.GetPositions(ctx, personID)
	if err != nil {
		return nil, err
	}
	return c.educationFor(ctx, personID, positions), nil
}

func (c *Client) educationFor(ctx context.Context, personID string, positions []models.Position) []Education {
	if c.extractor != nil {
		if found := c.extractor.Extract(positions); len(found) > 0 {
			slog.Debug("education recovered from positions", "person_id", personID, "count", len(found))
			return found
		}
	}

	data, err := c.get(ctx, "people/"+url.PathEscape(personID)+"/education", gateway.Params{
		"sortBy":    "start",
		"sortOrder": "desc",
	})
	if err != nil {
		slog.Warn("education resource unavailable, continuing without", "person_id", personID, "error", err)
		return []Education{}
	}

	list := elements(data)
	out := make([]Education, 0, len(list))
	for _, raw := range list {
		var e UpstreamEducation
		_ = json.Unmarshal(raw, &e)
		if e == (UpstreamEducation{}) {
			slog.Debug("education item decoded empty", "person_id", personID, "item", string(raw))
		}
		out = append(out, e)
	}
	return out
}

// GetProject fetches an assignment's raw detail
func (c *Client) GetProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	data, err := c.get(ctx, "projects/"+url.PathEscape(projectID), gateway.Params{"fields": projectFields})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	return data, nil
}

// GetAllCandidateData fetches everything needed for a report, one request at
// a time, and normalizes it. The project is fetched only when assignmentID is set.
func (c *Client) GetAllCandidateData(ctx context.Context, personID, assignmentID string) (models.CandidateRecord, error) {
	person, err := c.GetCandidateDetail(ctx, personID)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to fetch candidate: %w", err)
	}

	positions, err := c.positionsFor(ctx, personID, person)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to fetch positions: %w", err)
	}

	education := c.educationFor(ctx, personID, positions)

	var project json.RawMessage
	if assignmentID != "" {
		project, err = c.GetProject(ctx, assignmentID)
		if err != nil {
			return models.CandidateRecord{}, fmt.Errorf("failed to fetch assignment: %w", err)
		}
	}

	rec := NormalizeRecord(person, positions, education, project, c.now())
	slog.Info("candidate data assembled",
		"person_id", personID,
		"experience", len(rec.Experience),
		"education", len(rec.Education))
	return rec, nil
}
