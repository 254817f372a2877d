package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/gateway"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	assignments []models.Assignment
	candidates  []models.CandidateSummary
	record      models.CandidateRecord
	err         error
	limits      []int
}

func (f *fakeSource) ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error) {
	f.limits = append(f.limits, limit)
	return f.assignments, f.err
}

func (f *fakeSource) ListCandidates(ctx context.Context, assignmentID string, limit int) ([]models.CandidateSummary, error) {
	f.limits = append(f.limits, limit)
	return f.candidates, f.err
}

func (f *fakeSource) GetAllCandidateData(ctx context.Context, personID, assignmentID string) (models.CandidateRecord, error) {
	return f.record, f.err
}

type fakeNarrator struct {
	got      models.CandidateRecord
	sections models.ReportSections
	err      error
}

func (f *fakeNarrator) Generate(ctx context.Context, rec models.CandidateRecord) (models.ReportSections, error) {
	f.got = rec
	return f.sections, f.err
}

func newTestAgent(src *fakeSource, n *fakeNarrator) *ReportAgent {
	cfg := config.DefaultConfig()
	cfg.AssignmentLimit = 25
	cfg.CandidateLimit = 50
	return NewReportAgent(cfg, config.NewMemoryStore(nil), WithDataSource(src), WithNarrator(n))
}

func testRecord() models.CandidateRecord {
	rec := models.NewCandidateRecord()
	rec.PersonalData.Name = "Eva Braun"
	rec.Experience = []models.ExperienceEntry{{Years: "2020 - Present", Title: "CEO", Company: "Acme"}}
	rec.Education = []models.EducationEntry{{Years: "2001 - 2005", Degree: "MSc"}}
	return rec
}

func TestFetchUsesConfiguredLimits(t *testing.T) {
	src := &fakeSource{
		assignments: []models.Assignment{{ID: "1"}},
		candidates:  []models.CandidateSummary{{ID: "c"}},
	}
	a := newTestAgent(src, &fakeNarrator{})

	assignments, err := a.FetchAssignments(context.Background())
	require.NoError(t, err)
	assert.Len(t, assignments, 1)

	candidates, err := a.FetchCandidates(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	assert.Equal(t, []int{25, 50}, src.limits)
}

func TestFetchPropagatesGatewayError(t *testing.T) {
	gwErr := &gateway.Error{Status: 401, Message: "Unauthenticated."}
	a := newTestAgent(&fakeSource{err: gwErr}, &fakeNarrator{})

	_, err := a.FetchAssignments(context.Background())
	var target *gateway.Error
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 401, target.Status)
}

func TestGenerateReport(t *testing.T) {
	src := &fakeSource{record: testRecord()}
	n := &fakeNarrator{sections: models.ReportSections{PersonalitySection: "P", SummarySection: "S"}}
	a := newTestAgent(src, n)

	var mu sync.Mutex
	var progress []int
	cb := func(current, total int, message string) {
		mu.Lock()
		progress = append(progress, current)
		mu.Unlock()
	}

	rep, err := a.GenerateReport(context.Background(), "p1", "a1", models.ReportConfig{IncludeExperience: true}, cb)
	require.NoError(t, err)

	assert.Equal(t, "P", rep.ReportSections.PersonalitySection)
	assert.Equal(t, "Eva Braun", rep.CandidateData.PersonalData.Name)
	assert.Len(t, rep.CandidateData.Education, 1)

	assert.Empty(t, n.got.PersonalData.Name)
	assert.Len(t, n.got.Experience, 1)
	assert.Empty(t, n.got.Education)

	assert.Equal(t, []int{0, 40, 50, 100}, progress)
	assert.Equal(t, 1, a.GeneratedReports())
}

// gatedNarrator blocks its first call until release is closed
type gatedNarrator struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedNarrator) Generate(ctx context.Context, rec models.CandidateRecord) (models.ReportSections, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if n == 1 {
		close(g.entered)
		<-g.release
	}
	return models.ReportSections{PersonalitySection: rec.PersonalData.Name}, nil
}

func TestGenerateReportProgressIsPerRun(t *testing.T) {
	n := &gatedNarrator{entered: make(chan struct{}), release: make(chan struct{})}
	cfg := config.DefaultConfig()
	a := NewReportAgent(cfg, config.NewMemoryStore(nil), WithDataSource(&fakeSource{record: testRecord()}), WithNarrator(n))

	var mu sync.Mutex
	var first, second []int
	collect := func(into *[]int) ProgressCallback {
		return func(current, total int, message string) {
			mu.Lock()
			*into = append(*into, current)
			mu.Unlock()
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := a.GenerateReport(context.Background(), "p1", "a1", models.DefaultReportConfig(), collect(&first))
		done <- err
	}()
	<-n.entered

	_, err := a.GenerateReport(context.Background(), "p2", "a1", models.DefaultReportConfig(), collect(&second))
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []int{0, 40, 50, 100}, second)
	assert.Equal(t, []int{0, 40, 50}, first)
	mu.Unlock()

	close(n.release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 40, 50, 100}, first)
	assert.Equal(t, []int{0, 40, 50, 100}, second)
	assert.Equal(t, 2, a.GeneratedReports())
}

func TestGenerateReportErrors(t *testing.T) {
	t.Run("nothing selected", func(t *testing.T) {
		a := newTestAgent(&fakeSource{record: testRecord()}, &fakeNarrator{})
		_, err := a.GenerateReport(context.Background(), "p", "a", models.ReportConfig{}, nil)
		assert.True(t, errors.Is(err, models.ErrNothingSelected))
	})

	t.Run("fetch failure", func(t *testing.T) {
		a := newTestAgent(&fakeSource{err: &gateway.Error{Status: 404, Message: "Not found"}}, &fakeNarrator{})
		_, err := a.GenerateReport(context.Background(), "p", "a", models.DefaultReportConfig(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate report: ")
		assert.Contains(t, err.Error(), "Not found")
	})

	t.Run("narrator failure", func(t *testing.T) {
		a := newTestAgent(&fakeSource{record: testRecord()}, &fakeNarrator{err: errors.New("quota exceeded")})
		_, err := a.GenerateReport(context.Background(), "p", "a", models.DefaultReportConfig(), nil)
		assert.EqualError(t, err, "failed to generate report: quota exceeded")
		assert.Equal(t, 0, a.GeneratedReports())
	})

	t.Run("missing completion key", func(t *testing.T) {
		cfg := config.DefaultConfig()
		a := NewReportAgent(cfg, config.NewMemoryStore(nil), WithDataSource(&fakeSource{record: testRecord()}))
		_, err := a.GenerateReport(context.Background(), "p", "a", models.DefaultReportConfig(), nil)
		assert.True(t, errors.Is(err, config.ErrMissingCredential))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := newTestAgent(&fakeSource{record: testRecord()}, &fakeNarrator{})
		_, err := a.GenerateReport(ctx, "p", "a", models.DefaultReportConfig(), nil)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestReconfigure(t *testing.T) {
	a := NewReportAgent(config.DefaultConfig(), config.NewMemoryStore(map[string]string{config.KeyCompletion: "sk-1"}))

	n, err := a.narratorFor(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)

	cfg := config.DefaultConfig()
	cfg.AssignmentLimit = 5
	require.NoError(t, a.Reconfigure(cfg))

	assignments, _ := a.limits()
	assert.Equal(t, 5, assignments)
	assert.Nil(t, a.narrator)
	assert.NoError(t, a.Close())
}

func TestFilterAssignments(t *testing.T) {
	list := []models.Assignment{
		{Name: "Head of Sales", Client: models.Client{Name: "Acme"}},
		{Name: "CFO", Client: models.Client{Name: "Beta Holding"}},
		{Name: "CTO"},
	}

	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "empty term", term: "", expected: []string{"Head of Sales", "CFO", "CTO"}},
		{name: "by name", term: "sales", expected: []string{"Head of Sales"}},
		{name: "by client", term: "HOLDING", expected: []string{"CFO"}},
		{name: "shared substring", term: "c", expected: []string{"Head of Sales", "CFO", "CTO"}},
		{name: "no match", term: "xyz", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAssignments(list, tt.term)
			names := make([]string, 0, len(got))
			for _, a := range got {
				names = append(names, a.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFilterCandidates(t *testing.T) {
	list := []models.CandidateSummary{
		{Name: "Anna Berg", Positions: []models.Position{{Title: "CFO", Company: "Acme"}, {Title: "Controller", Company: "Zeta"}}},
		{Name: "Ben Ort", Positions: []models.Position{{Title: "Engineer", Company: "Beta"}}},
		{Name: "Cara Lee"},
	}

	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "by name", term: "ben", expected: []string{"Ben Ort"}},
		{name: "by current title", term: "cfo", expected: []string{"Anna Berg"}},
		{name: "by current company", term: "beta", expected: []string{"Ben Ort"}},
		{name: "earlier position ignored", term: "zeta", expected: []string{}},
		{name: "no positions", term: "lee", expected: []string{"Cara Lee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCandidates(list, tt.term)
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestComputeStats(t *testing.T) {
	assignments := []models.Assignment{{Status: "Active"}, {Status: "Active"}, {Status: "Closed"}}
	candidates := []models.CandidateSummary{{Status: "Active"}, {Status: "Rejected"}, {Status: "Rejected"}}

	s := ComputeStats(assignments, candidates, 4)
	assert.Equal(t, Stats{
		TotalAssignments:  3,
		ActiveAssignments: 2,
		AssignmentPercent: 67,
		TotalCandidates:   3,
		ActiveCandidates:  1,
		CandidatePercent:  33,
		Reports:           4,
	}, s)

	assert.Equal(t, Stats{}, ComputeStats(nil, nil, 0))
}
