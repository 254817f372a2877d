package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/ezekia"
	"github.com/fmuoria/ezekia-report-agent/internal/gateway"
	"github.com/fmuoria/ezekia-report-agent/internal/llm"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/fmuoria/ezekia-report-agent/internal/narrative"
	"github.com/fmuoria/ezekia-report-agent/internal/report"
)

// ProgressCallback is called to report progress during processing
type ProgressCallback func(current, total int, message string)

// DataSource reads assignments and candidates from Ezekia
type DataSource interface {
	ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error)
	ListCandidates(ctx context.Context, assignmentID string, limit int) ([]models.CandidateSummary, error)
	GetAllCandidateData(ctx context.Context, personID, assignmentID string) (models.CandidateRecord, error)
}

// Narrator writes the narrative sections for a record
type Narrator interface {
	Generate(ctx context.Context, rec models.CandidateRecord) (models.ReportSections, error)
}

// ReportAgent orchestrates fetching candidate data and generating reports
type ReportAgent struct {
	cfg        *config.Config
	creds      config.CredentialStore
	source     DataSource
	narrator   Narrator
	completer  llm.Completer
	generated  int
	mu         sync.RWMutex
}

// Option configures a ReportAgent
type Option func(*ReportAgent)

// WithDataSource replaces the Ezekia client
func WithDataSource(src DataSource) Option {
	return func(a *ReportAgent) { a.source = src }
}

// WithNarrator replaces the completion-backed narrative generator
func WithNarrator(n Narrator) Option {
	return func(a *ReportAgent) { a.narrator = n }
}

// NewReportAgent creates an agent for cfg. The completion client is created on
// the first report.
func NewReportAgent(cfg *config.Config, creds config.CredentialStore, opts ...Option) *ReportAgent {
	a := &ReportAgent{
		cfg:    cfg,
		creds:  creds,
		source: ezekia.NewClient(gateway.New(cfg.EzekiaBaseURL, creds)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// reportProgress calls cb if set
func reportProgress(cb ProgressCallback, current, total int, message string) {
	if cb != nil {
		cb(current, total, message)
	}
}

// Reconfigure applies changed settings. The next report creates a new
// completion client; the Ezekia client is rebuilt for the new base URL.
func (a *ReportAgent) Reconfigure(cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = cfg
	if _, ok := a.source.(*ezekia.Client); ok {
		a.source = ezekia.NewClient(gateway.New(cfg.EzekiaBaseURL, a.creds))
	}

	var err error
	if a.completer != nil {
		err = a.completer.Close()
		a.completer = nil
		a.narrator = nil
	}
	return err
}

func (a *ReportAgent) dataSource() DataSource {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

func (a *ReportAgent) limits() (assignments, candidates int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.AssignmentLimit, a.cfg.CandidateLimit
}

// narratorFor returns the narrator, creating the completion client on first use
func (a *ReportAgent) narratorFor(ctx context.Context) (Narrator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.narrator != nil {
		return a.narrator, nil
	}

	completer, err := llm.New(ctx, a.cfg, a.creds.Get(config.KeyCompletion, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	a.completer = completer
	a.narrator = narrative.NewGenerator(completer)
	return a.narrator, nil
}

// FetchAssignments lists the assignments visible to the service key
func (a *ReportAgent) FetchAssignments(ctx context.Context) ([]models.Assignment, error) {
	limit, _ := a.limits()
	assignments, err := a.dataSource().ListAssignments(ctx, limit)
	if err != nil {
		return nil, err
	}
	slog.Info("fetched assignments", "count", len(assignments))
	return assignments, nil
}

// FetchCandidates lists the candidates of one assignment
func (a *ReportAgent) FetchCandidates(ctx context.Context, assignmentID string) ([]models.CandidateSummary, error) {
	_, limit := a.limits()
	candidates, err := a.dataSource().ListCandidates(ctx, assignmentID, limit)
	if err != nil {
		return nil, err
	}
	slog.Info("fetched candidates", "assignment_id", assignmentID, "count", len(candidates))
	return candidates, nil
}

// GenerateReport fetches the full record of a candidate and writes the
// narrative for the parts enabled in cfg. The returned report always carries
// the unfiltered record. progress, if set, only receives updates of this run.
func (a *ReportAgent) GenerateReport(ctx context.Context, candidateID, assignmentID string, cfg models.ReportConfig, progress ProgressCallback) (models.Report, error) {
	if err := cfg.Validate(); err != nil {
		return models.Report{}, err
	}

	reportProgress(progress, 0, 100, "Fetching candidate data...")

	rec, err := a.dataSource().GetAllCandidateData(ctx, candidateID, assignmentID)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to generate report: %w", err)
	}

	select {
	case <-ctx.Done():
		return models.Report{}, ctx.Err()
	default:
	}

	reportProgress(progress, 40, 100, "Initializing LLM client...")

	narrator, err := a.narratorFor(ctx)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to generate report: %w", err)
	}

	reportProgress(progress, 50, 100, "Generating report text...")

	sections, err := narrator.Generate(ctx, report.FilterRecord(rec, cfg))
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to generate report: %w", err)
	}

	a.mu.Lock()
	a.generated++
	a.mu.Unlock()

	slog.Info("report generated", "candidate_id", candidateID, "assignment_id", assignmentID)
	reportProgress(progress, 100, 100, "Report complete!")

	return models.Report{CandidateData: rec, ReportSections: sections}, nil
}

// GeneratedReports returns the number of reports generated in this session
func (a *ReportAgent) GeneratedReports() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generated
}

// Close cleans up resources
func (a *ReportAgent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.completer != nil {
		return a.completer.Close()
	}
	return nil
}

// FilterAssignments keeps assignments whose name or client name contains term,
// case-insensitively. An empty term keeps everything.
func FilterAssignments(assignments []models.Assignment, term string) []models.Assignment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return assignments
	}

	out := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if containsFold(a.Name, term) || containsFold(a.Client.Name, term) {
			out = append(out, a)
		}
	}
	return out
}

// FilterCandidates keeps candidates whose name, current title or current
// company contains term, case-insensitively
func FilterCandidates(candidates []models.CandidateSummary, term string) []models.CandidateSummary {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return candidates
	}

	out := make([]models.CandidateSummary, 0, len(candidates))
	for _, c := range candidates {
		match := containsFold(c.Name, term)
		if !match && len(c.Positions) > 0 {
			match = containsFold(c.Positions[0].Title, term) || containsFold(c.Positions[0].Company, term)
		}
		if match {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

const activeStatus = "Active"

// Stats summarizes the loaded lists for the dashboard
type Stats struct {
	TotalAssignments  int
	ActiveAssignments int
	AssignmentPercent int
	TotalCandidates   int
	ActiveCandidates  int
	CandidatePercent  int
	Reports           int
}

// ComputeStats counts active entries and their rounded share
func ComputeStats(assignments []models.Assignment, candidates []models.CandidateSummary, reports int) Stats {
	s := Stats{
		TotalAssignments: len(assignments),
		TotalCandidates:  len(candidates),
		Reports:          reports,
	}
	for _, a := range assignments {
		if a.Status == activeStatus {
			s.ActiveAssignments++
		}
	}
	for _, c := range candidates {
		if c.Status == activeStatus {
			s.ActiveCandidates++
		}
	}
	s.AssignmentPercent = percent(s.ActiveAssignments, s.TotalAssignments)
	s.CandidatePercent = percent(s.ActiveCandidates, s.TotalCandidates)
	return s
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
