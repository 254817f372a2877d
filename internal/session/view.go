package session

import (
	"context"
	"sync"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
)

// View is the state of the report screen
type View struct {
	Assignments Slot[[]models.Assignment]
	Candidates  Slot[[]models.CandidateSummary]
	Report      Slot[*models.Report]

	mu         sync.RWMutex
	assignment *models.Assignment
	candidate  *models.CandidateSummary
	config     models.ReportConfig

	// cancel stops the report run started with runTicket
	cancel    context.CancelFunc
	runTicket Ticket
}

// NewView creates a view with every report part enabled
func NewView() *View {
	return &View{config: models.DefaultReportConfig()}
}

// SelectAssignment sets the assignment and drops the candidates and report of
// the previous one
func (v *View) SelectAssignment(a models.Assignment) {
	v.mu.Lock()
	v.assignment = &a
	v.candidate = nil
	v.stopRunLocked()
	v.mu.Unlock()

	v.Candidates.Invalidate()
	v.Report.Invalidate()
}

// SelectCandidate sets the candidate and drops the report of the previous one
func (v *View) SelectCandidate(c models.CandidateSummary) {
	v.mu.Lock()
	v.candidate = &c
	v.stopRunLocked()
	v.mu.Unlock()

	v.Report.Invalidate()
}

// BeginReport starts a report run. A run still in flight is cancelled and its
// ticket becomes stale.
func (v *View) BeginReport(parent context.Context) (context.Context, Ticket) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopRunLocked()
	ctx, cancel := context.WithCancel(parent)
	v.cancel = cancel
	v.runTicket = v.Report.Begin()
	return ctx, v.runTicket
}

// CancelReport cancels the running report, if any
func (v *View) CancelReport() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel == nil {
		return false
	}
	v.stopRunLocked()
	return true
}

// FinishReport releases the run of t once its result has been handled
func (v *View) FinishReport(t Ticket) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t == v.runTicket {
		v.stopRunLocked()
	}
}

// Running reports whether a report run is in flight
func (v *View) Running() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cancel != nil
}

func (v *View) stopRunLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Assignment returns the selected assignment, if any
func (v *View) Assignment() (models.Assignment, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.assignment == nil {
		return models.Assignment{}, false
	}
	return *v.assignment, true
}

// Candidate returns the selected candidate, if any
func (v *View) Candidate() (models.CandidateSummary, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.candidate == nil {
		return models.CandidateSummary{}, false
	}
	return *v.candidate, true
}

func (v *View) Config() models.ReportConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config
}

func (v *View) SetConfig(cfg models.ReportConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config = cfg
}

// CanGenerate reports whether a candidate is selected and at least one part is enabled
func (v *View) CanGenerate() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.assignment != nil && v.candidate != nil && v.config.Any()
}
