package gui

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/ezekia-report-agent/internal/agent"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/fmuoria/ezekia-report-agent/internal/report"
)

const welcomeText = "# Ezekia Report Agent\n\nSelect an assignment and a candidate, choose the report sections and press **Generate Report**."

// createReportsTab creates the assignment/candidate browser and the report preview
func (a *App) createReportsTab() fyne.CanvasObject {
	a.assignmentSearch = widget.NewEntry()
	a.assignmentSearch.SetPlaceHolder("Search assignments...")
	a.assignmentSearch.OnChanged = func(string) { a.refreshAssignments() }

	a.assignmentList = widget.NewList(
		func() int { return len(a.shownAssignments) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabelWithStyle("Assignment", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				widget.NewLabel("Client"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(a.shownAssignments) {
				return
			}
			asg := a.shownAssignments[id]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(asg.Name)
			box.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%s · %s · %d candidates", asg.Client.Name, asg.Status, asg.CandidateCount))
		},
	)
	a.assignmentList.OnSelected = func(id widget.ListItemID) {
		if id >= len(a.shownAssignments) {
			return
		}
		a.handleAssignmentSelected(a.shownAssignments[id])
	}

	refreshBtn := widget.NewButton("Refresh", a.loadAssignments)

	a.candidateSearch = widget.NewEntry()
	a.candidateSearch.SetPlaceHolder("Search candidates...")
	a.candidateSearch.OnChanged = func(string) { a.refreshCandidates() }

	a.candidateList = widget.NewList(
		func() int { return len(a.shownCandidates) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabelWithStyle("Candidate", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				widget.NewLabel("Position"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(a.shownCandidates) {
				return
			}
			c := a.shownCandidates[id]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(c.Name)
			box.Objects[1].(*widget.Label).SetText(candidateLine(c))
		},
	)
	a.candidateList.OnSelected = func(id widget.ListItemID) {
		if id >= len(a.shownCandidates) {
			return
		}
		c := a.shownCandidates[id]
		a.view.SelectCandidate(c)
		a.showReport(nil)
		a.showDetails(candidateDetails(c))
		a.updateGenerateButton()
	}

	// Report configuration
	onCheck := func(bool) {
		a.view.SetConfig(models.ReportConfig{
			IncludePersonal:   a.personalCheck.Checked,
			IncludeExperience: a.experienceCheck.Checked,
			IncludeEducation:  a.educationCheck.Checked,
		})
		a.updateGenerateButton()
	}
	a.personalCheck = widget.NewCheck("Personal data", onCheck)
	a.experienceCheck = widget.NewCheck("Work experience", onCheck)
	a.educationCheck = widget.NewCheck("Education", onCheck)
	cfg := a.view.Config()
	a.personalCheck.Checked = cfg.IncludePersonal
	a.experienceCheck.Checked = cfg.IncludeExperience
	a.educationCheck.Checked = cfg.IncludeEducation

	a.generateBtn = widget.NewButton("Generate Report", a.handleGenerate)
	a.generateBtn.Importance = widget.HighImportance
	a.generateBtn.Disable()

	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.statsLabel = widget.NewLabel("")

	configSection := container.NewVBox(
		widget.NewLabel("Report Sections"),
		container.NewHBox(a.personalCheck, a.experienceCheck, a.educationCheck),
		container.NewHBox(a.generateBtn, a.cancelBtn),
		a.progressBar,
		a.progressLabel,
	)

	// Details, preview and export
	a.details = widget.NewRichTextFromMarkdown(noSelectionText)
	a.details.Wrapping = fyne.TextWrapWord

	a.preview = widget.NewRichTextFromMarkdown(welcomeText)
	a.preview.Wrapping = fyne.TextWrapWord

	a.reportTabs = container.NewAppTabs(
		container.NewTabItem("Details", container.NewVScroll(a.details)),
		container.NewTabItem("Report", container.NewVScroll(a.preview)),
	)

	a.exportMDBtn = widget.NewButton("Save Markdown", a.handleExportMarkdown)
	a.exportPDFBtn = widget.NewButton("Save PDF", a.handleExportPDF)
	a.exportExcelBtn = widget.NewButton("Export to Excel", a.handleExportExcel)
	a.setExportEnabled(false)

	assignmentPane := container.NewBorder(
		container.NewVBox(widget.NewLabel("Assignments"), container.NewBorder(nil, nil, nil, refreshBtn, a.assignmentSearch)),
		nil, nil, nil,
		a.assignmentList,
	)
	candidatePane := container.NewBorder(
		container.NewVBox(widget.NewLabel("Candidates"), a.candidateSearch),
		nil, nil, nil,
		a.candidateList,
	)
	reportPane := container.NewBorder(
		configSection,
		container.NewHBox(a.exportMDBtn, a.exportPDFBtn, a.exportExcelBtn),
		nil, nil,
		a.reportTabs,
	)

	lists := container.NewVSplit(assignmentPane, candidatePane)
	split := container.NewHSplit(lists, reportPane)
	split.Offset = 0.35

	return container.NewBorder(nil, a.statsLabel, nil, nil, split)
}

func candidateLine(c models.CandidateSummary) string {
	if len(c.Positions) == 0 {
		return c.Status
	}
	p := c.Positions[0]
	line := p.Title
	if p.Company != "" {
		line += " at " + p.Company
	}
	return line
}

// loadAssignments fetches the assignment list; a newer request supersedes it
func (a *App) loadAssignments() {
	ticket := a.view.Assignments.Begin()
	a.progressLabel.SetText("Loading assignments...")

	go func() {
		assignments, err := a.agent.FetchAssignments(context.Background())

		fyne.Do(func() {
			if err != nil {
				if a.view.Assignments.Fail(ticket, err) {
					a.progressLabel.SetText("Failed to load assignments")
					a.refreshAssignments()
					a.showError(err)
				}
				return
			}
			if a.view.Assignments.Apply(ticket, assignments) {
				a.progressLabel.SetText(fmt.Sprintf("Loaded %d assignments", len(assignments)))
				a.refreshAssignments()
			}
		})
	}()
}

func (a *App) refreshAssignments() {
	a.shownAssignments = agent.FilterAssignments(a.view.Assignments.Value(), a.assignmentSearch.Text)
	a.assignmentList.UnselectAll()
	a.assignmentList.Refresh()
	a.updateStats()
}

func (a *App) handleAssignmentSelected(asg models.Assignment) {
	a.view.SelectAssignment(asg)
	a.candidateSearch.SetText("")
	a.refreshCandidates()
	a.showReport(nil)
	a.showDetails(assignmentDetails(asg))
	a.updateGenerateButton()

	ticket := a.view.Candidates.Begin()
	a.progressLabel.SetText("Loading candidates for " + asg.Name + "...")

	go func() {
		candidates, err := a.agent.FetchCandidates(context.Background(), asg.ID)

		fyne.Do(func() {
			if err != nil {
				if a.view.Candidates.Fail(ticket, err) {
					a.progressLabel.SetText("Failed to load candidates")
					a.refreshCandidates()
					a.showError(err)
				}
				return
			}
			if a.view.Candidates.Apply(ticket, candidates) {
				a.progressLabel.SetText(fmt.Sprintf("Loaded %d candidates", len(candidates)))
				a.refreshCandidates()
			}
		})
	}()
}

func (a *App) refreshCandidates() {
	a.shownCandidates = agent.FilterCandidates(a.view.Candidates.Value(), a.candidateSearch.Text)
	a.candidateList.UnselectAll()
	a.candidateList.Refresh()
	a.updateStats()
}

// updateGenerateButton syncs Generate and Cancel with the view state
func (a *App) updateGenerateButton() {
	if a.view.CanGenerate() && !a.view.Report.Loading() {
		a.generateBtn.Enable()
	} else {
		a.generateBtn.Disable()
	}
	if a.view.Running() {
		a.cancelBtn.Enable()
	} else {
		a.cancelBtn.Disable()
	}
}

// handleGenerate generates a report for the selected candidate. Starting a
// run cancels the previous one; only the run holding the current ticket
// touches the progress widgets and the preview.
func (a *App) handleGenerate() {
	asg, ok := a.view.Assignment()
	if !ok {
		return
	}
	cand, ok := a.view.Candidate()
	if !ok {
		return
	}
	cfg := a.view.Config()

	ctx, ticket := a.view.BeginReport(context.Background())
	a.setExportEnabled(false)
	a.progressBar.SetValue(0)
	a.updateGenerateButton()

	progress := func(current, total int, message string) {
		fyne.Do(func() {
			if !a.view.Report.Current(ticket) {
				return
			}
			a.progressBar.SetValue(float64(current) / float64(total))
			a.progressLabel.SetText(message)
		})
	}

	go func() {
		rep, err := a.agent.GenerateReport(ctx, cand.ID, asg.ID, cfg, progress)

		fyne.Do(func() {
			a.view.FinishReport(ticket)
			if err != nil {
				if !a.view.Report.Fail(ticket, err) {
					return
				}
				a.updateGenerateButton()
				if errors.Is(err, context.Canceled) {
					a.progressLabel.SetText("Report generation canceled")
					return
				}
				a.progressLabel.SetText("Error: " + err.Error())
				a.showError(err)
				return
			}
			if !a.view.Report.Apply(ticket, &rep) {
				return
			}
			a.updateGenerateButton()
			a.showReport(&rep)
			a.updateStats()
			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Report Ready",
				Content: fmt.Sprintf("Report for %s generated", rep.CandidateData.PersonalData.Name),
			})
		})
	}()
}

// handleCancel cancels a running report generation
func (a *App) handleCancel() {
	if a.view.CancelReport() {
		a.progressLabel.SetText("Canceling...")
		a.cancelBtn.Disable()
	}
}

// showReport renders rep into the preview; nil shows the welcome text
func (a *App) showReport(rep *models.Report) {
	if rep == nil {
		a.preview.ParseMarkdown(welcomeText)
		a.setExportEnabled(false)
		return
	}
	a.preview.ParseMarkdown(report.ToMarkdown(rep.CandidateData, rep.ReportSections))
	a.setExportEnabled(true)
	a.reportTabs.SelectIndex(1)
}

// showDetails replaces the details tab and brings it to the front
func (a *App) showDetails(md string) {
	a.details.ParseMarkdown(md)
	a.reportTabs.SelectIndex(0)
}

func (a *App) setExportEnabled(enabled bool) {
	for _, btn := range []*widget.Button{a.exportMDBtn, a.exportPDFBtn, a.exportExcelBtn} {
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}
