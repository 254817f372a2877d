package gui

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/ezekia-report-agent/internal/agent"
	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/export"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/fmuoria/ezekia-report-agent/internal/session"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	creds      config.CredentialStore
	agent      *agent.ReportAgent
	view       *session.View
	renderer   export.PDFRenderer

	// UI Components
	assignmentSearch *widget.Entry
	assignmentList   *widget.List
	candidateSearch  *widget.Entry
	candidateList    *widget.List
	personalCheck    *widget.Check
	experienceCheck  *widget.Check
	educationCheck   *widget.Check
	generateBtn      *widget.Button
	cancelBtn        *widget.Button
	progressBar      *widget.ProgressBar
	progressLabel    *widget.Label
	statsLabel       *widget.Label
	preview          *widget.RichText
	details          *widget.RichText
	reportTabs       *container.AppTabs
	exportMDBtn      *widget.Button
	exportPDFBtn     *widget.Button
	exportExcelBtn   *widget.Button
	setupPopup       *widget.PopUp

	// filtered lists as shown; only touched on the UI goroutine
	shownAssignments []models.Assignment
	shownCandidates  []models.CandidateSummary
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, creds config.CredentialStore) *App {
	a := app.NewWithID("com.fmuoria.ezekia-report-agent")
	w := a.NewWindow("Ezekia Report Agent")
	w.Resize(fyne.NewSize(1200, 800))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		creds:      creds,
		agent:      agent.NewReportAgent(cfg, creds),
		view:       session.NewView(),
		renderer:   export.NewPlaywrightRenderer(),
	}

	guiApp.setupUI()
	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.SetOnClosed(func() {
		a.view.CancelReport()
		if err := a.agent.Close(); err != nil {
			slog.Warn("failed to close agent", "error", err)
		}
	})

	if a.creds.Get(config.KeyService, "") == "" {
		a.showSetup()
	} else {
		a.loadAssignments()
	}

	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Reports", a.createReportsTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// showSetup blocks the window until both keys are entered
func (a *App) showSetup() {
	if a.setupPopup != nil {
		a.setupPopup.Show()
		return
	}

	serviceEntry := widget.NewPasswordEntry()
	serviceEntry.SetText(a.creds.Get(config.KeyService, ""))
	completionEntry := widget.NewPasswordEntry()
	completionEntry.SetText(a.creds.Get(config.KeyCompletion, ""))
	errLabel := widget.NewLabel("")
	errLabel.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Ezekia API Key", serviceEntry),
		widget.NewFormItem("OpenAI API Key", completionEntry),
	)

	saveBtn := widget.NewButton("Save", func() {
		if serviceEntry.Text == "" {
			errLabel.SetText("The Ezekia API key is required.")
			return
		}
		if err := a.creds.Set(config.KeyService, serviceEntry.Text); err != nil {
			errLabel.SetText(err.Error())
			return
		}
		if err := a.creds.Set(config.KeyCompletion, completionEntry.Text); err != nil {
			errLabel.SetText(err.Error())
			return
		}
		if err := a.agent.Reconfigure(a.config); err != nil {
			slog.Warn("failed to reset completion client", "error", err)
		}
		a.setupPopup.Hide()
		a.loadAssignments()
	})
	saveBtn.Importance = widget.HighImportance

	content := container.NewVBox(
		widget.NewLabelWithStyle("API keys required", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Enter the keys used to access Ezekia and to generate report text."),
		form,
		errLabel,
		saveBtn,
	)

	a.setupPopup = widget.NewModalPopUp(container.NewPadded(content), a.mainWindow.Canvas())
	a.setupPopup.Resize(fyne.NewSize(480, 0))
	a.setupPopup.Show()
}

// showError routes missing credentials to the setup form and everything else to an error dialog
func (a *App) showError(err error) {
	if errors.Is(err, config.ErrMissingCredential) {
		a.showSetup()
		return
	}
	dialog.ShowError(err, a.mainWindow)
}

func (a *App) updateStats() {
	s := agent.ComputeStats(a.view.Assignments.Value(), a.view.Candidates.Value(), a.agent.GeneratedReports())
	a.statsLabel.SetText(fmt.Sprintf("Assignments: %d/%d active (%d%%)   Candidates: %d/%d active (%d%%)   Reports: %d",
		s.ActiveAssignments, s.TotalAssignments, s.AssignmentPercent,
		s.ActiveCandidates, s.TotalCandidates, s.CandidatePercent,
		s.Reports))
}
