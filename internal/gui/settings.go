package gui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/ezekia-report-agent/internal/config"
)

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	// Ezekia
	baseURLEntry := widget.NewEntry()
	baseURLEntry.SetText(a.config.EzekiaBaseURL)

	serviceKeyEntry := widget.NewPasswordEntry()
	serviceKeyEntry.SetText(a.creds.Get(config.KeyService, ""))

	assignmentLimitEntry := widget.NewEntry()
	assignmentLimitEntry.SetText(strconv.Itoa(a.config.AssignmentLimit))
	candidateLimitEntry := widget.NewEntry()
	candidateLimitEntry.SetText(strconv.Itoa(a.config.CandidateLimit))

	// Completion
	providerSelect := widget.NewSelect([]string{config.ProviderOpenAI, config.ProviderVertexAI}, nil)
	providerSelect.SetSelected(a.config.CompletionProvider)

	completionKeyEntry := widget.NewPasswordEntry()
	completionKeyEntry.SetText(a.creds.Get(config.KeyCompletion, ""))
	openAIURLEntry := widget.NewEntry()
	openAIURLEntry.SetText(a.config.OpenAIBaseURL)
	modelEntry := widget.NewEntry()
	modelEntry.SetText(a.config.OpenAIModel)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.GoogleCloudProject)
	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.GoogleCloudLocation)
	googleCredsEntry := widget.NewEntry()
	googleCredsEntry.SetText(a.config.GoogleCredentialsPath)

	// Branding
	b := a.config.Branding
	companyEntry := widget.NewEntry()
	companyEntry.SetText(b.CompanyName)
	presenterEntry := widget.NewEntry()
	presenterEntry.SetText(b.Presenter)
	addressEntry := widget.NewMultiLineEntry()
	addressEntry.SetText(strings.Join(b.AddressLines, "\n"))
	addressEntry.SetMinRowsVisible(2)
	phoneEntry := widget.NewEntry()
	phoneEntry.SetText(b.Phone)
	emailEntry := widget.NewEntry()
	emailEntry.SetText(b.Email)
	websiteEntry := widget.NewEntry()
	websiteEntry.SetText(b.Website)
	logoEntry := widget.NewEntry()
	logoEntry.SetText(b.LogoPath)

	form := widget.NewForm(
		widget.NewFormItem("Ezekia API URL", baseURLEntry),
		widget.NewFormItem("Ezekia API Key", serviceKeyEntry),
		widget.NewFormItem("Assignment Limit", assignmentLimitEntry),
		widget.NewFormItem("Candidate Limit", candidateLimitEntry),
		widget.NewFormItem("Completion Provider", providerSelect),
		widget.NewFormItem("OpenAI API Key", completionKeyEntry),
		widget.NewFormItem("OpenAI API URL", openAIURLEntry),
		widget.NewFormItem("OpenAI Model", modelEntry),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Google Credentials", a.browseField(googleCredsEntry)),
		widget.NewFormItem("Company", companyEntry),
		widget.NewFormItem("Presenter", presenterEntry),
		widget.NewFormItem("Address", addressEntry),
		widget.NewFormItem("Phone", phoneEntry),
		widget.NewFormItem("Email", emailEntry),
		widget.NewFormItem("Website", websiteEntry),
		widget.NewFormItem("Logo", a.browseField(logoEntry)),
	)

	// build reads the form into a copy of the live config
	build := func() (*config.Config, error) {
		cfg := *a.config
		cfg.EzekiaBaseURL = strings.TrimSpace(baseURLEntry.Text)
		cfg.CompletionProvider = providerSelect.Selected
		cfg.OpenAIBaseURL = strings.TrimSpace(openAIURLEntry.Text)
		cfg.OpenAIModel = strings.TrimSpace(modelEntry.Text)
		cfg.GoogleCloudProject = strings.TrimSpace(projectEntry.Text)
		cfg.GoogleCloudLocation = strings.TrimSpace(locationEntry.Text)
		cfg.GoogleCredentialsPath = strings.TrimSpace(googleCredsEntry.Text)
		cfg.Branding = config.Branding{
			CompanyName:  companyEntry.Text,
			Presenter:    presenterEntry.Text,
			AddressLines: splitLines(addressEntry.Text),
			Phone:        phoneEntry.Text,
			Email:        emailEntry.Text,
			Website:      websiteEntry.Text,
			LogoPath:     strings.TrimSpace(logoEntry.Text),
		}

		var err error
		if cfg.AssignmentLimit, err = strconv.Atoi(strings.TrimSpace(assignmentLimitEntry.Text)); err != nil {
			return nil, fmt.Errorf("assignment limit must be a number")
		}
		if cfg.CandidateLimit, err = strconv.Atoi(strings.TrimSpace(candidateLimitEntry.Text)); err != nil {
			return nil, fmt.Errorf("candidate limit must be a number")
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		return &cfg, nil
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		cfg, err := build()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if err := cfg.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if err := a.creds.Set(config.KeyService, serviceKeyEntry.Text); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if err := a.creds.Set(config.KeyCompletion, completionKeyEntry.Text); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		a.config = cfg
		if err := a.agent.Reconfigure(a.config); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Settings saved successfully", a.mainWindow)
		a.loadAssignments()
	})

	testBtn := widget.NewButton("Test Connection", func() {
		if _, err := build(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVScroll(container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	))
}

func (a *App) browseField(entry *widget.Entry) fyne.CanvasObject {
	btn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				entry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})
	return container.NewBorder(nil, nil, nil, btn, entry)
}

// splitLines splits text by newlines and filters empty lines
func splitLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
