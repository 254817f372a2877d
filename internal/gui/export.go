package gui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/ezekia-report-agent/internal/export"
	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/fmuoria/ezekia-report-agent/internal/report"
)

// currentReport returns the previewed report with its assignment
func (a *App) currentReport() (*models.Report, models.Assignment, bool) {
	rep := a.view.Report.Value()
	if rep == nil {
		dialog.ShowError(fmt.Errorf("no report to export"), a.mainWindow)
		return nil, models.Assignment{}, false
	}
	asg, _ := a.view.Assignment()
	return rep, asg, true
}

// askSavePath shows a save dialog prefilled with name and calls fn with the chosen path
func (a *App) askSavePath(name string, fn func(path string)) {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		path := uc.URI().Path()
		uc.Close()
		fn(path)
	}, a.mainWindow)
	d.SetFileName(name)
	d.Show()
}

func (a *App) showSaveResult(res export.Result) {
	if !res.Success {
		if res.Message != "" {
			dialog.ShowError(fmt.Errorf("%s", res.Message), a.mainWindow)
		}
		return
	}
	dialog.ShowInformation("Success", "Report saved to "+filepath.Base(res.FilePath), a.mainWindow)
}

// handleExportMarkdown saves the narrative as markdown
func (a *App) handleExportMarkdown() {
	rep, _, ok := a.currentReport()
	if !ok {
		return
	}

	name := export.FileName(rep.CandidateData.PersonalData.Name, "md")
	a.askSavePath(name, func(path string) {
		content := report.ToMarkdown(rep.CandidateData, rep.ReportSections)
		a.showSaveResult(export.SaveTextFile(content, path))
	})
}

// handleExportPDF renders the paginated report and saves it as PDF
func (a *App) handleExportPDF() {
	rep, asg, ok := a.currentReport()
	if !ok {
		return
	}

	doc := report.BuildDocument(rep.CandidateData, rep.ReportSections, asg, report.Options{
		Date:     time.Now(),
		Branding: a.config.Branding,
	})
	assets, err := report.LoadAssets(a.config.Branding)
	if err != nil {
		slog.Warn("continuing without logo", "error", err)
	}
	html, err := report.RenderHTML(doc, assets)
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	name := export.FileName(rep.CandidateData.PersonalData.Name, "pdf")
	a.askSavePath(name, func(path string) {
		progress := dialog.NewCustomWithoutButtons("Generating PDF",
			widget.NewProgressBarInfinite(), a.mainWindow)
		progress.Show()
		a.exportPDFBtn.Disable()

		go func() {
			res := export.SavePDF(context.Background(), a.renderer, html, path)
			fyne.Do(func() {
				progress.Hide()
				a.exportPDFBtn.Enable()
				a.showSaveResult(res)
			})
		}()
	})
}

// handleExportExcel writes the report workbook
func (a *App) handleExportExcel() {
	rep, asg, ok := a.currentReport()
	if !ok {
		return
	}

	name := export.FileName(rep.CandidateData.PersonalData.Name, "xlsx")
	a.askSavePath(name, func(path string) {
		if err := export.ExportToExcel(*rep, asg, path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Report exported successfully to "+filepath.Base(export.ExcelPath(path)), a.mainWindow)
	})
}
