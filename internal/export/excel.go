package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/ezekia-report-agent/internal/models"
	"github.com/fmuoria/ezekia-report-agent/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	personalSheet   = "Persönliche Daten"
	experienceSheet = "Berufserfahrung"
	educationSheet  = "Ausbildung"
	reportSheet     = "Bericht"
)

// ExcelPath appends .xlsx unless path already ends with it
func ExcelPath(path string) string {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	return filepath.Clean(path)
}

// ExportToExcel writes the report as a workbook with one sheet per report part
func ExportToExcel(rep models.Report, assignment models.Assignment, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	outputPath = ExcelPath(outputPath)

	f.SetSheetName("Sheet1", personalSheet)
	f.NewSheet(experienceSheet)
	f.NewSheet(educationSheet)
	f.NewSheet(reportSheet)

	styles, err := newSheetStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := createPersonalSheet(f, styles, rep.CandidateData.PersonalData, assignment); err != nil {
		return fmt.Errorf("failed to create personal data sheet: %w", err)
	}

	if err := createExperienceSheet(f, styles, rep.CandidateData.Experience); err != nil {
		return fmt.Errorf("failed to create experience sheet: %w", err)
	}

	if err := createEducationSheet(f, styles, rep.CandidateData.Education); err != nil {
		return fmt.Errorf("failed to create education sheet: %w", err)
	}

	if err := createReportSheet(f, styles, rep.ReportSections); err != nil {
		return fmt.Errorf("failed to create report sheet: %w", err)
	}

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}

		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

type sheetStyles struct {
	title  int
	header int
	label  int
	wrap   int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}

	s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return s, err
	}

	s.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	return s, err
}

func createPersonalSheet(f *excelize.File, styles sheetStyles, pd models.PersonalData, assignment models.Assignment) error {
	sheet := personalSheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 60)

	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Vertraulicher Bericht")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.title)
	if err := f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)); err != nil {
		return err
	}
	row += 2

	age := ""
	if pd.Age != nil {
		age = fmt.Sprintf("%d J.", *pd.Age)
	}

	client := assignment.Client.Name
	if client == "" {
		client = "Client"
	}

	rows := [][2]string{
		{"Position:", assignment.Name},
		{"Kunde:", client},
		{"Name:", pd.Name},
		{"Adresse:", pd.Address},
		{"Telefonnummer:", pd.Phone},
		{"Email:", pd.Email},
		{"Alter / Geburtsdatum:", age + " / " + pd.Birthdate},
		{"Familienstand:", pd.MaritalStatus},
		{"Nationalität:", pd.Nationality},
		{"Sprachkenntnisse:", strings.Join(report.LanguageLines(pd.Languages), "\n")},
		{"Erstellt:", time.Now().Format("2006-01-02 15:04")},
	}
	for _, r := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r[0])
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r[1])
		row++
	}
	return nil
}

func createExperienceSheet(f *excelize.File, styles sheetStyles, experience []models.ExperienceEntry) error {
	sheet := experienceSheet
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "C", 30)
	f.SetColWidth(sheet, "D", "D", 15)
	f.SetColWidth(sheet, "E", "E", 70)

	headers := []string{"Zeitraum", "Position", "Unternehmen", "Standort", "Beschreibung"}
	if err := writeHeader(f, sheet, headers, styles.header); err != nil {
		return err
	}

	for i, exp := range experience {
		row := i + 2
		values := []string{exp.Years, exp.Title, exp.Company, exp.Location, exp.Description}
		if err := writeRow(f, sheet, row, values, styles.wrap); err != nil {
			return err
		}
	}
	return nil
}

func createEducationSheet(f *excelize.File, styles sheetStyles, education []models.EducationEntry) error {
	sheet := educationSheet
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "D", 30)
	f.SetColWidth(sheet, "E", "E", 50)

	headers := []string{"Zeitraum", "Abschluss", "Bildungseinrichtung", "Studiengang", "Beschreibung"}
	if err := writeHeader(f, sheet, headers, styles.header); err != nil {
		return err
	}

	for i, edu := range education {
		row := i + 2
		values := []string{edu.Years, edu.Degree, edu.Institution, edu.Field, edu.Description}
		if err := writeRow(f, sheet, row, values, styles.wrap); err != nil {
			return err
		}
	}
	return nil
}

func createReportSheet(f *excelize.File, styles sheetStyles, sections models.ReportSections) error {
	sheet := reportSheet
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 100)

	entries := [][2]string{
		{"PERSÖNLICHKEIT", sections.PersonalitySection},
		{"ZUSAMMENFASSUNG", sections.SummarySection},
	}
	for i, e := range entries {
		row := i + 1
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e[0])
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e[1])
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.wrap)
		f.SetRowHeight(sheet, row, 300)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string, style int) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, v)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}
