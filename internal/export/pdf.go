package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// PDFRenderer converts a self-contained HTML page to PDF bytes
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// PlaywrightRenderer prints HTML with headless Chromium
type PlaywrightRenderer struct {
	// Margin applies to all four sides, e.g. "20mm"
	Margin string
}

// NewPlaywrightRenderer creates a renderer with the report's 20mm margins
func NewPlaywrightRenderer() *PlaywrightRenderer {
	return &PlaywrightRenderer{Margin: "20mm"}
}

// RenderHTMLToPDF starts and stops a browser on every call
func (r *PlaywrightRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	margin := r.Margin
	if margin == "" {
		margin = "20mm"
	}
	pdf, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String(margin),
			Bottom: playwright.String(margin),
			Left:   playwright.String(margin),
			Right:  playwright.String(margin),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}

	if !IsPDF(pdf) {
		return nil, fmt.Errorf("invalid PDF output (len=%d)", len(pdf))
	}

	slog.Info("rendered PDF", "bytes", len(pdf))
	return pdf, nil
}

// IsPDF checks the PDF signature
func IsPDF(data []byte) bool {
	return strings.HasPrefix(string(data), "%PDF")
}

// SavePDF renders html and writes the PDF to path
func SavePDF(ctx context.Context, renderer PDFRenderer, html, path string) Result {
	if path == "" {
		return Cancelled()
	}
	pdf, err := renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		slog.Error("failed to render PDF", "error", err)
		return Result{FilePath: path, Message: "Failed to generate PDF report: " + err.Error()}
	}
	return SaveBinaryFile(pdf, path)
}
