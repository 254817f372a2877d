package report

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// Assets are binary resources embedded into the rendered HTML
type Assets struct {
	Logo     []byte
	LogoType string
}

// LoadAssets reads the letterhead logo named by branding. No logo is not an error.
func LoadAssets(branding config.Branding) (Assets, error) {
	if branding.LogoPath == "" {
		return Assets{}, nil
	}

	data, err := os.ReadFile(branding.LogoPath)
	if err != nil {
		return Assets{}, fmt.Errorf("failed to read logo: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(branding.LogoPath))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return Assets{Logo: data, LogoType: contentType}, nil
}

func (a Assets) logoURI() template.URL {
	if len(a.Logo) == 0 {
		return ""
	}
	contentType := a.LogoType
	if contentType == "" {
		contentType = http.DetectContentType(a.Logo)
	}
	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(a.Logo))
}

type htmlData struct {
	Document
	Logo template.URL
}

// RenderHTML renders doc as a self-contained A4 HTML page
func RenderHTML(doc Document, assets Assets) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, htmlData{Document: doc, Logo: assets.logoURI()}); err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}
	return buf.String(), nil
}
