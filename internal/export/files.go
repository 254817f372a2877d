package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result reports the outcome of a save
type Result struct {
	Success  bool
	FilePath string
	Message  string
}

// Cancelled is the result of a save dialog closed without a path
func Cancelled() Result {
	return Result{Message: "Save cancelled by user"}
}

// FileName derives the default file name of a report, e.g. "Jorg_Wei__Report.pdf"
func FileName(candidateName, ext string) string {
	name := foldDiacritics(candidateName)
	if strings.TrimSpace(name) == "" {
		name = "Candidate"
	}

	var sb strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String() + "_Report." + strings.TrimPrefix(ext, ".")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SaveTextFile writes content as UTF-8 text
func SaveTextFile(content, path string) Result {
	return SaveBinaryFile([]byte(content), path)
}

// SaveBinaryFile writes data to path through a temporary file in the same
// directory, renamed into place once complete.
func SaveBinaryFile(data []byte, path string) Result {
	if path == "" {
		return Cancelled()
	}
	path = filepath.Clean(path)

	if err := writeAtomic(path, data); err != nil {
		slog.Error("failed to save report", "path", path, "error", err)
		return Result{FilePath: path, Message: err.Error()}
	}

	slog.Info("report saved", "path", path, "bytes", len(data))
	return Result{Success: true, FilePath: path}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
