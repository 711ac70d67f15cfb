// Package extract pulls text, page images, and layout title candidates
// out of PDF files.
package extract

import (
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor reads classification inputs from PDFs.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractText concatenates per-page text up to maxChars characters,
// stopping early once the cap is reached. Unreadable files yield an
// empty string; this boundary never propagates parse failures.
func (e *Extractor) ExtractText(path string, maxPages, maxChars int) (text string) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf text extraction panicked", "path", path, "cause", r)
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		e.logger.Warn("pdf open failed", "path", path, "error", err)
		return ""
	}
	defer func() { _ = f.Close() }()

	pages := r.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	var parts []string
	total := 0
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		parts = append(parts, content)
		total += len([]rune(content))
		if total >= maxChars {
			break
		}
	}

	joined := strings.TrimSpace(strings.Join(parts, "\n"))
	runes := []rune(joined)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return string(runes)
}
