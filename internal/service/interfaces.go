// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

// PageImage is one rendered page, already encoded for transport to the
// classification service.
type PageImage struct {
	Data      []byte
	MediaType string // "image/png" or "image/jpeg"
	Page      int
}

// ExtractedContent is the per-job content pulled from a PDF. Text may be
// empty for scanned documents; Images may be empty for text-only ones.
type ExtractedContent struct {
	Text        string
	Images      []PageImage
	LayoutTitle string
}

// Extractor pulls classification inputs out of a PDF file.
type Extractor interface {
	// ExtractText returns up to maxChars characters from the first
	// maxPages pages. Unreadable files yield an empty string, not an error.
	ExtractText(path string, maxPages, maxChars int) string

	// ExtractImages returns encoded rasters for up to maxPages pages.
	ExtractImages(path string, maxPages int) ([]PageImage, error)

	// LayoutTitle returns the layout-weighted title candidate from the
	// first page, or an empty string when no line qualifies.
	LayoutTitle(path string) string
}

// Classifier chooses a document type for extracted content.
type Classifier interface {
	// Classify returns a label from the folder's configured label set,
	// choosing the text or vision strategy by content sufficiency.
	Classify(ctx context.Context, content ExtractedContent, folder model.FolderConfig) (string, error)

	// FreeName produces an unconstrained short title for the document.
	FreeName(ctx context.Context, path string, content ExtractedContent, folder model.FolderConfig) (string, error)
}

// MetadataExtractor pulls structured fields out of page images.
type MetadataExtractor interface {
	// Addressee extracts the recipient identity from the first page image.
	Addressee(ctx context.Context, image PageImage) (model.NameInfo, error)

	// Property extracts parcel metadata from a registry certificate.
	Property(ctx context.Context, image PageImage, label string) (model.PropertyInfo, error)
}

// Renamer moves a processed file to its synthesized name.
type Renamer interface {
	// Rename returns the final path of the renamed or moved file.
	Rename(originalPath, baseName string, folder model.FolderConfig) (string, error)
}

// ProcessRecord is one row of the processing audit trail.
type ProcessRecord struct {
	ProcessedAt  time.Time
	OriginalPath string
	FinalPath    string
	Label        string
	FolderPath   string
	Outcome      string
	Detail       string
}

// History persists the processing audit trail.
type History interface {
	Record(ctx context.Context, rec ProcessRecord) error
	Recent(ctx context.Context, limit int) ([]ProcessRecord, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
