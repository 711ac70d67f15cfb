// Package pipeline runs one discovered PDF end to end: extraction,
// classification, metadata, name synthesis, and the rename itself.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/namegen"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Input limits mirror the per-job extraction budget.
const (
	maxPages    = 2
	maxTextRune = 4000
)

// Outcome values recorded in the processing history.
const (
	OutcomeRenamed = "renamed"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Labeler assigns a document label from the folder's label set.
type Labeler interface {
	Classify(ctx context.Context, content service.ExtractedContent, folder model.FolderConfig) (string, error)
}

// Namer produces a free-form title for non-registry documents.
type Namer interface {
	FreeName(ctx context.Context, path string, content service.ExtractedContent, folder model.FolderConfig) (string, error)
}

// Pipeline wires the per-file processing stages together. One Pipeline
// serves all folders; jobs carry their own config snapshots.
type Pipeline struct {
	extractor  service.Extractor
	labeler    Labeler
	namer      Namer
	metadata   service.MetadataExtractor
	renamer    service.Renamer
	history    service.History
	maxNameLen int
	logger     *slog.Logger
}

// New creates a Pipeline. history may be nil when auditing is disabled;
// maxNameLen 0 means the default filename clamp.
func New(extractor service.Extractor, labeler Labeler, namer Namer, metadata service.MetadataExtractor, renamer service.Renamer, history service.History, maxNameLen int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		labeler:    labeler,
		namer:      namer,
		metadata:   metadata,
		renamer:    renamer,
		history:    history,
		maxNameLen: maxNameLen,
		logger:     logger,
	}
}

// Process handles one debounced file. Errors are contained to the job:
// they are logged and recorded, never propagated to the watch loop.
func (p *Pipeline) Process(ctx context.Context, job model.PendingJob) {
	filename := filepath.Base(job.Path)
	p.logger.Info("processing started", "file", filename, "folder", job.Folder.Path)

	finalPath, label, err := p.run(ctx, job)
	switch {
	case err == nil:
		p.logger.Info("processing succeeded",
			"file", filename,
			"renamed_to", filepath.Base(finalPath))
		p.record(ctx, job, finalPath, label, OutcomeRenamed, "")
	case errors.Is(err, errFileGone):
		p.logger.Warn("file disappeared before processing", "file", filename)
		p.record(ctx, job, "", "", OutcomeSkipped, err.Error())
	default:
		p.logger.Error("processing failed", "file", filename, "error", err)
		p.record(ctx, job, "", label, OutcomeFailed, err.Error())
	}
}

var errFileGone = errors.New("file no longer exists")

// run executes the stages and returns the final path and label.
func (p *Pipeline) run(ctx context.Context, job model.PendingJob) (finalPath, label string, err error) {
	if _, statErr := os.Stat(job.Path); statErr != nil {
		return "", "", errFileGone
	}

	content := p.extract(job.Path)
	if content.Text == "" && len(content.Images) == 0 {
		return "", "", fmt.Errorf("%w: no usable text or images", common.ErrExtraction)
	}

	label, err = p.labeler.Classify(ctx, content, job.Folder)
	if err != nil {
		return "", "", fmt.Errorf("classification failed: %w", err)
	}

	names := p.addressee(ctx, content, job.Folder)
	opts := namegen.Options{
		IncludeNames: job.Folder.IncludeNames,
		IncludeDate:  job.Folder.IncludeDate,
		Date:         time.Now().Format(namegen.DateFormat),
		MaxLength:    p.maxNameLen,
	}

	var baseName string
	if model.IsRegistryLabel(label) {
		// Registry certificates get the fixed label plus parcel metadata
		// instead of the free-form title.
		p.logger.Info("registry document detected", "file", filepath.Base(job.Path), "label", label)
		prop := p.property(ctx, content, label)
		baseName = namegen.Build(model.RegistryLabel, names, prop, opts)
		label = model.RegistryLabel
	} else {
		content.LayoutTitle = p.extractor.LayoutTitle(job.Path)
		base, nameErr := p.namer.FreeName(ctx, job.Path, content, job.Folder)
		if nameErr != nil {
			return "", label, fmt.Errorf("free-form naming failed: %w", nameErr)
		}
		baseName = namegen.Build(base, names, model.PropertyInfo{}, opts)
	}

	finalPath, err = p.renamer.Rename(job.Path, baseName, job.Folder)
	if err != nil {
		return "", label, err
	}
	return finalPath, label, nil
}

// extract gathers the classification inputs. Image extraction failures
// are tolerated; text-only documents still classify.
func (p *Pipeline) extract(path string) service.ExtractedContent {
	content := service.ExtractedContent{
		Text: p.extractor.ExtractText(path, maxPages, maxTextRune),
	}

	images, err := p.extractor.ExtractImages(path, maxPages)
	if err != nil {
		if !errors.Is(err, common.ErrNoImages) {
			p.logger.Warn("image extraction failed", "file", filepath.Base(path), "error", err)
		}
		return content
	}
	content.Images = images
	return content
}

// addressee pulls the recipient identity when the folder asks for it.
// Failures degrade to an empty result rather than aborting the job.
func (p *Pipeline) addressee(ctx context.Context, content service.ExtractedContent, folder model.FolderConfig) model.NameInfo {
	if !folder.IncludeNames || len(content.Images) == 0 {
		return model.NameInfo{}
	}
	names, err := p.metadata.Addressee(ctx, content.Images[0])
	if err != nil {
		p.logger.Warn("addressee extraction failed", "error", err)
		return model.NameInfo{}
	}
	return names
}

// property pulls parcel metadata for registry documents.
func (p *Pipeline) property(ctx context.Context, content service.ExtractedContent, label string) model.PropertyInfo {
	if len(content.Images) == 0 {
		return model.PropertyInfo{}
	}
	prop, err := p.metadata.Property(ctx, content.Images[0], label)
	if err != nil {
		p.logger.Warn("property extraction failed", "error", err)
		return model.PropertyInfo{}
	}
	return prop
}

func (p *Pipeline) record(ctx context.Context, job model.PendingJob, finalPath, label, outcome, detail string) {
	if p.history == nil {
		return
	}
	rec := service.ProcessRecord{
		ProcessedAt:  time.Now(),
		OriginalPath: job.Path,
		FinalPath:    finalPath,
		Label:        label,
		FolderPath:   job.Folder.Path,
		Outcome:      outcome,
		Detail:       detail,
	}
	// SQLite may report busy under concurrent jobs; a short retry clears it.
	err := common.WithRetry(ctx, func() error {
		return p.history.Record(ctx, rec)
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond})
	if err != nil {
		p.logger.Warn("failed to record history", "error", err)
	}
}
