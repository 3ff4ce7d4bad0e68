// Package pipeline wires the extraction stages together and renders their
// results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/catch"
	"github.com/MeKo-Tech/rf4catch/internal/field"
	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"github.com/MeKo-Tech/rf4catch/internal/payload"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/MeKo-Tech/rf4catch/internal/textline"
	"github.com/google/uuid"
)

// ErrNilInput is returned when Extract is called without detector or OCR data.
var ErrNilInput = errors.New("nil detector or OCR input")

// Config holds configuration for the extraction pipeline.
type Config struct {
	// MarginX is the horizontal overlap tolerance used for merging and binding.
	MarginX float64
	// ROI limits which OCR fragments are considered when UseROI is set.
	ROI    geometry.Rect
	UseROI bool
	// MinTextRunes drops shorter lines as OCR noise.
	MinTextRunes int
	// FishNames is the whitelist for the fish name rule.
	FishNames []string
	// FoldWidth maps full-width OCR text to narrow forms.
	FoldWidth bool
	Logger    *slog.Logger
}

// DefaultConfig returns the settings for the 1920x1080 catch screen.
func DefaultConfig() Config {
	return Config{
		MarginX:      geometry.DefaultMarginX,
		ROI:          textline.DefaultROI,
		UseROI:       true,
		MinTextRunes: catch.DefaultMinTextRunes,
		FishNames:    append([]string(nil), field.DefaultFishNames...),
	}
}

// Validate checks that the configuration looks sane.
func (c Config) Validate() error {
	if c.MarginX < 0 {
		return fmt.Errorf("margin must be >= 0, got %g", c.MarginX)
	}
	if c.UseROI && !c.ROI.Valid() {
		return fmt.Errorf("invalid ROI %v", c.ROI)
	}
	if c.MinTextRunes < 0 {
		return fmt.Errorf("min text runes must be >= 0, got %d", c.MinTextRunes)
	}
	return nil
}

// Builder constructs an Extractor with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithMarginX sets the horizontal overlap tolerance.
func (b *Builder) WithMarginX(margin float64) *Builder {
	b.cfg.MarginX = margin
	return b
}

// WithROI sets and enables the OCR acceptance rectangle.
func (b *Builder) WithROI(roi geometry.Rect) *Builder {
	b.cfg.ROI = roi
	b.cfg.UseROI = true
	return b
}

// WithoutROI disables ROI filtering.
func (b *Builder) WithoutROI() *Builder {
	b.cfg.UseROI = false
	return b
}

// WithMinTextRunes sets the noise threshold.
func (b *Builder) WithMinTextRunes(n int) *Builder {
	b.cfg.MinTextRunes = n
	return b
}

// WithFishNames replaces the fish name whitelist. Empty lists are ignored.
func (b *Builder) WithFishNames(names []string) *Builder {
	if merged := field.MergeNames(names); len(merged) > 0 {
		b.cfg.FishNames = merged
	}
	return b
}

// WithFoldWidth enables full-width folding of OCR text.
func (b *Builder) WithFoldWidth(enabled bool) *Builder {
	b.cfg.FoldWidth = enabled
	return b
}

// WithLogger sets the logger used by every stage.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.cfg.Logger = logger
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Build validates the configuration and creates the Extractor.
func (b *Builder) Build() (*Extractor, error) {
	return New(b.cfg)
}

// Extractor turns detector and OCR output into catch records. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	cfg       Config
	logger    *slog.Logger
	merger    *textline.Merger
	assembler *catch.Assembler
}

// New creates an Extractor from cfg.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		logger: logger,
		merger: &textline.Merger{
			ROI:     cfg.ROI,
			UseROI:  cfg.UseROI,
			MarginX: cfg.MarginX,
			Logger:  logger,
		},
		assembler: &catch.Assembler{
			Classifier:   field.NewClassifier(cfg.FishNames),
			MinTextRunes: cfg.MinTextRunes,
			Logger:       logger,
		},
	}, nil
}

// Config returns the pipeline configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Classify exposes the extractor's field classifier.
func (e *Extractor) Classify(text string) (field.Name, string) {
	return e.assembler.Classifier.Classify(text)
}

// Extract runs normalization, merging, binding and assembly.
func (e *Extractor) Extract(ctx context.Context, det *payload.Detections, ocr *payload.OCR) (*Result, error) {
	if det == nil || ocr == nil {
		return nil, ErrNilInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		RunID:       uuid.NewString(),
		ImageWidth:  det.ImageWidth,
		ImageHeight: det.ImageHeight,
	}

	regions, rejected := region.NormalizeDetections(det.Items, det.ImageWidth, det.ImageHeight, e.logger)
	res.Regions = regions
	res.Rejected = append(res.Rejected, rejected...)

	frags, rejected := region.NormalizeWords(ocr.Words, region.Options{FoldWidth: e.cfg.FoldWidth, Logger: e.logger})
	res.Rejected = append(res.Rejected, rejected...)
	normalized := time.Now()

	lines := e.merger.Merge(frags)
	merged := time.Now()

	res.Lines = catch.Bind(lines, catch.NewIndex(regions, e.cfg.MarginX))
	res.Records = e.assembler.Assemble(res.Lines, regions)
	done := time.Now()

	res.Processing.NormalizeNs = normalized.Sub(start).Nanoseconds()
	res.Processing.MergeNs = merged.Sub(normalized).Nanoseconds()
	res.Processing.AssembleNs = done.Sub(merged).Nanoseconds()
	res.Processing.TotalNs = done.Sub(start).Nanoseconds()

	e.logger.Debug("extraction finished",
		"run_id", res.RunID,
		"regions", len(regions),
		"fragments", len(frags),
		"lines", len(res.Lines),
		"records", len(res.Records),
		"rejected", len(res.Rejected))

	return res, nil
}
