package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/rf4catch/internal/payload"
	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
	"github.com/MeKo-Tech/rf4catch/internal/utils"
)

// processPair decodes one pair's payloads and runs the extractor on them.
func processPair(ctx context.Context, ex *pipeline.Extractor, p Pair, config *Config) (*pipeline.Result, error) {
	det, err := payload.LoadDetections(p.Detections)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	ocr, err := payload.LoadOCR(p.OCR)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}

	res, err := ex.Extract(ctx, det, ocr)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", p.Name, err)
	}

	if config.OverlayDir != "" {
		saveOverlay(p, res, config)
	}
	return res, nil
}

// saveOverlay renders the result over the pair's screenshot. Missing or
// unreadable screenshots only produce a warning.
func saveOverlay(p Pair, res *pipeline.Result, config *Config) {
	logger := config.logger()

	shot, ok := screenshotFor(p)
	if !ok {
		logger.Warn("no screenshot for overlay", "pair", p.Name)
		return
	}
	img, _, err := utils.LoadImage(shot)
	if err != nil {
		logger.Warn("failed to load screenshot", "file", shot, "error", err)
		return
	}

	ov := pipeline.RenderOverlay(img, res, config.RegionColor, config.LineColor)
	outPath := filepath.Join(config.OverlayDir, filepath.Base(p.Name)+"_overlay.png")
	if err := utils.SaveImage(ov, outPath); err != nil {
		logger.Warn("failed to save overlay", "file", outPath, "error", err)
		return
	}
	logger.Debug("overlay written", slog.String("file", outPath))
}
