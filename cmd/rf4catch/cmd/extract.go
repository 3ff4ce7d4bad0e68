package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/rf4catch/internal/config"
	"github.com/MeKo-Tech/rf4catch/internal/payload"
	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
	"github.com/MeKo-Tech/rf4catch/internal/utils"
	"github.com/spf13/cobra"
)

// extractCmd turns one detector/OCR payload pair into catch records.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract catch records from one detector and OCR payload pair",
	Long: `Read a detector response and an OCR response for the same screenshot and
print one [time_percentage, fish_name, weight, price] record per fish card.

Examples:
  rf4catch extract --detections shot.det.json --ocr shot.ocr.json
  rf4catch extract -d shot.det.json --ocr shot.ocr.json --format text
  rf4catch extract -d shot.det.json --ocr shot.ocr.json --image shot.png --overlay out.png`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runExtractCommand,
}

// applyExtractFlags overrides configuration values with explicitly set flags.
func applyExtractFlags(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("margin") {
		cfg.Extract.MarginX, _ = cmd.Flags().GetFloat64("margin")
	}
	if cmd.Flags().Changed("min-text-runes") {
		cfg.Extract.MinTextRunes, _ = cmd.Flags().GetInt("min-text-runes")
	}
	if cmd.Flags().Changed("no-roi") {
		noROI, _ := cmd.Flags().GetBool("no-roi")
		cfg.Extract.ROI.Enabled = !noROI
	}
	if cmd.Flags().Changed("fish-catalog") {
		cfg.Extract.FishCatalog, _ = cmd.Flags().GetString("fish-catalog")
	}
	if cmd.Flags().Changed("fish-names") {
		cfg.Extract.FishNames, _ = cmd.Flags().GetStringSlice("fish-names")
	}
	if cmd.Flags().Changed("fold-width") {
		cfg.Extract.FoldWidth, _ = cmd.Flags().GetBool("fold-width")
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.File, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("verbose-output") {
		cfg.Output.Verbose, _ = cmd.Flags().GetBool("verbose-output")
	}
}

// addExtractionFlags registers the flags shared by extract and batch.
func addExtractionFlags(c *cobra.Command) {
	c.Flags().Float64("margin", 0, "horizontal overlap tolerance in pixels (default from config: 10)")
	c.Flags().Int("min-text-runes", 0, "drop lines shorter than this many characters (default from config: 2)")
	c.Flags().Bool("no-roi", false, "accept OCR text anywhere on screen")
	c.Flags().String("fish-catalog", "", "JSON or YAML fish catalog extending the fish name whitelist")
	c.Flags().StringSlice("fish-names", nil, "fish name whitelist (replaces the configured list)")
	c.Flags().Bool("fold-width", false, "fold full-width OCR characters to their narrow forms")
	c.Flags().StringP("format", "f", "json", "output format: json, text, csv, yaml")
	c.Flags().String("output", "", "output file (default: stdout)")
	c.Flags().Bool("verbose-output", false, "include run id, regions, lines and rejections in json/yaml output")
}

func newExtractor(cfg *config.Config) (*pipeline.Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pcfg, err := cfg.ToPipelineConfig()
	if err != nil {
		return nil, err
	}
	pcfg.Logger = slog.Default()
	return pipeline.New(pcfg)
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	cfg := *GetConfig()
	applyExtractFlags(&cfg, cmd)

	detPath, _ := cmd.Flags().GetString("detections")
	ocrPath, _ := cmd.Flags().GetString("ocr")
	imagePath, _ := cmd.Flags().GetString("image")
	overlayPath, _ := cmd.Flags().GetString("overlay")
	if (imagePath == "") != (overlayPath == "") {
		return errors.New("--image and --overlay must be used together")
	}

	ex, err := newExtractor(&cfg)
	if err != nil {
		return err
	}

	det, err := payload.LoadDetections(detPath)
	if err != nil {
		return err
	}
	ocr, err := payload.LoadOCR(ocrPath)
	if err != nil {
		return err
	}

	res, err := ex.Extract(cmd.Context(), det, ocr)
	if err != nil {
		return err
	}
	for _, r := range res.Rejected {
		slog.Debug("element rejected", "stage", r.Stage, "index", r.Index, "reason", r.Reason)
	}

	out, err := pipeline.Format(res, cfg.Output.Format, cfg.Output.Verbose)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, cfg.Output.File, out); err != nil {
		return err
	}

	if overlayPath != "" {
		return saveOverlay(&cfg, res, imagePath, overlayPath)
	}
	return nil
}

func saveOverlay(cfg *config.Config, res *pipeline.Result, imagePath, overlayPath string) error {
	regionColor, err := utils.ParseHexColor(cfg.Output.RegionColor)
	if err != nil {
		return err
	}
	lineColor, err := utils.ParseHexColor(cfg.Output.LineColor)
	if err != nil {
		return err
	}
	img, _, err := utils.LoadImage(imagePath)
	if err != nil {
		return err
	}
	if err := utils.SaveImage(pipeline.RenderOverlay(img, res, regionColor, lineColor), overlayPath); err != nil {
		return err
	}
	slog.Info("overlay written", "file", overlayPath)
	return nil
}

func writeOutput(cmd *cobra.Command, file, out string) error {
	if file == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(file, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("detections", "d", "", "detector response JSON")
	extractCmd.Flags().String("ocr", "", "OCR response JSON")
	extractCmd.Flags().String("image", "", "screenshot to draw the overlay on")
	extractCmd.Flags().String("overlay", "", "write an overlay PNG of regions and lines to this path")
	_ = extractCmd.MarkFlagRequired("detections")
	_ = extractCmd.MarkFlagRequired("ocr")

	addExtractionFlags(extractCmd)
}
