package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/rf4catch/internal/testutil"
	"github.com/MeKo-Tech/rf4catch/internal/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generatePayloads = flag.Bool("payloads", true, "Generate detector/OCR payload pairs")
		generateImages   = flag.Bool("images", true, "Generate blank screenshots for overlay tests")
		name             = flag.String("name", "sample", "Base name of the generated files")
		verbose          = flag.Bool("v", false, "Verbose output")
		help             = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate test data for rf4catch testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -images=false   # Generate only payloads\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	dir := filepath.Join(root, "testdata", "screens")
	if *verbose {
		slog.Info("Output directory", "path", dir)
	}

	screen := testutil.SampleScreen()

	if *generatePayloads {
		if err := writePayloads(dir, *name, screen); err != nil {
			slog.Error("Failed to generate payloads", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated payload pair", "name", *name, "records", len(screen.Expected))
	}

	if *generateImages {
		path := filepath.Join(dir, *name+".png")
		img := testutil.CreateTestImage(int(screen.Width), int(screen.Height), color.RGBA{R: 24, G: 36, B: 48, A: 255})
		if err := utils.SaveImage(img, path); err != nil {
			slog.Error("Failed to generate screenshot", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated screenshot", "file", path)
	}
}

func writePayloads(dir, name string, screen testutil.Screen) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	files := map[string][]byte{
		name + ".det.json": screen.DetectorJSON(),
		name + ".ocr.json": screen.OCRJSON(),
	}
	for file, data := range files {
		if err := os.WriteFile(filepath.Join(dir, file), data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}
	return nil
}
