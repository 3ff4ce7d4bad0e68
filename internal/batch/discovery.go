package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Payload file suffixes. A pair shares everything before the suffix.
const (
	DetectionsSuffix = ".det.json"
	OCRSuffix        = ".ocr.json"
)

// Pair is one screen's detector and OCR payload files.
type Pair struct {
	// Name is the shared path prefix, e.g. "shots/0001" for
	// shots/0001.det.json and shots/0001.ocr.json.
	Name       string
	Detections string
	OCR        string
}

// Complete reports whether both payload files are known.
func (p Pair) Complete() bool {
	return p.Detections != "" && p.OCR != ""
}

func (p Pair) missing() string {
	if p.Detections == "" {
		return "detector payload"
	}
	return "OCR payload"
}

// splitPayload returns the pair name and kind of a payload path.
func splitPayload(path string) (name string, det, ok bool) {
	switch {
	case strings.HasSuffix(path, DetectionsSuffix):
		return strings.TrimSuffix(path, DetectionsSuffix), true, true
	case strings.HasSuffix(path, OCRSuffix):
		return strings.TrimSuffix(path, OCRSuffix), false, true
	}
	return "", false, false
}

type pairSet struct {
	order []string
	pairs map[string]*Pair
}

func (s *pairSet) add(path string) {
	name, det, ok := splitPayload(path)
	if !ok {
		return
	}
	p, seen := s.pairs[name]
	if !seen {
		p = &Pair{Name: name}
		s.pairs[name] = p
		s.order = append(s.order, name)
	}
	if det {
		p.Detections = path
	} else {
		p.OCR = path
	}
}

// discoverPairs finds payload pairs below args. Pairs keep the order in which
// their first file was found; pairs missing a partner are returned as
// human-readable notes instead.
func discoverPairs(args []string, recursive bool, includePatterns, excludePatterns []string) ([]Pair, []string, error) {
	set := &pairSet{pairs: make(map[string]*Pair)}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, nil, err
			}
			for _, f := range files {
				set.add(f)
			}
			continue
		}

		if !shouldIncludeFile(arg, includePatterns, excludePatterns) {
			continue
		}
		set.add(arg)
		// A single payload file brings its partner along when it exists.
		if name, det, ok := splitPayload(arg); ok {
			partner := name + DetectionsSuffix
			if det {
				partner = name + OCRSuffix
			}
			if _, err := os.Stat(partner); err == nil {
				set.add(partner)
			}
		}
	}

	var pairs []Pair
	var incomplete []string
	for _, name := range set.order {
		p := *set.pairs[name]
		if !p.Complete() {
			incomplete = append(incomplete, fmt.Sprintf("%s: missing %s", name, p.missing()))
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, incomplete, nil
}

// discoverInDirectory walks dir for payload files, descending into
// subdirectories only when recursive is set.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if _, _, ok := splitPayload(path); ok && shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// shouldIncludeFile determines if a file should be included based on include/exclude patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern matches the file's base name against glob patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// screenshotFor returns the screenshot stored next to the pair's payloads.
func screenshotFor(p Pair) (string, bool) {
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		path := p.Name + ext
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
