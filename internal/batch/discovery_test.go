package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/rf4catch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, name, []byte("{}"))
}

func TestDiscoverPairs_EmptyArgs(t *testing.T) {
	pairs, incomplete, err := discoverPairs([]string{}, false, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Empty(t, incomplete)
}

func TestDiscoverPairs_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.ocr.json")
	touch(t, dir, "a.det.json")
	touch(t, dir, "a.ocr.json")
	touch(t, dir, "b.det.json")
	touch(t, dir, "c.det.json")
	touch(t, dir, "notes.json")
	touch(t, dir, "a.png")

	pairs, incomplete, err := discoverPairs([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{
		Name:       filepath.Join(dir, "a"),
		Detections: filepath.Join(dir, "a.det.json"),
		OCR:        filepath.Join(dir, "a.ocr.json"),
	}, pairs[0])
	assert.Equal(t, filepath.Join(dir, "b"), pairs[1].Name)
	assert.Equal(t, []string{filepath.Join(dir, "c") + ": missing OCR payload"}, incomplete)
}

func TestDiscoverPairs_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "root.det.json")
	touch(t, dir, "root.ocr.json")
	touch(t, dir, "sub/deep.det.json")
	touch(t, dir, "sub/deep.ocr.json")

	pairs, _, err := discoverPairs([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, filepath.Join(dir, "root"), pairs[0].Name)

	pairs, _, err = discoverPairs([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, filepath.Join(dir, "sub", "deep"), pairs[1].Name)
}

func TestDiscoverPairs_SingleFileBringsPartner(t *testing.T) {
	dir := t.TempDir()
	ocr := touch(t, dir, "x.ocr.json")
	touch(t, dir, "x.det.json")
	lonely := touch(t, dir, "y.det.json")

	pairs, incomplete, err := discoverPairs([]string{ocr, lonely}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Complete())
	assert.Equal(t, []string{filepath.Join(dir, "y") + ": missing OCR payload"}, incomplete)
}

func TestDiscoverPairs_Patterns(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"day1_a", "day1_b", "day2_a"} {
		touch(t, dir, n+".det.json")
		touch(t, dir, n+".ocr.json")
	}

	pairs, _, err := discoverPairs([]string{dir}, false, []string{"day1_*"}, []string{"*_b.*"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, filepath.Join(dir, "day1_a"), pairs[0].Name)
}

func TestDiscoverPairs_MissingPath(t *testing.T) {
	_, _, err := discoverPairs([]string{"/nonexistent/dir"}, false, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestPairMissing(t *testing.T) {
	assert.Equal(t, "detector payload", Pair{OCR: "a.ocr.json"}.missing())
	assert.Equal(t, "OCR payload", Pair{Detections: "a.det.json"}.missing())
	assert.False(t, Pair{}.Complete())
}

func TestScreenshotFor(t *testing.T) {
	dir := t.TempDir()
	p := Pair{Name: filepath.Join(dir, "shot")}

	_, ok := screenshotFor(p)
	assert.False(t, ok)

	jpg := filepath.Join(dir, "shot.jpg")
	require.NoError(t, os.WriteFile(jpg, []byte("x"), 0o600))
	got, ok := screenshotFor(p)
	assert.True(t, ok)
	assert.Equal(t, jpg, got)

	png := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(png, []byte("x"), 0o600))
	got, _ = screenshotFor(p)
	assert.Equal(t, png, got, "png is preferred")
}
