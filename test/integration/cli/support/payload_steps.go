package support

import (
	"encoding/json"
	"fmt"
	"image/color"
	"reflect"
	"strings"

	"github.com/MeKo-Tech/rf4catch/internal/testutil"
	"github.com/MeKo-Tech/rf4catch/internal/utils"
	"github.com/cucumber/godog"
)

// theSampleScreenPayloads writes the sample screen as <name>.det.json and
// <name>.ocr.json.
func (testCtx *TestContext) theSampleScreenPayloads(name string) error {
	screen := testutil.SampleScreen()
	if err := testCtx.writeFile(name+".det.json", screen.DetectorJSON()); err != nil {
		return err
	}
	return testCtx.writeFile(name+".ocr.json", screen.OCRJSON())
}

func (testCtx *TestContext) onlyTheSampleDetectorPayload(name string) error {
	return testCtx.writeFile(name+".det.json", testutil.SampleScreen().DetectorJSON())
}

func (testCtx *TestContext) aScreenshotOfSize(name string, width, height int) error {
	img := testutil.CreateTestImage(width, height, color.RGBA{R: 20, G: 40, B: 60, A: 255})
	return utils.SaveImage(img, testCtx.Path(name))
}

// fishRecords decodes the "fishes" array of the stdout document.
func (testCtx *TestContext) fishRecords() ([][]string, error) {
	var doc struct {
		Fishes [][]string `json:"fishes"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	return doc.Fishes, nil
}

// theFishRecordsShouldBe compares the records with a table whose first row
// is a header.
func (testCtx *TestContext) theFishRecordsShouldBe(table *godog.Table) error {
	got, err := testCtx.fishRecords()
	if err != nil {
		return err
	}
	want := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows[1:] {
		rec := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			rec[i] = c.Value
		}
		want = append(want, rec)
	}
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("fish records = %v, want %v", got, want)
	}
	return nil
}

func (testCtx *TestContext) thereShouldBeFishRecords(n int) error {
	got, err := testCtx.fishRecords()
	if err != nil {
		return err
	}
	if len(got) != n {
		return fmt.Errorf("got %d fish records, want %d: %v", len(got), n, got)
	}
	return nil
}

// theBatchOutputShouldList checks the number of file entries of a batch
// JSON document.
func (testCtx *TestContext) theBatchOutputShouldList(n int) error {
	var doc struct {
		Files []json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &doc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	if len(doc.Files) != n {
		return fmt.Errorf("batch output lists %d files, want %d", len(doc.Files), n)
	}
	return nil
}

// theClassificationShouldBe looks for a "field<TAB>value" line.
func (testCtx *TestContext) theClassificationShouldBe(field, value string) error {
	line := field + "\t" + value
	for _, l := range strings.Split(testCtx.LastStdout, "\n") {
		if l == line {
			return nil
		}
	}
	return fmt.Errorf("no line %q in output: %s", line, testCtx.LastStdout)
}

func (testCtx *TestContext) theErrorShouldNameStage(stage string) error {
	return testCtx.theErrorShouldMention(stage + " stage failed")
}

// RegisterPayloadSteps registers the payload fixture and record steps.
func (testCtx *TestContext) RegisterPayloadSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the sample screen payloads "([^"]*)"$`, testCtx.theSampleScreenPayloads)
	sc.Step(`^only the sample detector payload "([^"]*)"$`, testCtx.onlyTheSampleDetectorPayload)
	sc.Step(`^a screenshot "([^"]*)" of size (\d+)x(\d+)$`, testCtx.aScreenshotOfSize)

	sc.Step(`^the fish records should be:$`, testCtx.theFishRecordsShouldBe)
	sc.Step(`^there should be (\d+) fish records?$`, testCtx.thereShouldBeFishRecords)
	sc.Step(`^the batch output should list (\d+) files?$`, testCtx.theBatchOutputShouldList)
	sc.Step(`^the classification should be "([^"]*)" with value "([^"]*)"$`, testCtx.theClassificationShouldBe)
	sc.Step(`^the error should name the "([^"]*)" stage$`, testCtx.theErrorShouldNameStage)
}
