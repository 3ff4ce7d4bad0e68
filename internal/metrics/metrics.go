// Package metrics collects extraction statistics on a private prometheus
// registry and writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the extraction metrics. The zero value is not usable;
// use New.
type Collector struct {
	registry *prometheus.Registry

	extractionsTotal   *prometheus.CounterVec
	recordsTotal       prometheus.Counter
	rejectionsTotal    *prometheus.CounterVec
	linesPerExtraction prometheus.Histogram
	extractionDuration prometheus.Histogram
	batchDuration      prometheus.Gauge
}

// New creates a Collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rf4catch_extractions_total",
				Help: "Total number of extractions",
			},
			[]string{"status"}, // status: ok, error
		),
		recordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rf4catch_records_total",
				Help: "Total number of catch records produced",
			},
		),
		rejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rf4catch_rejections_total",
				Help: "Input elements skipped during normalization or decoding",
			},
			[]string{"stage"}, // stage: detector, ocr
		),
		linesPerExtraction: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rf4catch_lines_per_extraction",
				Help:    "Number of merged text lines per extraction",
				Buckets: []float64{0, 5, 10, 25, 50, 100, 250},
			},
		),
		extractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rf4catch_extraction_duration_seconds",
				Help:    "Extraction duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		batchDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rf4catch_batch_duration_seconds",
				Help: "Wall time of the last batch run",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe records one successful extraction.
func (c *Collector) Observe(res *pipeline.Result) {
	if res == nil {
		return
	}
	c.extractionsTotal.WithLabelValues("ok").Inc()
	c.recordsTotal.Add(float64(len(res.Records)))
	for _, r := range res.Rejected {
		c.rejectionsTotal.WithLabelValues(r.Stage).Inc()
	}
	c.linesPerExtraction.Observe(float64(len(res.Lines)))
	c.extractionDuration.Observe(time.Duration(res.Processing.TotalNs).Seconds())
}

// ObserveError records a failed extraction. A non-empty stage also counts
// as a rejection of that stage's whole document.
func (c *Collector) ObserveError(stage string) {
	c.extractionsTotal.WithLabelValues("error").Inc()
	if stage != "" {
		c.rejectionsTotal.WithLabelValues(stage).Inc()
	}
}

// ObserveBatch records the wall time of a batch run.
func (c *Collector) ObserveBatch(d time.Duration) {
	c.batchDuration.Set(d.Seconds())
}

// WriteTextfile writes all metrics to path, creating parent directories.
func (c *Collector) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
