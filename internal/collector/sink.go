package collector

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	familyHelp   = "Server Monitoring Data"
	durationName = "redfish_scrape_duration_seconds"
	durationHelp = "Server Monitoring Redfish Scrape duration in seconds"
)

var durationDesc = prometheus.NewDesc(durationName, durationHelp, nil, nil)

// Labels is the label set attached to one sample.
type Labels map[string]string

// Sample is one immutable gauge observation produced by the walk.
type Sample struct {
	Value  float64
	Labels Labels
}

// Sink accumulates the samples of one poll cycle and converts them to
// a metric family on flush, together with the scrape duration gauge.
type Sink struct {
	family  string
	start   time.Time
	samples []Sample
}

func newSink(family string) *Sink {
	return &Sink{family: family, start: time.Now()}
}

// Add appends one sample to the batch.
func (s *Sink) Add(value float64, labels Labels) {
	s.samples = append(s.samples, Sample{Value: value, Labels: labels})
}

// Samples returns the accumulated batch.
func (s *Sink) Samples() []Sample {
	return s.samples
}

// flush emits every accumulated sample plus the duration gauge. Each
// sample carries its own label set, so labels are attached as constant
// labels on a per-sample descriptor.
func (s *Sink) flush(ch chan<- prometheus.Metric) {
	for _, sample := range s.samples {
		desc := prometheus.NewDesc(s.family, familyHelp, nil, prometheus.Labels(sample.Labels))
		metric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, sample.Value)
		if err != nil {
			continue
		}
		ch <- metric
	}

	elapsed := math.Round(time.Since(s.start).Seconds()*100) / 100
	ch <- prometheus.MustNewConstMetric(durationDesc, prometheus.GaugeValue, elapsed)
}
