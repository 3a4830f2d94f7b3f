package collector

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSinkFlush(t *testing.T) {
	sink := newSink("server_health")
	sink.Add(0, Labels{"labeltype": "system_health", "Status_Health": "OK"})
	sink.Add(2, Labels{"labeltype": "processor", "Id": "CPU0"})

	ch := make(chan prometheus.Metric, 8)
	sink.flush(ch)
	close(ch)

	var metrics []*dto.Metric
	for m := range ch {
		out := &dto.Metric{}
		if err := m.Write(out); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		metrics = append(metrics, out)
	}

	// Two samples plus the duration gauge.
	if len(metrics) != 3 {
		t.Fatalf("got %d metrics, want 3", len(metrics))
	}

	if v := metrics[0].GetGauge().GetValue(); v != 0 {
		t.Errorf("first sample value = %v, want 0", v)
	}
	if v := metrics[1].GetGauge().GetValue(); v != 2 {
		t.Errorf("second sample value = %v, want 2", v)
	}

	duration := metrics[2]
	if len(duration.GetLabel()) != 0 {
		t.Errorf("duration gauge carries labels: %v", duration.GetLabel())
	}
	v := duration.GetGauge().GetValue()
	if v < 0 {
		t.Errorf("duration = %v, want >= 0", v)
	}
	// Rounded to two decimals.
	if math.Abs(v*100-math.Round(v*100)) > 1e-9 {
		t.Errorf("duration %v is not rounded to two decimals", v)
	}
}

func TestSinkEmptyFlush(t *testing.T) {
	sink := newSink("server_health")

	ch := make(chan prometheus.Metric, 1)
	sink.flush(ch)
	close(ch)

	var count int
	for range ch {
		count++
	}
	if count != 1 {
		t.Errorf("got %d metrics from empty sink, want the duration gauge only", count)
	}
}
