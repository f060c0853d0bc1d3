package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordMutation("drink", "reconciled", time.Millisecond)
	m.RecordResync(nil)
	m.RecordFetch("cache")
	m.RecordRevalidation("stored")
	m.RecordInstall(errors.New("boom"))
	m.RecordDropped(2)
	m.LiveClientConnected()
	m.LiveClientDisconnected()
}

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))

	m.RecordMutation("drink", "reconciled", 10*time.Millisecond)
	m.RecordMutation("drink", "rolled_back", 10*time.Millisecond)
	m.RecordMutation("drink", "rolled_back", 10*time.Millisecond)
	m.RecordResync(nil)
	m.RecordResync(errors.New("offline"))
	m.RecordFetch("cache")
	m.RecordRevalidation("failed")
	m.RecordInstall(nil)
	m.RecordDropped(3)
	m.LiveClientConnected()
	m.LiveClientConnected()
	m.LiveClientDisconnected()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"reconciled", counterValue(t, m.mutations.WithLabelValues("drink", "reconciled")), 1},
		{"rolled back", counterValue(t, m.mutations.WithLabelValues("drink", "rolled_back")), 2},
		{"resync ok", counterValue(t, m.resyncs.WithLabelValues("success")), 1},
		{"resync error", counterValue(t, m.resyncs.WithLabelValues("error")), 1},
		{"cache fetch", counterValue(t, m.fetches.WithLabelValues("cache")), 1},
		{"revalidation", counterValue(t, m.revalidations.WithLabelValues("failed")), 1},
		{"install", counterValue(t, m.installs.WithLabelValues("success")), 1},
		{"dropped", counterValue(t, m.dropped), 3},
		{"live clients", gaugeValue(t, m.liveClients), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if got := histogramCount(t, m.mutationDuration.WithLabelValues("drink")); got != 3 {
		t.Errorf("mutation_duration_seconds count = %d, want 3", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances on distinct registries must not collide.
	a := New(WithRegistry(prometheus.NewRegistry()))
	b := New(WithRegistry(prometheus.NewRegistry()))

	a.RecordFetch("network")
	if got := counterValue(t, b.fetches.WithLabelValues("network")); got != 0 {
		t.Fatalf("b fetches = %v, want 0", got)
	}
}
