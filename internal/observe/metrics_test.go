package observe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumWhere(t *testing.T, met *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", met.Name)
	}
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == key && kv.Value.AsString() == value {
				return dp.Value
			}
		}
	}
	return 0
}

func TestRecordAnalysis(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnalysis(ctx, "tense", []string{"ignorance is bliss"}, 0.0004)
	m.RecordAnalysis(ctx, "tense", nil, 0.0002)
	m.RecordAnalysis(ctx, "angry", []string{"ignorance is bliss", "perfect storm"}, 0.0003)

	rm := collect(t, reader)

	lines := findMetric(rm, "parley.lines.analyzed")
	if lines == nil {
		t.Fatal("parley.lines.analyzed not found")
	}
	if got := sumWhere(t, lines, "tone", "tense"); got != 2 {
		t.Errorf("tense lines = %d, want 2", got)
	}

	cliches := findMetric(rm, "parley.cliches.detected")
	if cliches == nil {
		t.Fatal("parley.cliches.detected not found")
	}
	if got := sumWhere(t, cliches, "phrase", "ignorance is bliss"); got != 2 {
		t.Errorf("ignorance is bliss = %d, want 2", got)
	}

	dur := findMetric(rm, "parley.analysis.duration")
	if dur == nil {
		t.Fatal("parley.analysis.duration not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 {
		t.Fatal("analysis duration has no histogram data")
	}
	if got := hist.DataPoints[0].Count; got != 3 {
		t.Errorf("sample count = %d, want 3", got)
	}
}

func TestRecordBusMessage(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordBusMessage(ctx, "parley.dialogue.submitted", "ok")
	m.RecordBusMessage(ctx, "parley.dialogue.submitted", "error")
	m.RecordBusMessage(ctx, "parley.dialogue.submitted", "ok")

	met := findMetric(collect(t, reader), "parley.bus.messages")
	if met == nil {
		t.Fatal("parley.bus.messages not found")
	}
	if got := sumWhere(t, met, "status", "ok"); got != 2 {
		t.Errorf("ok messages = %d, want 2", got)
	}
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(Middleware(m, slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.Get("/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	}

	met := findMetric(collect(t, reader), "parley.http.request.duration")
	if met == nil {
		t.Fatal("parley.http.request.duration not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("not a histogram")
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1 (one route pattern)", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 2 {
		t.Errorf("count = %d, want 2", dp.Count)
	}
	if v, ok := dp.Attributes.Value("route"); !ok || v.AsString() != "/sessions/{id}" {
		t.Errorf("route attribute = %v", v)
	}
	if v, ok := dp.Attributes.Value("status"); !ok || v.AsString() != "418" {
		t.Errorf("status attribute = %v", v)
	}
}
