package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestIncHTTP_CountsPerPathAndStatus(t *testing.T) {
	m := New()
	m.IncHTTP("/webhook", 200)
	m.IncHTTP("/webhook", 200)
	m.IncHTTP("/webhook", 401)
	m.IncHTTP("/messages", 200)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/webhook", "200")); got != 2 {
		t.Fatalf("webhook/200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/webhook", "401")); got != 1 {
		t.Fatalf("webhook/401 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/messages", "200")); got != 1 {
		t.Fatalf("messages/200 = %v, want 1", got)
	}
}

func TestIncWebhook_Outcomes(t *testing.T) {
	m := New()
	m.IncWebhook(OutcomeCreated)
	m.IncWebhook(OutcomeDuplicate)
	m.IncWebhook(OutcomeDuplicate)
	m.IncWebhook(OutcomeInvalidSignature)

	if got := testutil.ToFloat64(m.webhookRequests.WithLabelValues(OutcomeDuplicate)); got != 2 {
		t.Fatalf("duplicate = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.webhookRequests.WithLabelValues(OutcomeValidationError)); got != 0 {
		t.Fatalf("validation_error = %v, want 0", got)
	}
}

func findHistogram(t *testing.T, m *Metrics, path string) *dto.Histogram {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "request_latency_ms" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "path" && lp.GetValue() == path {
					return metric.GetHistogram()
				}
			}
		}
	}
	t.Fatalf("no histogram for path %s", path)
	return nil
}

func TestObserveLatency_CumulativeBuckets(t *testing.T) {
	m := New()
	for _, v := range []float64{50, 100, 700, 5000} {
		m.ObserveLatency("/webhook", v)
	}

	h := findHistogram(t, m, "/webhook")
	if h.GetSampleCount() != 4 {
		t.Fatalf("count = %d, want 4", h.GetSampleCount())
	}
	if h.GetSampleSum() != 5850 {
		t.Fatalf("sum = %v, want 5850", h.GetSampleSum())
	}

	// A sample at a boundary lands in that bucket; every bucket is
	// cumulative over the smaller ones.
	want := map[float64]uint64{100: 2, 500: 2, 1000: 3}
	for _, b := range h.GetBucket() {
		if w, ok := want[b.GetUpperBound()]; ok && b.GetCumulativeCount() != w {
			t.Fatalf("bucket le=%v count = %d, want %d", b.GetUpperBound(), b.GetCumulativeCount(), w)
		}
	}
}

func TestMetrics_ConcurrentUpdatesLoseNothing(t *testing.T) {
	m := New()
	const workers = 50
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.IncWebhook(OutcomeCreated)
				m.IncHTTP("/webhook", 200)
				m.ObserveLatency("/webhook", 1)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(m.webhookRequests.WithLabelValues(OutcomeCreated)); got != workers*perWorker {
		t.Fatalf("created = %v, want %d", got, workers*perWorker)
	}
	h := findHistogram(t, m, "/webhook")
	if h.GetSampleCount() != workers*perWorker {
		t.Fatalf("latency count = %d, want %d", h.GetSampleCount(), workers*perWorker)
	}
}
