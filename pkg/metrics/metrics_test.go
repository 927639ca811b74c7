package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("searches_total", "Total searches")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Errorf("counter = %d, want 3", c.Value())
	}

	g := r.Gauge("inventory_size", "Loaded vehicles")
	g.Set(25)
	g.Inc()
	g.Dec()
	if g.Value() != 25 {
		t.Errorf("gauge = %d, want 25", g.Value())
	}

	// Same name returns the same instance.
	if r.Counter("searches_total", "") != c {
		t.Error("expected the same counter back")
	}
}

func TestWithLabels(t *testing.T) {
	got := WithLabels("hits", "route", "/api/search", "status", "200")
	want := `hits{route="/api/search",status="200"}`
	if got != want {
		t.Errorf("WithLabels = %s, want %s", got, want)
	}
	if got := WithLabels("plain"); got != "plain" {
		t.Errorf("no labels should return name unchanged, got %s", got)
	}
	if got := WithLabels("odd", "k"); got != "odd" {
		t.Errorf("odd pair count should return name unchanged, got %s", got)
	}
}

func TestHistogramRender(t *testing.T) {
	r := New()
	h := r.Histogram("search_duration_seconds", "Search latency", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5) // above all buckets

	out := r.Render()
	checks := []string{
		"# TYPE search_duration_seconds histogram",
		`search_duration_seconds_bucket{le="0.1"} 1`,
		`search_duration_seconds_bucket{le="1"} 2`,
		`search_duration_seconds_bucket{le="+Inf"} 3`,
		"search_duration_seconds_count 3",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramSince(t *testing.T) {
	r := New()
	h := r.Histogram("d", "", nil)
	h.Since(time.Now().Add(-10 * time.Millisecond))
	_, _, sum, count := h.snapshot()
	if count != 1 || sum <= 0 {
		t.Errorf("Since did not observe: sum=%g count=%d", sum, count)
	}
}

func TestRenderLabeledSeries(t *testing.T) {
	r := New()
	r.Counter(WithLabels("hits", "route", "/api/search"), "Request count").Inc()
	r.Counter(WithLabels("hits", "route", "/api/reserve"), "").Add(2)

	out := r.Render()
	if strings.Count(out, "# TYPE hits counter") != 1 {
		t.Errorf("labeled series must share one TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `hits{route="/api/reserve"} 2`) ||
		!strings.Contains(out, `hits{route="/api/search"} 1`) {
		t.Errorf("missing labeled series:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("up", "").Inc()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "up 1") {
		t.Errorf("body missing metric: %s", rec.Body.String())
	}
}
