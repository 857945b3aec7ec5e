package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveRun("create_paper", "success")
	m.ObserveRun("create_paper", "success")
	m.ObserveRun("create_paper", "error")
	m.IncGraphWrite("statement_create")
	m.ObserveStep("create_paper", "resource-create", "success", 3*time.Millisecond)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("create_paper", "success")); got != 2 {
		t.Fatalf("runs success=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.graphWrites.WithLabelValues("statement_create")); got != 1 {
		t.Fatalf("graph writes=%v want 1", got)
	}
	if n := testutil.CollectAndCount(m.stepDuration); n != 1 {
		t.Fatalf("step series=%d want 1", n)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(buf.String(), "kgcontent_pipeline_runs_total") {
		t.Fatalf("exposition missing runs counter:\n%s", buf.String())
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRun("x", "success")
	m.ObserveStep("x", "y", "error", time.Second)
	m.IncGraphWrite("resource_create")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" authorization=Bearer x , bad, =nokey, k2 = v2 ")
	if len(got) != 2 || got["authorization"] != "Bearer x" || got["k2"] != "v2" {
		t.Fatalf("unexpected headers %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestParseRatioClamps(t *testing.T) {
	cases := map[string]float64{"": 0.1, "abc": 0.1, "-1": 0, "2.5": 1, "0.25": 0.25}
	for in, want := range cases {
		if got := parseRatio(in, 0.1); got != want {
			t.Fatalf("parseRatio(%q)=%v want %v", in, got, want)
		}
	}
}
