package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderCounters(t *testing.T) {
	IncAnalysisStarted()
	IncAnalysisStarted()
	IncAnalysisCompleted()
	IncAnalysisFailed()
	AddStreamFragments(3)

	out := Render()
	for _, want := range []string{
		"analysis_started_total 2",
		"analysis_completed_total 1",
		"analysis_failed_total 1",
		"stream_fragments_total 3",
		"# TYPE analysis_started_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{100, 250, 500})
	h.Observe(120)
	h.Observe(300)
	h.Observe(9000)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("count = %d, want 3", snap.count)
	}
	if snap.sum != 9420 {
		t.Fatalf("sum = %v, want 9420", snap.sum)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "test_hist", "help text", snap)
	text := buf.String()
	for _, want := range []string{
		`test_hist_bucket{le="100"} 0`,
		`test_hist_bucket{le="250"} 1`,
		`test_hist_bucket{le="500"} 2`,
		`test_hist_bucket{le="+Inf"} 3`,
		"test_hist_sum 9420",
		"test_hist_count 3",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("histogram output missing %q\n%s", want, text)
		}
	}
}

func TestObserveClampsNegativeDurations(t *testing.T) {
	before := analysisDuration.Snapshot().count
	ObserveAnalysisDurationMs(-5)
	after := analysisDuration.Snapshot()
	if after.count != before+1 {
		t.Fatalf("count = %d, want %d", after.count, before+1)
	}
}
