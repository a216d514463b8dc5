package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/octans/frontcheck/pkg/models"
)

func sampleReport(importStatus models.StepStatus) *models.Report {
	return &models.Report{
		FinishedAt: time.Unix(1700000000, 0),
		Steps: []models.StepResult{
			{Check: "gallery", Status: models.StatusPassed, DurationMs: 1500},
			{Check: "import", Status: importStatus, DurationMs: 250},
		},
	}
}

func TestObserve(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleReport(models.StatusFailed))

	if got := testutil.ToFloat64(r.checkSuccess.WithLabelValues("gallery")); got != 1 {
		t.Errorf("gallery success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.checkSuccess.WithLabelValues("import")); got != 0 {
		t.Errorf("import success = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.checkDuration.WithLabelValues("gallery")); got != 1.5 {
		t.Errorf("gallery duration = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(r.runSuccess); got != 0 {
		t.Errorf("run success = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.lastRun); got != 1700000000 {
		t.Errorf("last run = %v", got)
	}

	r.Observe(sampleReport(models.StatusPassed))
	if got := testutil.ToFloat64(r.runSuccess); got != 1 {
		t.Errorf("run success after passing run = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleReport(models.StatusPassed))

	path := filepath.Join(t.TempDir(), "frontcheck.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`frontcheck_check_success{check="import"} 1`,
		"frontcheck_run_success 1",
		"# TYPE frontcheck_last_run_timestamp_seconds gauge",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in textfile:\n%s", want, data)
		}
	}
}

func TestRegistry_IsolatedPerRecorder(t *testing.T) {
	first := NewRecorder()
	second := NewRecorder()
	first.Observe(sampleReport(models.StatusPassed))

	n, err := testutil.GatherAndCount(first.Registry())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Two checks with success and duration each, plus the run gauges.
	if n != 6 {
		t.Errorf("Expected 6 series, got %d", n)
	}

	n, err = testutil.GatherAndCount(second.Registry(), "frontcheck_check_success")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected an untouched recorder to have no check series, got %d", n)
	}
}
