package main

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hackgods/carehub/internal/config"
)

func TestOperationMetricsRecord(t *testing.T) {
	var om OperationMetrics
	om.Record(10*time.Millisecond, http.StatusCreated, nil)
	om.Record(20*time.Millisecond, http.StatusConflict, nil)
	om.Record(30*time.Millisecond, http.StatusInternalServerError, nil)
	om.Record(40*time.Millisecond, 0, errors.New("dial tcp: refused"))

	if om.Total != 4 || om.Success != 1 || om.Conflict != 1 || om.Error != 2 {
		t.Fatalf("counts = total %d success %d conflict %d error %d", om.Total, om.Success, om.Conflict, om.Error)
	}

	avg, min, max, p50, p95 := om.Stats()
	if avg != 25*time.Millisecond {
		t.Errorf("avg = %s, want 25ms", avg)
	}
	if min != 10*time.Millisecond || max != 40*time.Millisecond {
		t.Errorf("min/max = %s/%s, want 10ms/40ms", min, max)
	}
	if p50 != 30*time.Millisecond {
		t.Errorf("p50 = %s, want 30ms", p50)
	}
	if p95 != 40*time.Millisecond {
		t.Errorf("p95 = %s, want 40ms", p95)
	}
}

func TestOperationMetricsStatsEmpty(t *testing.T) {
	var om OperationMetrics
	avg, min, max, p50, p95 := om.Stats()
	if avg+min+max+p50+p95 != 0 {
		t.Errorf("Stats() on empty metrics should be all zero")
	}
}

func TestLoadSimConfigNormalizesRatios(t *testing.T) {
	t.Setenv("SIM_REQUEST_RATIO", "2")
	t.Setenv("SIM_TRANSITION_RATIO", "1")
	t.Setenv("SIM_READ_RATIO", "1")
	t.Setenv("SIM_DURATION", "2h")
	t.Setenv("SIM_API_BASE_URL", "http://api.local/")

	cfg := loadSimConfig(config.Config{BootstrapAdmin: "root"})

	if cfg.RequestRatio != 0.5 || cfg.TransitRatio != 0.25 || cfg.ReadRatio != 0.25 {
		t.Errorf("ratios = %v/%v/%v, want 0.5/0.25/0.25", cfg.RequestRatio, cfg.TransitRatio, cfg.ReadRatio)
	}
	if cfg.APIBaseURL != "http://api.local" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.TokenTTL <= cfg.Duration {
		t.Errorf("TokenTTL %s should outlive Duration %s", cfg.TokenTTL, cfg.Duration)
	}
	if err := validateSimConfig(cfg); err != nil {
		t.Errorf("validateSimConfig() = %v", err)
	}
}

func TestValidateSimConfigRequiresAdmin(t *testing.T) {
	cfg := loadSimConfig(config.Config{})
	if err := validateSimConfig(cfg); err == nil {
		t.Fatal("expected error without an admin caller")
	}
}

func TestPrintReportSkipsIdleOperations(t *testing.T) {
	sim := &Simulator{config: SimConfig{Duration: time.Second, Workers: 2}}
	sim.metrics.Request.Record(5*time.Millisecond, http.StatusCreated, nil)

	var buf bytes.Buffer
	sim.PrintReport(&buf)

	out := buf.String()
	if !strings.Contains(out, "Request:") {
		t.Errorf("report missing Request section:\n%s", out)
	}
	if strings.Contains(out, "History:") {
		t.Errorf("report should skip operations that never ran:\n%s", out)
	}
}
