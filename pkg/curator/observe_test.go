package curator

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWithPrometheus_CountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, _ = c.Curate(context.Background(), []Record{{ID: "a", Numerics: map[string]float64{"score": 1}}}, Criteria{})
	_, _ = c.Curate(context.Background(), nil, Criteria{Rank: Ranking{Rule: "magic"}})

	ok := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("curate", "ok"))
	failed := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("curate", "error"))
	if ok != 1 || failed != 1 {
		t.Errorf("ok=%v error=%v, want 1/1", ok, failed)
	}
}

func TestWithPrometheus_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	second, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if first.obs.metrics.operations != second.obs.metrics.operations {
		t.Error("second client should reuse the registered counter")
	}
}

func TestRegisterOrReuse_IncompatibleType(t *testing.T) {
	reg := prometheus.NewRegistry()
	clash := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "curator", Subsystem: "client", Name: "operations_total", Help: "clash",
	}, []string{"operation", "status"})
	reg.MustRegister(clash)

	if _, err := New(WithPrometheus(reg)); err == nil {
		t.Fatal("expected incompatible type error")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, _ := New(WithLogger(logger))

	_, _ = c.Curate(context.Background(), nil, Criteria{Rank: Ranking{Rule: "magic"}})
	if !strings.Contains(buf.String(), "operation failed") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("curate", time.Now(), 0, nil)
}
