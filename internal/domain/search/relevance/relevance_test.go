package relevance

import (
	"math"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestForMetric(t *testing.T) {
	tests := []struct {
		metric   schema.Metric
		distance float64
		want     float64
	}{
		{schema.Cosine, 0, 1},
		{schema.Cosine, 0.1, 0.9},
		{schema.Cosine, 2, -1},
		{schema.IP, 0.3, -0.3},
		{schema.IP, -0.8, 0.8},
		{schema.L2, 0, 1},
		{schema.L2, 1, 0.5},
		{schema.L2, 3, 0.25},
		{schema.Metric("OTHER"), 0.4, 0.6},
	}
	for _, tc := range tests {
		fn := ForMetric(tc.metric)
		if got := fn(tc.distance); !almostEqual(got, tc.want) {
			t.Errorf("%s(%v) = %v, want %v", tc.metric, tc.distance, got, tc.want)
		}
	}
}

func TestCosine_Monotonic(t *testing.T) {
	fn := ForMetric(schema.Cosine)
	prev := fn(0)
	if !almostEqual(prev, 1) {
		t.Fatalf("relevance at 0 = %v, want 1", prev)
	}
	for d := 0.05; d <= 2.0001; d += 0.05 {
		cur := fn(d)
		if cur >= prev {
			t.Fatalf("relevance not decreasing at %v: %v >= %v", d, cur, prev)
		}
		prev = cur
	}
	if !almostEqual(fn(2), -1) {
		t.Errorf("relevance at 2 = %v, want -1", fn(2))
	}
}

func TestSelect_Override(t *testing.T) {
	override := func(d float64) float64 { return 42 }
	if got := Select(schema.Cosine, override)(0.5); got != 42 {
		t.Errorf("override not used, got %v", got)
	}
	if got := Select(schema.L2, nil)(1); !almostEqual(got, 0.5) {
		t.Errorf("metric mapping not used, got %v", got)
	}
}

func TestInnerProduct_FollowsDotProduct(t *testing.T) {
	fn := ForMetric(schema.IP)
	// The engine reports 1 - dot for IP.
	for _, dot := range []float64{-1, -0.5, 0, 0.25, 1} {
		if got := fn(1 - dot); !almostEqual(got, dot-1) {
			t.Errorf("dot %v: relevance = %v, want %v", dot, got, dot-1)
		}
	}
	if fn(1-0.9) <= fn(1-0.2) {
		t.Error("a larger dot product must rank higher")
	}
}
