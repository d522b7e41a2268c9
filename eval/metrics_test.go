package eval

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDCGAtK(t *testing.T) {
	tests := []struct {
		name string
		rels []float64
		k    int
		want float64
	}{
		{name: "single max relevance", rels: []float64{3}, k: 10, want: 7},
		{name: "second position discounted", rels: []float64{0, 1}, k: 10, want: 1 / math.Log2(3)},
		{name: "truncated at k", rels: []float64{3, 3, 3}, k: 1, want: 7},
		{name: "empty", rels: nil, k: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DCGAtK(tt.rels, tt.k); !almostEqual(got, tt.want) {
				t.Errorf("DCGAtK(%v, %d) = %v, want %v", tt.rels, tt.k, got, tt.want)
			}
		})
	}
}

func TestNDCGAtK(t *testing.T) {
	tests := []struct {
		name string
		rels []float64
		k    int
		want float64
	}{
		{name: "perfect order", rels: []float64{3, 2, 1, 0}, k: 10, want: 1},
		{name: "zero ideal", rels: []float64{0, 0, 0}, k: 10, want: 0},
		{name: "empty", rels: nil, k: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NDCGAtK(tt.rels, tt.k); !almostEqual(got, tt.want) {
				t.Errorf("NDCGAtK(%v, %d) = %v, want %v", tt.rels, tt.k, got, tt.want)
			}
		})
	}
	// reversed order must score strictly below 1
	if got := NDCGAtK([]float64{0, 1, 2, 3}, 10); got >= 1 || got <= 0 {
		t.Errorf("NDCG of reversed order = %v, want in (0, 1)", got)
	}
}

func TestMRRAtK(t *testing.T) {
	relevant := map[string]bool{"p2": true}
	tests := []struct {
		name   string
		ranked []string
		k      int
		want   float64
	}{
		{name: "hit at rank 2", ranked: []string{"p1", "p2", "p3"}, k: 10, want: 0.5},
		{name: "hit at rank 1", ranked: []string{"p2"}, k: 10, want: 1},
		{name: "no hit", ranked: []string{"p1", "p3"}, k: 10, want: 0},
		{name: "hit beyond k", ranked: []string{"p1", "p2"}, k: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MRRAtK(tt.ranked, relevant, tt.k); !almostEqual(got, tt.want) {
				t.Errorf("MRRAtK(%v, %d) = %v, want %v", tt.ranked, tt.k, got, tt.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	relevant := map[string]bool{"p1": true, "p2": true}
	tests := []struct {
		name   string
		ranked []string
		k      int
		want   float64
	}{
		{name: "half recalled", ranked: []string{"p1", "p3"}, k: 10, want: 0.5},
		{name: "all recalled", ranked: []string{"p2", "p1"}, k: 10, want: 1},
		{name: "duplicates counted once", ranked: []string{"p1", "p1", "p1"}, k: 10, want: 0.5},
		{name: "truncated at k", ranked: []string{"p3", "p1"}, k: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecallAtK(tt.ranked, relevant, tt.k); !almostEqual(got, tt.want) {
				t.Errorf("RecallAtK(%v, %d) = %v, want %v", tt.ranked, tt.k, got, tt.want)
			}
		})
	}
	if got := RecallAtK([]string{"p1"}, nil, 10); got != 0 {
		t.Errorf("RecallAtK with empty relevant set = %v, want 0", got)
	}
}

func TestPrecisionAtK(t *testing.T) {
	relevant := map[string]bool{"p1": true}
	tests := []struct {
		name   string
		ranked []string
		k      int
		want   float64
	}{
		{name: "one of five", ranked: []string{"p1", "p2", "p3", "p4", "p5"}, k: 5, want: 0.2},
		{name: "denominator is k not result size", ranked: []string{"p1"}, k: 5, want: 0.2},
		{name: "zero k", ranked: []string{"p1"}, k: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrecisionAtK(tt.ranked, relevant, tt.k); !almostEqual(got, tt.want) {
				t.Errorf("PrecisionAtK(%v, %d) = %v, want %v", tt.ranked, tt.k, got, tt.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3}); !almostEqual(got, 2) {
		t.Errorf("Mean = %v, want 2", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
}
