package model

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/searchkit/core"
)

func TestLinearModelScore(t *testing.T) {
	m := &LinearModel{Bias: 0.5, Weights: []float64{1, 2}}

	scores, err := m.Score([][]float64{
		{1, 1},
		{0, 0},
		{2, -1},
	})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	want := []float64{3.5, 0.5, 0.5}
	for i, w := range want {
		if math.Abs(scores[i]-w) > 1e-12 {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], w)
		}
	}
}

func TestLinearModelColumnMismatch(t *testing.T) {
	m := &LinearModel{Weights: []float64{1, 2, 3}}
	if _, err := m.Score([][]float64{{1, 2}}); err == nil {
		t.Fatal("Score() with wrong column count should error")
	}
}

func TestWordVectorEncoder(t *testing.T) {
	enc := NewWordVectorEncoder(map[string][]float64{
		"red":  {2, 0},
		"blue": {0, 2},
	}, 2)

	tests := []struct {
		name string
		text string
		want []float64 // expected normalized vector
	}{
		{name: "single known word", text: "red", want: []float64{1, 0}},
		{name: "mean of two words", text: "red blue", want: []float64{math.Sqrt2 / 2, math.Sqrt2 / 2}},
		{name: "unknown words give zero vector", text: "zzz yyy", want: []float64{0, 0}},
		{name: "unknown words are skipped in mean", text: "red zzz", want: []float64{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("Encode(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestL2Normalize(t *testing.T) {
	vec := L2Normalize([]float64{3, 4})
	if math.Abs(vec[0]-0.6) > 1e-12 || math.Abs(vec[1]-0.8) > 1e-12 {
		t.Errorf("L2Normalize([3 4]) = %v, want [0.6 0.8]", vec)
	}

	zero := L2Normalize([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should stay zero, got %v", zero)
	}
}

func TestUserEmbeddingTableFit(t *testing.T) {
	vectors := map[string][]float64{
		"p1": {1, 0},
		"p2": {0, 1},
	}
	base := time.Now()
	events := []core.InteractionEvent{
		// purchase(4) on p1, view(1) on p2: centroid leans to p1
		{UserID: "u1", ProductID: "p1", Event: core.EventPurchase, Timestamp: base},
		{UserID: "u1", ProductID: "p2", Event: core.EventView, Timestamp: base},
		// events on products without vectors contribute nothing
		{UserID: "u2", ProductID: "ghost", Event: core.EventPurchase, Timestamp: base},
	}

	tbl := NewUserEmbeddingTable(2)
	tbl.Fit(events, vectors)

	vec, ok := tbl.Vector("u1")
	if !ok {
		t.Fatal("u1 should have an embedding")
	}
	norm := math.Hypot(vec[0], vec[1])
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("user vector should be L2-normalized, |v| = %v", norm)
	}
	if vec[0] <= vec[1] {
		t.Errorf("purchase-weighted dimension should dominate: %v", vec)
	}

	if _, ok := tbl.Vector("u2"); ok {
		t.Error("user with only vectorless products should have no embedding")
	}
}

func TestUserEmbeddingAffinity(t *testing.T) {
	tbl := NewUserEmbeddingTable(2)
	tbl.Vectors = map[string][]float64{"u1": {1, 0}}

	tests := []struct {
		name    string
		userID  string
		product []float64
		want    float64
	}{
		{name: "aligned product", userID: "u1", product: []float64{1, 0}, want: 1},
		{name: "orthogonal product", userID: "u1", product: []float64{0, 1}, want: 0},
		{name: "cold start user", userID: "u999", product: []float64{1, 0}, want: 0},
		{name: "missing product vector", userID: "u1", product: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Affinity(tt.userID, tt.product); got != tt.want {
				t.Errorf("Affinity() = %v, want %v", got, tt.want)
			}
		})
	}
}
