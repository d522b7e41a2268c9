package index

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/searchkit/core"
)

// stubEncoder returns a fixed vector per lowercased text.
type stubEncoder struct {
	dim  int
	vecs map[string][]float64
}

func (e *stubEncoder) Name() string   { return "stub" }
func (e *stubEncoder) Dimension() int { return e.dim }
func (e *stubEncoder) Encode(_ context.Context, text string) ([]float64, error) {
	if v, ok := e.vecs[text]; ok {
		return v, nil
	}
	return make([]float64, e.dim), nil
}

func TestDot(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "identical unit", a: []float64{1, 0}, b: []float64{1, 0}, want: 1},
		{name: "mixed", a: []float64{0.5, 0.5}, b: []float64{0.5, -0.5}, want: 0},
		{name: "length mismatch uses shorter", a: []float64{1, 1, 1}, b: []float64{2}, want: 2},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dot(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Dot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFitDenseAndSimilarities(t *testing.T) {
	enc := &stubEncoder{dim: 2, vecs: map[string][]float64{
		"red shoes red shoes": {1, 0},
		"blue coat blue coat": {0, 1},
	}}
	products := []core.Product{
		{ID: "p1", Title: "Red Shoes", Description: "red shoes"},
		{ID: "p2", Title: "Blue Coat", Description: "blue coat"},
	}

	d, err := FitDense(context.Background(), enc, products)
	if err != nil {
		t.Fatalf("FitDense() error = %v", err)
	}
	if d.Size() != 2 || d.Dimension() != 2 {
		t.Fatalf("Size=%d Dimension=%d, want 2/2", d.Size(), d.Dimension())
	}

	sims := d.Similarities([]float64{1, 0})
	if sims[0] != 1 || sims[1] != 0 {
		t.Errorf("Similarities = %v, want [1 0]", sims)
	}

	if _, ok := d.Vector("p1"); !ok {
		t.Error("Vector(p1) should exist")
	}
	if _, ok := d.Vector("missing"); ok {
		t.Error("Vector(missing) should not exist")
	}
}

func TestNormalizedSimilarities(t *testing.T) {
	d := NewDense([]string{"a", "b", "c"}, map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
		"c": {0.6, 0.8},
	}, 2)

	sims := d.NormalizedSimilarities([]float64{1, 0})
	if sims[0] != 1 {
		t.Errorf("best match should normalize to 1, got %v", sims[0])
	}
	if sims[1] != 0 {
		t.Errorf("worst match should normalize to 0, got %v", sims[1])
	}
	if sims[2] <= 0 || sims[2] >= 1 {
		t.Errorf("middle match should be in (0,1), got %v", sims[2])
	}
}

func TestNormalizedSimilaritiesFlat(t *testing.T) {
	// identical vectors: max == min, keep raw values instead of dividing by zero
	d := NewDense([]string{"a", "b"}, map[string][]float64{
		"a": {1, 0},
		"b": {1, 0},
	}, 2)
	sims := d.NormalizedSimilarities([]float64{1, 0})
	if sims[0] != 1 || sims[1] != 1 {
		t.Errorf("flat distribution should stay unnormalized, got %v", sims)
	}
}

func TestNewDenseMissingVector(t *testing.T) {
	d := NewDense([]string{"a", "b"}, map[string][]float64{"a": {1, 0}}, 2)
	vec, ok := d.Vector("b")
	if !ok {
		t.Fatal("placeholder vector should exist")
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatalf("missing product should get zero vector, got %v", vec)
		}
	}
}
