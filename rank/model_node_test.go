package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/model"
)

func candidate(id string, bm25, cosine, hybrid float64) *core.Item {
	it := core.NewItem(id)
	it.Score = hybrid
	it.Features[feature.ColBM25] = bm25
	it.Features[feature.ColCosine] = cosine
	it.Features[feature.ColHybrid] = hybrid
	return it
}

func TestModelNodeScoresAndSorts(t *testing.T) {
	// weight only the cosine column: reverses the hybrid ordering
	weights := make([]float64, len(feature.Columns))
	weights[1] = 1.0
	node := &ModelNode{
		Model: &model.LinearModel{Weights: weights},
		Products: map[string]*core.Product{
			"p1": {ID: "p1", Category: "footwear", Price: 50},
			"p2": {ID: "p2", Category: "apparel", Price: 200},
		},
	}

	items := []*core.Item{
		candidate("p1", 0.9, 0.1, 0.8),
		candidate("p2", 0.2, 0.7, 0.4),
	}
	out, err := node.Process(context.Background(), &core.RecommendContext{Query: "shoes", UserID: "u1"}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if out[0].ID != "p2" {
		t.Errorf("top item = %s, want p2 (highest cosine)", out[0].ID)
	}
	for _, it := range out {
		if !it.HasFeature(ColRawModelScore) {
			t.Errorf("item %s missing raw_model_score", it.ID)
		}
		if it.Score != it.Feature(ColRawModelScore) {
			t.Errorf("item %s Score = %v, want model score %v", it.ID, it.Score, it.Feature(ColRawModelScore))
		}
		if lbl, ok := it.Labels["rank_model"]; !ok || lbl.Value != "linear" {
			t.Errorf("item %s missing rank_model label", it.ID)
		}
	}
}

func TestModelNodeNilModelPassthrough(t *testing.T) {
	node := &ModelNode{}
	items := []*core.Item{candidate("p1", 1, 1, 1)}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].Score != 1 {
		t.Errorf("nil model should pass items through unchanged, got %v", out)
	}
}

type failingModel struct{}

func (failingModel) Name() string { return "failing" }
func (failingModel) Score(_ [][]float64) ([]float64, error) {
	return nil, errors.New("oracle unavailable")
}

func TestModelNodePropagatesModelError(t *testing.T) {
	node := &ModelNode{Model: failingModel{}}
	_, err := node.Process(context.Background(), &core.RecommendContext{}, []*core.Item{candidate("p1", 1, 1, 1)})
	if err == nil {
		t.Fatal("Process() should propagate model error")
	}
}

func TestModelNodeUnknownProduct(t *testing.T) {
	weights := make([]float64, len(feature.Columns))
	weights[2] = 1.0 // hybrid column only
	node := &ModelNode{Model: &model.LinearModel{Weights: weights}}

	// candidate missing from catalog: retrieval features still flow through
	items := []*core.Item{candidate("ghost", 0.5, 0.5, 0.5)}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out[0].Score != 0.5 {
		t.Errorf("Score = %v, want 0.5 from hybrid feature", out[0].Score)
	}
}
