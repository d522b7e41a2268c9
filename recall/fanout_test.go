package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/searchkit/core"
)

type staticSource struct {
	name  string
	items []*core.Item
	err   error
}

func (s *staticSource) Name() string { return s.name }
func (s *staticSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	return s.items, s.err
}

func scoredItem(id string, score float64) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	return it
}

func TestFanoutMergeFirst(t *testing.T) {
	n := &Fanout{
		Dedup: true,
		Sources: []Source{
			&staticSource{name: "a", items: []*core.Item{scoredItem("p1", 0.9), scoredItem("p2", 0.8)}},
			&staticSource{name: "b", items: []*core.Item{scoredItem("p2", 0.99), scoredItem("p3", 0.7)}},
		},
	}
	items, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	// first strategy keeps the earlier source's duplicate
	if items[1].ID != "p2" || items[1].Score != 0.8 {
		t.Errorf("duplicate should keep source-a version, got %s score=%v", items[1].ID, items[1].Score)
	}
}

func TestFanoutMergeMaxScore(t *testing.T) {
	n := &Fanout{
		Dedup:         true,
		MergeStrategy: "max_score",
		Sources: []Source{
			&staticSource{name: "a", items: []*core.Item{scoredItem("p1", 0.5), scoredItem("p2", 0.8)}},
			&staticSource{name: "b", items: []*core.Item{scoredItem("p1", 0.9)}},
		},
	}
	items, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "p1" || items[0].Score != 0.9 {
		t.Errorf("top = %s/%v, want p1/0.9 (higher score wins)", items[0].ID, items[0].Score)
	}
}

func TestFanoutSourceFailureDegrades(t *testing.T) {
	n := &Fanout{
		Dedup: true,
		Sources: []Source{
			&staticSource{name: "broken", err: errors.New("backend down")},
			&staticSource{name: "ok", items: []*core.Item{scoredItem("p1", 0.5)}},
		},
	}
	items, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() should degrade, not fail: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("healthy source results should survive, got %v", items)
	}
}

func TestFanoutLabelsSources(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&staticSource{name: "cooccurrence", items: []*core.Item{scoredItem("p1", 0.5)}},
		},
	}
	items, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "cooccurrence" {
		t.Errorf("recall_source label = %+v, want cooccurrence", items[0].Labels)
	}
}

func TestFanoutNoSources(t *testing.T) {
	n := &Fanout{}
	items, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("no sources should yield no items, got %v", items)
	}
}
