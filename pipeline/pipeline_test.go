package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/searchkit/core"
)

type appendNode struct {
	name string
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindPostProcess }

func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.name)), nil
}

func TestPipelineRunChainsNodes(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "first"},
		&appendNode{name: "second"},
	}}

	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 2 || items[0].ID != "first" || items[1].ID != "second" {
		t.Errorf("Run = %v, want [first second]", items)
	}
}

func TestPipelineRunStopsOnError(t *testing.T) {
	wantErr := errors.New("node failed")
	p := &Pipeline{Nodes: []Node{
		&appendNode{name: "first"},
		&appendNode{name: "broken", err: wantErr},
		&appendNode{name: "unreached"},
	}}

	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if items != nil {
		t.Errorf("items = %v, want nil on error", items)
	}
}

func TestNodeFactory(t *testing.T) {
	f := NewNodeFactory()
	f.Register("test.append", func(cfg map[string]interface{}) (Node, error) {
		name, _ := cfg["name"].(string)
		return &appendNode{name: name}, nil
	})

	node, err := f.Build("test.append", map[string]interface{}{"name": "n1"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Name() != "n1" {
		t.Errorf("node name = %s, want n1", node.Name())
	}

	if _, err := f.Build("test.missing", nil); err == nil {
		t.Error("unregistered type should fail")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := `pipeline:
  name: search
  nodes:
    - type: rerank.topn
      config:
        n: 5
    - type: filter.expr
      config:
        expr: 'item.score > 0.1'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "search" {
		t.Errorf("name = %s, want search", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(cfg.Pipeline.Nodes))
	}
	if cfg.Pipeline.Nodes[0].Type != "rerank.topn" {
		t.Errorf("nodes[0].Type = %s, want rerank.topn", cfg.Pipeline.Nodes[0].Type)
	}
	if cfg.Pipeline.Nodes[1].Config["expr"] != "item.score > 0.1" {
		t.Errorf("nodes[1].Config = %v", cfg.Pipeline.Nodes[1].Config)
	}
}

func TestBuildPipelineFromConfig(t *testing.T) {
	f := NewNodeFactory()
	f.Register("test.append", func(map[string]interface{}) (Node, error) {
		return &appendNode{name: "built"}, nil
	})

	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "test.append"}}

	p, err := cfg.BuildPipeline(f)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Nodes) != 1 || p.Nodes[0].Name() != "built" {
		t.Errorf("pipeline nodes = %v", p.Nodes)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "test.missing"})
	if _, err := cfg.BuildPipeline(f); err == nil {
		t.Error("unknown node type should fail pipeline build")
	}
}
