package config_test

import (
	"testing"

	"github.com/rushteam/searchkit/config"
	_ "github.com/rushteam/searchkit/config/builders"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/rerank"
)

func TestSupportedTypes(t *testing.T) {
	types := config.SupportedTypes()
	want := map[string]bool{
		"rerank.topn": false,
		"filter.expr": false,
		"rank.rpc":    false,
	}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, found := range want {
		if !found {
			t.Errorf("builtin node type %q not registered", typ)
		}
	}
}

func TestDefaultFactoryBuildsTopN(t *testing.T) {
	factory := config.DefaultFactory()
	node, err := factory.Build("rerank.topn", map[string]interface{}{"n": 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	topn, ok := node.(*rerank.TopNNode)
	if !ok {
		t.Fatalf("Build returned %T, want *rerank.TopNNode", node)
	}
	if topn.N != 5 {
		t.Errorf("N = %d, want 5", topn.N)
	}
}

func TestDefaultFactoryUnknownType(t *testing.T) {
	if _, err := config.DefaultFactory().Build("recall.nonexistent", nil); err == nil {
		t.Fatal("unknown node type should fail")
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	ok := &pipeline.Config{}
	ok.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "rerank.topn"},
		{Type: "filter.expr"},
	}
	if err := config.ValidatePipelineConfig(ok); err != nil {
		t.Errorf("ValidatePipelineConfig = %v, want nil", err)
	}

	bad := &pipeline.Config{}
	bad.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.unknown"}}
	if err := config.ValidatePipelineConfig(bad); err == nil {
		t.Error("unsupported node type should fail validation")
	}

	if err := config.ValidatePipelineConfig(nil); err != nil {
		t.Errorf("nil config should validate, got %v", err)
	}
}
