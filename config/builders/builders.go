// Package builders 在 init 中注册可纯配置构建的内置 Node。
// 入口处 import 此包即可启用配置驱动：
//
//	import _ "github.com/rushteam/searchkit/config/builders"
package builders

import (
	"time"

	"github.com/rushteam/searchkit/config"
	"github.com/rushteam/searchkit/filter"
	"github.com/rushteam/searchkit/model"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/conv"
	"github.com/rushteam/searchkit/rank"
	"github.com/rushteam/searchkit/rerank"
)

func init() {
	config.Register("rerank.topn", buildTopNNode)
	config.Register("filter.expr", buildExprFilterNode)
	config.Register("rank.rpc", buildRPCRankNode)
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 10)),
	}, nil
}

func buildExprFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &filter.FilterNode{
		Filters: []filter.Filter{
			&filter.ExprFilter{Expr: conv.ConfigGet[string](cfg, "expr", "")},
		},
	}, nil
}

// buildRPCRankNode 构建远程排序节点。商品目录与特征上下文绑定模型代次，
// 配置驱动场景下由召回阶段写入的检索特征兜底，取数特征为 0。
func buildRPCRankNode(cfg map[string]interface{}) (pipeline.Node, error) {
	endpoint := conv.ConfigGet[string](cfg, "endpoint", "")
	name := conv.ConfigGet[string](cfg, "name", "rpc")
	timeout := time.Duration(conv.ConfigGetInt64(cfg, "timeout_ms", 1000)) * time.Millisecond
	return &rank.ModelNode{
		Model: model.NewRPCModel(name, endpoint, timeout),
	}, nil
}
