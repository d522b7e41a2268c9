package engine

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/eval"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/rank"
)

// 消融策略名。
const (
	StrategyBM25         = "BM25"
	StrategyDense        = "Dense"
	StrategyHybrid       = "Hybrid"
	StrategyRanker       = "Ranker"
	StrategyPersonalized = "Personalized"
)

// strategyFunc 把一个排序函数适配成 eval.Strategy。
type strategyFunc struct {
	name string
	fn   func(ctx context.Context, query, userID string) ([]string, error)
}

func (s *strategyFunc) Name() string { return s.name }

func (s *strategyFunc) Rank(ctx context.Context, query, userID string) ([]string, error) {
	return s.fn(ctx, query, userID)
}

// Strategies 返回当前代次上的全部消融策略，用于离线对比各阶段贡献：
//
//	BM25         纯词法检索（alpha=1）
//	Dense        纯稠密检索（alpha=0）
//	Hybrid       混合检索（配置 alpha）
//	Ranker       混合检索 + 排序模型
//	Personalized 完整链路（检索 + 排序 + 个性化）
//
// 评估路径不写漂移窗口，离线回放不污染线上分布。
func (e *Engine) Strategies() ([]eval.Strategy, error) {
	gen := e.gen.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	topK := e.opts.TopK

	retrieveBy := func(alpha float64, col string) func(ctx context.Context, query, userID string) ([]string, error) {
		return func(ctx context.Context, query, _ string) ([]string, error) {
			items, err := gen.hybrid.Retrieve(ctx, query, topK, alpha)
			if err != nil {
				return nil, err
			}
			sort.SliceStable(items, func(i, j int) bool {
				return items[i].Feature(col) > items[j].Feature(col)
			})
			return itemIDs(items), nil
		}
	}

	ranked := func(ctx context.Context, query, userID string) ([]*core.Item, error) {
		items, err := gen.hybrid.Retrieve(ctx, query, topK, e.opts.Alpha)
		if err != nil {
			return nil, err
		}
		node := &rank.ModelNode{Model: e.model, Products: gen.Products, Provider: gen.Features}
		rctx := &core.RecommendContext{UserID: userID, Query: query}
		return node.Process(ctx, rctx, items)
	}

	strategies := []eval.Strategy{
		&strategyFunc{name: StrategyBM25, fn: retrieveBy(1.0, feature.ColBM25)},
		&strategyFunc{name: StrategyDense, fn: retrieveBy(0.0, feature.ColCosine)},
		&strategyFunc{name: StrategyHybrid, fn: retrieveBy(e.opts.Alpha, feature.ColHybrid)},
		&strategyFunc{name: StrategyRanker, fn: func(ctx context.Context, query, userID string) ([]string, error) {
			items, err := ranked(ctx, query, userID)
			if err != nil {
				return nil, err
			}
			return itemIDs(items), nil
		}},
		&strategyFunc{name: StrategyPersonalized, fn: func(ctx context.Context, query, userID string) ([]string, error) {
			rctx := &core.RecommendContext{UserID: userID, Query: query}
			items, err := gen.search.Run(ctx, rctx, nil)
			if err != nil {
				return nil, err
			}
			return itemIDs(items), nil
		}},
	}
	return strategies, nil
}

func itemIDs(items []*core.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
