package filter

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/dsl"
)

// ExprFilter 是基于 CEL 表达式的过滤器，表达式返回 true 时过滤该候选。
//
// 表达式可以访问 item（id/score/features/meta/labels）、label 和 rctx，例如：
//
//	item.features["hybrid_score"] < 0.1
//	item.meta["category"] == "electronics" && item.score < 0.5
type ExprFilter struct {
	// Expr 为空时不过滤任何候选
	Expr string
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
