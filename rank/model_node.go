package rank

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/model"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// ColRawModelScore 是排序模型输出写入 Features 的键。
const ColRawModelScore = "raw_model_score"

// ModelNode 是一个使用 RankModel 的排序 Node：
//   - 为每个候选按固定列序组装特征行，批量送入模型打分
//   - 模型输出写入 Features["raw_model_score"] 并覆盖 item.Score
//   - 写入 labels：rank_model
//   - 按分数降序稳定排序，平分保留输入顺序
//
// 模型打分失败时整体返回错误，由上层决定降级策略；
// 模型为 nil 时透传输入，保留召回分数。
type ModelNode struct {
	Model    model.RankModel
	Products map[string]*core.Product
	Provider feature.Provider
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}

	query, userID := "", ""
	if rctx != nil {
		query, userID = rctx.Query, rctx.UserID
	}

	rows := make([]feature.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, n.buildRow(ctx, query, userID, it))
	}

	scores, err := n.Model.Score(feature.ToMatrix(rows))
	if err != nil {
		return nil, err
	}

	for i, it := range items {
		it.Features[ColRawModelScore] = scores[i]
		it.Score = scores[i]
		it.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// buildRow 组装单个候选的特征行。召回阶段已写入的检索特征直接复用，
// 候选不在商品目录时退化为零值商品（检索特征仍然有效）。
func (n *ModelNode) buildRow(ctx context.Context, query, userID string, it *core.Item) feature.Row {
	p := core.Product{ID: it.ID}
	if got, ok := n.Products[it.ID]; ok && got != nil {
		p = *got
	}
	return feature.BuildRow(ctx, query, userID, p,
		it.Feature(feature.ColBM25),
		it.Feature(feature.ColCosine),
		it.Feature(feature.ColHybrid),
		n.Provider,
	)
}
