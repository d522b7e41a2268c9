package engine

import (
	"context"
	"strings"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/feature"
)

// TrainingSet 是排序模型的训练数据：固定列顺序的特征矩阵、
// 按事件类型分级的相关性标签，以及按查询分组的组大小（LTR 训练用）。
// 训练本身不在本库范围内，由外部训练器消费该结构。
type TrainingSet struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
	Labels  []float64   `json:"labels"`
	Groups  []int       `json:"groups"` // 每个查询组的候选数，与 Matrix 行对齐
}

// TrainingData 从交互事件构建训练集：每个事件以目标商品标题（小写）为查询
// 做一次混合检索，检索候选逐个出特征行；目标商品按事件类型取分级标签
// （view=0, click=1, cart=2, purchase=3），其余候选为 0。
// 目标商品不在目录或检索无结果时跳过该事件。
func (e *Engine) TrainingData(ctx context.Context, events []core.InteractionEvent) (*TrainingSet, error) {
	gen := e.gen.Load()
	if gen == nil {
		return nil, ErrNotReady
	}

	ts := &TrainingSet{Columns: feature.Columns}
	rows := make([]feature.Row, 0, len(events)*e.opts.TopK)

	for _, ev := range events {
		target, ok := gen.Products[ev.ProductID]
		if !ok || target == nil {
			continue
		}
		query := strings.ToLower(target.Title)

		items, err := gen.hybrid.Retrieve(ctx, query, e.opts.TopK, e.opts.Alpha)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			continue
		}

		for _, it := range items {
			p := core.Product{ID: it.ID}
			if got, ok := gen.Products[it.ID]; ok && got != nil {
				p = *got
			}
			rows = append(rows, feature.BuildRow(ctx, query, ev.UserID, p,
				it.Feature(feature.ColBM25),
				it.Feature(feature.ColCosine),
				it.Feature(feature.ColHybrid),
				gen.Features))

			label := 0.0
			if it.ID == ev.ProductID {
				label = core.RelevanceLabel(ev.Event)
			}
			ts.Labels = append(ts.Labels, label)
		}
		ts.Groups = append(ts.Groups, len(items))
	}

	ts.Matrix = feature.ToMatrix(rows)
	return ts, nil
}
