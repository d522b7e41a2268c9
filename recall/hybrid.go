package recall

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/index"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// 混合检索默认参数。
const (
	DefaultTopK  = 10
	DefaultAlpha = 0.5
)

// Hybrid 是词法+稠密的混合检索召回源。
//
// 算法流程（全目录打分，归一化先于截断）：
//  1. BM25 原始分按最大值缩放到 [0,1]（最大分为 0 时原样保留）
//  2. 查询向量与全目录余弦相似度做 min-max 归一化（max==min 时原样保留）
//  3. hybrid = alpha * bm25_norm + (1-alpha) * dense_norm
//  4. 按 hybrid 降序取 top_k，稳定排序，平分按目录迭代顺序
//
// alpha=1 退化为纯词法，alpha=0 退化为纯稠密。
// 空目录返回空结果；空查询使 BM25 全为 0，不报错。
type Hybrid struct {
	BM25    *index.BM25
	Dense   *index.Dense
	Encoder core.Encoder
	IDs     []string // 目录迭代顺序的商品 ID（与两个索引的位置对齐）

	TopK  int     // 默认 10
	Alpha float64 // [0,1]，NewHybrid 置为 0.5；由请求参数覆盖
}

// NewHybrid 按默认参数构建混合检索源。
func NewHybrid(bm25 *index.BM25, dense *index.Dense, enc core.Encoder, ids []string) *Hybrid {
	return &Hybrid{
		BM25:    bm25,
		Dense:   dense,
		Encoder: enc,
		IDs:     ids,
		TopK:    DefaultTopK,
		Alpha:   DefaultAlpha,
	}
}

func (r *Hybrid) Name() string        { return "recall.hybrid" }
func (r *Hybrid) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：从 rctx 取查询与参数后执行检索。
func (r *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Hybrid) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	query := ""
	if rctx != nil {
		query = rctx.Query
	}
	topK := core.Param(rctx, "top_k", r.topK())
	alpha := core.Param(rctx, "alpha", r.Alpha)
	return r.Retrieve(ctx, query, topK, alpha)
}

// Retrieve 执行一次混合检索，返回长度 <= topK 的候选列表。
func (r *Hybrid) Retrieve(ctx context.Context, query string, topK int, alpha float64) ([]*core.Item, error) {
	if len(r.IDs) == 0 {
		return []*core.Item{}, nil
	}
	if topK <= 0 {
		topK = r.topK()
	}

	bm25Norm := r.BM25.NormalizedScores(index.Tokenize(query))

	queryVec, err := r.Encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}
	denseNorm := r.Dense.NormalizedSimilarities(queryVec)

	n := len(r.IDs)
	hybrid := make([]float64, n)
	for i := 0; i < n; i++ {
		hybrid[i] = alpha*bm25Norm[i] + (1-alpha)*denseNorm[i]
	}

	// 稳定排序保证平分按目录迭代顺序
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hybrid[order[a]] > hybrid[order[b]]
	})
	if topK < n {
		order = order[:topK]
	}

	out := make([]*core.Item, 0, len(order))
	for _, i := range order {
		it := core.NewItem(r.IDs[i])
		it.Score = hybrid[i]
		it.Features[feature.ColBM25] = bm25Norm[i]
		it.Features[feature.ColCosine] = denseNorm[i]
		it.Features[feature.ColHybrid] = hybrid[i]
		it.PutLabel("recall_source", utils.Label{Value: "hybrid", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func (r *Hybrid) topK() int {
	if r.TopK > 0 {
		return r.TopK
	}
	return DefaultTopK
}
