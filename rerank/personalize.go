package rerank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/model"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// DefaultPersonalizationWeight 是用户亲和度在重排分数中的默认权重。
const DefaultPersonalizationWeight = 0.3

// PersonalizeNode 是个性化重排节点：
//
//	score = base + weight * affinity
//
// 其中 base 优先取排序模型分（Features["raw_model_score"]），
// 缺失时回退混合检索分（Features["hybrid_score"]），再缺失取 item.Score；
// affinity 为用户向量与商品向量的点积，用户或商品向量缺失时为 0，
// 此时排序退化为按 base 排序，对冷启动用户是无害的恒等变换。
//
// 写入 labels：personalized（affinity 非零时），便于 explain。
type PersonalizeNode struct {
	Users   *model.UserEmbeddingTable
	Vectors map[string][]float64 // 商品 ID -> 归一化商品向量
	Weight  float64              // 建议经 NewPersonalizeNode 置为默认值
}

// NewPersonalizeNode 按默认权重构建个性化重排节点。
func NewPersonalizeNode(users *model.UserEmbeddingTable, vectors map[string][]float64) *PersonalizeNode {
	return &PersonalizeNode{Users: users, Vectors: vectors, Weight: DefaultPersonalizationWeight}
}

func (n *PersonalizeNode) Name() string        { return "rerank.personalize" }
func (n *PersonalizeNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *PersonalizeNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	userID := ""
	if rctx != nil {
		userID = rctx.UserID
	}
	weight := core.Param(rctx, "personalization_weight", n.Weight)

	for _, it := range items {
		base := n.baseScore(it)
		affinity := 0.0
		if n.Users != nil {
			affinity = n.Users.Affinity(userID, n.Vectors[it.ID])
		}
		it.Score = base + weight*affinity
		if affinity != 0 {
			it.PutLabel("personalized", utils.Label{
				Value:  strconv.FormatFloat(affinity, 'f', 4, 64),
				Source: "rerank",
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

func (n *PersonalizeNode) baseScore(it *core.Item) float64 {
	if it.HasFeature("raw_model_score") {
		return it.Feature("raw_model_score")
	}
	if it.HasFeature("hybrid_score") {
		return it.Feature("hybrid_score")
	}
	return it.Score
}
