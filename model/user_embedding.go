package model

import (
	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/index"
)

// UserEmbeddingTable 是用户向量表：user_id -> 与商品同空间的 L2 归一化向量。
//
// 构建方式（每个 fit 周期重建一次）：
//   - 对用户全部历史事件累加 Σ(事件权重 * 商品向量)，view 也参与（权重 1）
//   - 除以权重和（权重和为 0 时跳过），再做 L2 归一化（零向量跳过）
//
// 即用户口味向量是其全部触达商品的加权质心，不做时间衰减——
// 用简单性换取召回稳定性，是显式设计选择。
type UserEmbeddingTable struct {
	Dim     int
	Vectors map[string][]float64
}

// NewUserEmbeddingTable 创建空表，需调用 Fit 或直接填充 Vectors。
func NewUserEmbeddingTable(dim int) *UserEmbeddingTable {
	return &UserEmbeddingTable{Dim: dim, Vectors: make(map[string][]float64)}
}

// Fit 从事件与商品向量表聚合出每个用户的口味向量。
// 无向量的商品（冷启动）不贡献任何权重。
func (t *UserEmbeddingTable) Fit(events []core.InteractionEvent, productVectors map[string][]float64) {
	acc := make(map[string][]float64)
	weightSum := make(map[string]float64)

	for _, ev := range events {
		pv, ok := productVectors[ev.ProductID]
		if !ok {
			continue
		}
		w := core.EventWeight(ev.Event)
		if w == 0 {
			continue
		}
		vec, ok := acc[ev.UserID]
		if !ok {
			vec = make([]float64, t.Dim)
			acc[ev.UserID] = vec
		}
		for i := 0; i < t.Dim && i < len(pv); i++ {
			vec[i] += w * pv[i]
		}
		weightSum[ev.UserID] += w
	}

	t.Vectors = make(map[string][]float64, len(acc))
	for userID, vec := range acc {
		if total := weightSum[userID]; total > 0 {
			for i := range vec {
				vec[i] /= total
			}
		}
		t.Vectors[userID] = L2Normalize(vec)
	}
}

// Vector 返回用户向量；不存在返回 (nil, false)。
func (t *UserEmbeddingTable) Vector(userID string) ([]float64, bool) {
	vec, ok := t.Vectors[userID]
	return vec, ok
}

// Affinity 返回用户向量与商品向量的点积亲和度。
// 任一向量缺失（冷启动用户/无向量商品）返回 0。
func (t *UserEmbeddingTable) Affinity(userID string, productVector []float64) float64 {
	if len(productVector) == 0 {
		return 0.0
	}
	vec, ok := t.Vectors[userID]
	if !ok {
		return 0.0
	}
	return index.Dot(vec, productVector)
}
