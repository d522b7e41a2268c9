package index

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Dense 是稠密向量索引：按目录顺序持有商品向量，服务期只读。
//
// 检索采用全量暴力点积（向量均为 L2 归一化，点积即余弦相似度）。
// 索引结构只是加速手段，功能上与暴力扫描等价，这里选择最简实现。
type Dense struct {
	ids     []string
	vectors [][]float64
	byID    map[string][]float64
	dim     int
}

// FitDense 用编码器对商品文本建立稠密索引。
// 商品顺序即目录迭代顺序，下游按位置对齐分数。
func FitDense(ctx context.Context, encoder core.Encoder, products []core.Product) (*Dense, error) {
	d := &Dense{
		ids:     make([]string, 0, len(products)),
		vectors: make([][]float64, 0, len(products)),
		byID:    make(map[string][]float64, len(products)),
		dim:     encoder.Dimension(),
	}
	for _, p := range products {
		vec, err := encoder.Encode(ctx, p.Text())
		if err != nil {
			return nil, err
		}
		d.ids = append(d.ids, p.ID)
		d.vectors = append(d.vectors, vec)
		d.byID[p.ID] = vec
	}
	return d, nil
}

// NewDense 从已有向量表重建索引（持久化恢复路径）。
// ids 给出目录顺序；缺失向量的商品以零向量占位（相似度恒为 0）。
func NewDense(ids []string, vectorsByID map[string][]float64, dim int) *Dense {
	d := &Dense{
		ids:     ids,
		vectors: make([][]float64, len(ids)),
		byID:    make(map[string][]float64, len(ids)),
		dim:     dim,
	}
	for i, id := range ids {
		vec, ok := vectorsByID[id]
		if !ok {
			vec = make([]float64, dim)
		}
		d.vectors[i] = vec
		d.byID[id] = vec
	}
	return d
}

// Size 返回索引中的商品数。
func (d *Dense) Size() int { return len(d.ids) }

// Dimension 返回向量维度。
func (d *Dense) Dimension() int { return d.dim }

// Vector 返回商品向量；不存在返回 (nil, false)，调用方按冷启动处理。
func (d *Dense) Vector(productID string) ([]float64, bool) {
	vec, ok := d.byID[productID]
	return vec, ok
}

// Vectors 返回 商品ID -> 向量 的映射（用户向量聚合、持久化会用到）。
func (d *Dense) Vectors() map[string][]float64 {
	return d.byID
}

// Similarities 返回查询向量对每个文档位置的点积相似度。
func (d *Dense) Similarities(queryVec []float64) []float64 {
	sims := make([]float64, len(d.vectors))
	for i, vec := range d.vectors {
		sims[i] = Dot(queryVec, vec)
	}
	return sims
}

// NormalizedSimilarities 对全目录相似度做 min-max 归一化。
// max == min 的退化平坦分布原样返回，避免除零。
func (d *Dense) NormalizedSimilarities(queryVec []float64) []float64 {
	sims := d.Similarities(queryVec)
	if len(sims) == 0 {
		return sims
	}
	minS, maxS := sims[0], sims[0]
	for _, s := range sims[1:] {
		if s < minS {
			minS = s
		}
		if s > maxS {
			maxS = s
		}
	}
	if maxS > minS {
		for i := range sims {
			sims[i] = (sims[i] - minS) / (maxS - minS)
		}
	}
	return sims
}

// Dot 计算两个向量的点积；长度不一致按较短求和。
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}
