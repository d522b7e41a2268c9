package feature

import (
	"context"
	"strings"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/index"
)

// 特征列名常量（同时也是 Item.Features / 解释 payload 的 key）。
const (
	ColBM25       = "bm25_score"
	ColCosine     = "cosine_similarity"
	ColHybrid     = "hybrid_score"
	ColPopularity = "product_popularity"
	ColCategory   = "user_category_preference"
	ColQueryLen   = "query_length"
	ColPriceMatch = "price_match_indicator"
)

// Columns 是排序模型输入的固定列顺序。
// 这是严格契约：任何列数或顺序的变化都会使已训练的排序 oracle 失效。
var Columns = []string{
	ColBM25,
	ColCosine,
	ColHybrid,
	ColPopularity,
	ColCategory,
	ColQueryLen,
	ColPriceMatch,
}

// Row 是一个 (query, user, candidate) 三元组的命名特征行。
type Row map[string]float64

// PriceMatchIndicator 是查询预算词与价格的一致性启发式（非学习特征）：
//   - 查询含 "cheap"/"budget" 且价格 < 100 → 1.0
//   - 查询含 "premium"/"expensive" 且价格 >= 300 → 1.0
//   - 其余 → 0.0
func PriceMatchIndicator(query string, price float64) float64 {
	q := strings.ToLower(query)
	if strings.Contains(q, "cheap") || strings.Contains(q, "budget") {
		if price < 100 {
			return 1.0
		}
		return 0.0
	}
	if strings.Contains(q, "premium") || strings.Contains(q, "expensive") {
		if price >= 300 {
			return 1.0
		}
		return 0.0
	}
	return 0.0
}

// BuildRow 构建一条排序特征行。
// Provider 取数失败（远程特征库不可用）按冷启动降级为 0，不使请求失败。
func BuildRow(
	ctx context.Context,
	query string,
	userID string,
	product core.Product,
	bm25Score, cosineSimilarity, hybridScore float64,
	provider Provider,
) Row {
	popularity := 0.0
	categoryPref := 0.0
	if provider != nil {
		if v, err := provider.Popularity(ctx, product.ID); err == nil {
			popularity = v
		}
		if v, err := provider.CategoryPreference(ctx, userID, product.Category); err == nil {
			categoryPref = v
		}
	}
	return Row{
		ColBM25:       bm25Score,
		ColCosine:     cosineSimilarity,
		ColHybrid:     hybridScore,
		ColPopularity: popularity,
		ColCategory:   categoryPref,
		ColQueryLen:   float64(len(index.Tokenize(query))),
		ColPriceMatch: PriceMatchIndicator(query, product.Price),
	}
}

// ToMatrix 按 Columns 固定顺序把特征行展开为模型输入矩阵。
func ToMatrix(rows []Row) [][]float64 {
	matrix := make([][]float64, len(rows))
	for i, r := range rows {
		vals := make([]float64, len(Columns))
		for j, col := range Columns {
			vals[j] = r[col]
		}
		matrix[i] = vals
	}
	return matrix
}
