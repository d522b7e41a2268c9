// Package eval 提供离线评估：排序指标、批量回放评估、消融对比与类目漂移检测。
package eval

import (
	"math"
	"sort"
)

// DCGAtK 计算 DCG@k，折损为 1/log2(i+1)，增益为 2^rel-1。
func DCGAtK(relevances []float64, k int) float64 {
	if k < len(relevances) {
		relevances = relevances[:k]
	}
	sum := 0.0
	for i, rel := range relevances {
		sum += (math.Pow(2, rel) - 1) / math.Log2(float64(i)+2)
	}
	return sum
}

// NDCGAtK 计算 NDCG@k，理想 DCG 为 0 时返回 0。
func NDCGAtK(relevances []float64, k int) float64 {
	ideal := make([]float64, len(relevances))
	copy(ideal, relevances)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	idealDCG := DCGAtK(ideal, k)
	if idealDCG == 0 {
		return 0
	}
	return DCGAtK(relevances, k) / idealDCG
}

// MRRAtK 返回前 k 个结果中第一个相关结果的倒数排名，没有命中返回 0。
func MRRAtK(rankedIDs []string, relevant map[string]bool, k int) float64 {
	if k < len(rankedIDs) {
		rankedIDs = rankedIDs[:k]
	}
	for i, id := range rankedIDs {
		if relevant[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// RecallAtK 计算前 k 个结果对相关集合的召回率，相关集合为空返回 0。
func RecallAtK(rankedIDs []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hits(rankedIDs, relevant, k)) / float64(len(relevant))
}

// PrecisionAtK 计算前 k 个结果的准确率，k<=0 返回 0。
func PrecisionAtK(rankedIDs []string, relevant map[string]bool, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hits(rankedIDs, relevant, k)) / float64(k)
}

// Mean 返回均值，空列表返回 0。
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func hits(rankedIDs []string, relevant map[string]bool, k int) int {
	if k < len(rankedIDs) {
		rankedIDs = rankedIDs[:k]
	}
	seen := map[string]bool{}
	n := 0
	for _, id := range rankedIDs {
		if relevant[id] && !seen[id] {
			seen[id] = true
			n++
		}
	}
	return n
}
