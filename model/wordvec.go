package model

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/searchkit/index"
)

// WordVectorEncoder 是基于预训练词向量表的本地文本编码器。
//
// 核心思想：
//   - 文本按空白分词、小写，逐词查表
//   - 词向量取平均得到文本向量，再做 L2 归一化
//   - OOV（表外词）贡献零向量
//
// 工程特征：
//   - 实时性好（O(词数) 查表），确定性（同一文本恒得同一向量）
//   - 适合测试与小规模原型；生产可替换为 encoder.OpenAIEncoder
type WordVectorEncoder struct {
	// WordVectors 词向量表：word -> vector
	WordVectors map[string][]float64

	// Dim 向量维度
	Dim int
}

// NewWordVectorEncoder 创建编码器；dim<=0 时从第一个向量推断维度。
func NewWordVectorEncoder(wordVectors map[string][]float64, dim int) *WordVectorEncoder {
	if dim <= 0 {
		for _, vec := range wordVectors {
			dim = len(vec)
			break
		}
	}
	return &WordVectorEncoder{WordVectors: wordVectors, Dim: dim}
}

func (m *WordVectorEncoder) Name() string { return "wordvec" }

func (m *WordVectorEncoder) Dimension() int { return m.Dim }

// Encode 将文本编码为 L2 归一化向量。全 OOV 或空文本得到零向量（归一化为 no-op）。
func (m *WordVectorEncoder) Encode(_ context.Context, text string) ([]float64, error) {
	words := index.Tokenize(text)
	vec := make([]float64, m.Dim)
	count := 0

	for _, w := range words {
		wv, ok := m.WordVectors[w]
		if !ok || len(wv) != m.Dim {
			continue
		}
		count++
		for i := 0; i < m.Dim; i++ {
			vec[i] += wv[i]
		}
	}
	if count > 0 {
		for i := range vec {
			vec[i] /= float64(count)
		}
	}
	return L2Normalize(vec), nil
}

// L2Normalize 原地做 L2 归一化并返回；零向量保持不变。
func L2Normalize(vec []float64) []float64 {
	var sq float64
	for _, v := range vec {
		sq += v * v
	}
	if sq == 0 {
		return vec
	}
	norm := math.Sqrt(sq)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// LoadWordVectorsFromMap 从 map（JSON/YAML 解析结果）加载词向量表。
func LoadWordVectorsFromMap(data map[string]interface{}) (*WordVectorEncoder, error) {
	wordVectors := make(map[string][]float64)
	dim := 0

	for word, raw := range data {
		list, ok := raw.([]interface{})
		if !ok {
			continue
		}
		vec := make([]float64, 0, len(list))
		for _, v := range list {
			switch val := v.(type) {
			case float64:
				vec = append(vec, val)
			case int:
				vec = append(vec, float64(val))
			case int64:
				vec = append(vec, float64(val))
			}
		}
		if len(vec) > 0 {
			if dim == 0 {
				dim = len(vec)
			} else if len(vec) != dim {
				return nil, fmt.Errorf("inconsistent vector dimension: word %s has %d, expected %d", word, len(vec), dim)
			}
			wordVectors[word] = vec
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("no valid vectors found")
	}
	return NewWordVectorEncoder(wordVectors, dim), nil
}
