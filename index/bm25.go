package index

import (
	"math"
	"strings"
)

// BM25 默认参数（Okapi 变体的常用取值）。
const (
	defaultK1      = 1.5
	defaultB       = 0.75
	defaultEpsilon = 0.25
)

// BM25 是 Okapi-BM25 词频索引，fit 时对整个语料预计算统计量。
//
// 核心思想：
//   - IDF 奖励稀有词、惩罚常见词；负 IDF 词统一压到正下限 epsilon * |平均IDF|
//   - 词频饱和（k1）与文档长度归一（b）
//
// 工程特征：
//   - fit 后服务期只读，可被任意多请求并发打分
//   - 打分覆盖全量文档位置，归一化在截断之前完成（调用方负责）
type BM25 struct {
	K1      float64
	B       float64
	Epsilon float64

	corpusSize int
	avgDocLen  float64
	docLens    []int
	termFreqs  []map[string]int
	idf        map[string]float64
}

// NewBM25 使用默认参数创建空索引，需调用 Fit 后才能打分。
func NewBM25() *BM25 {
	return &BM25{K1: defaultK1, B: defaultB, Epsilon: defaultEpsilon}
}

// Tokenize 按空白切分并小写，是查询与文档共用的分词约定。
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Fit 对语料（每篇文档为词列表）建立索引。空语料合法，打分返回空。
func (b *BM25) Fit(corpus [][]string) {
	b.corpusSize = len(corpus)
	b.docLens = make([]int, len(corpus))
	b.termFreqs = make([]map[string]int, len(corpus))

	totalLen := 0
	docFreq := make(map[string]int)
	for i, doc := range corpus {
		b.docLens[i] = len(doc)
		totalLen += len(doc)

		freq := make(map[string]int, len(doc))
		for _, term := range doc {
			freq[term]++
		}
		b.termFreqs[i] = freq
		for term := range freq {
			docFreq[term]++
		}
	}
	if b.corpusSize > 0 {
		b.avgDocLen = float64(totalLen) / float64(b.corpusSize)
	}

	// IDF：ln((N - n + 0.5)/(n + 0.5))；负值词收集后统一压到一个正的下限
	b.idf = make(map[string]float64, len(docFreq))
	var idfSum float64
	var negative []string
	for term, n := range docFreq {
		idf := math.Log(float64(b.corpusSize)-float64(n)+0.5) - math.Log(float64(n)+0.5)
		b.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	// 下限取 epsilon * |平均IDF|：平均 IDF 非正时（小语料里常见词占半壁江山，
	// 正负 IDF 恰好抵消）退化为 epsilon 本身，保证命中文档的常见词永远得正分。
	if len(negative) > 0 {
		eps := b.Epsilon * math.Abs(idfSum/float64(len(b.idf)))
		if eps == 0 {
			eps = b.Epsilon
		}
		for _, term := range negative {
			b.idf[term] = eps
		}
	}
}

// Size 返回语料中的文档数。
func (b *BM25) Size() int { return b.corpusSize }

// Scores 返回查询词对每个文档位置的原始 BM25 分数。
// 空查询或空语料时所有分数为 0。
func (b *BM25) Scores(queryTokens []string) []float64 {
	scores := make([]float64, b.corpusSize)
	if len(queryTokens) == 0 || b.corpusSize == 0 {
		return scores
	}

	k1 := b.K1
	if k1 <= 0 {
		k1 = defaultK1
	}
	bb := b.B
	if bb < 0 {
		bb = defaultB
	}

	for i := 0; i < b.corpusSize; i++ {
		norm := 1 - bb + bb*float64(b.docLens[i])/safeDiv(b.avgDocLen)
		var s float64
		for _, term := range queryTokens {
			tf := float64(b.termFreqs[i][term])
			if tf == 0 {
				continue
			}
			s += b.idf[term] * tf * (k1 + 1) / (tf + k1*norm)
		}
		scores[i] = s
	}
	return scores
}

// NormalizedScores 返回按最大值缩放到 [0,1] 的分数。
// 最大原始分为 0 时（空查询/无命中）原样返回，避免除零。
func (b *BM25) NormalizedScores(queryTokens []string) []float64 {
	scores := b.Scores(queryTokens)
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}
	return scores
}

func safeDiv(avg float64) float64 {
	if avg == 0 {
		return 1
	}
	return avg
}
