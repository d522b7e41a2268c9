package eval

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/searchkit/core"
)

// DefaultK 是所有 @k 指标的默认截断位置。
const DefaultK = 10

// Strategy 是一条可评估的排序链路：给定查询与用户返回有序商品 ID。
// 消融对比用不同的 Strategy 实现同一批样本。
type Strategy interface {
	Name() string
	Rank(ctx context.Context, query, userID string) ([]string, error)
}

// Sample 是一条回放样本：用目标商品标题（小写）当查询，目标商品为唯一相关项。
type Sample struct {
	UserID   string
	TargetID string
	Query    string
}

// BuildSamples 从隐式正反馈事件构建回放样本，目标商品不在目录时跳过该事件。
func BuildSamples(events []core.InteractionEvent, products map[string]*core.Product) []Sample {
	samples := make([]Sample, 0, len(events))
	for _, ev := range events {
		if !core.IsImplicitPositive(ev.Event) {
			continue
		}
		p, ok := products[ev.ProductID]
		if !ok || p == nil {
			continue
		}
		samples = append(samples, Sample{
			UserID:   ev.UserID,
			TargetID: ev.ProductID,
			Query:    strings.ToLower(p.Title),
		})
	}
	return samples
}

// Result 是一个策略在一批样本上的均值指标。
type Result struct {
	NDCG      float64 `json:"ndcg"`
	MRR       float64 `json:"mrr"`
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
	Samples   int     `json:"samples"`
}

// Evaluator 批量回放评估器。样本间相互独立，可并发执行；
// 指标按均值聚合，与样本完成顺序无关。
type Evaluator struct {
	K           int // @k 截断，默认 10
	Concurrency int // 并发样本数，0 表示串行语义下的默认并发 8
}

// NewEvaluator 按默认参数构建评估器。
func NewEvaluator() *Evaluator {
	return &Evaluator{K: DefaultK, Concurrency: 8}
}

func (e *Evaluator) k() int {
	if e.K > 0 {
		return e.K
	}
	return DefaultK
}

// Evaluate 对单个策略回放整批样本。任一样本排序失败则整体失败，
// 保证指标不会在部分样本缺失时静默偏移。
func (e *Evaluator) Evaluate(ctx context.Context, s Strategy, samples []Sample) (Result, error) {
	if len(samples) == 0 {
		return Result{}, nil
	}
	k := e.k()

	var (
		mu   sync.Mutex
		sums Result
	)
	eg, c := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		eg.SetLimit(e.Concurrency)
	}

	for _, sample := range samples {
		sample := sample
		eg.Go(func() error {
			rankedIDs, err := s.Rank(c, sample.Query, sample.UserID)
			if err != nil {
				return err
			}
			relevant := map[string]bool{sample.TargetID: true}
			rel := make([]float64, len(rankedIDs))
			for i, id := range rankedIDs {
				if id == sample.TargetID {
					rel[i] = 1
				}
			}

			ndcg := NDCGAtK(rel, k)
			mrr := MRRAtK(rankedIDs, relevant, k)
			recall := RecallAtK(rankedIDs, relevant, k)
			precision := PrecisionAtK(rankedIDs, relevant, k)

			mu.Lock()
			sums.NDCG += ndcg
			sums.MRR += mrr
			sums.Recall += recall
			sums.Precision += precision
			sums.Samples++
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	n := float64(sums.Samples)
	return Result{
		NDCG:      sums.NDCG / n,
		MRR:       sums.MRR / n,
		Recall:    sums.Recall / n,
		Precision: sums.Precision / n,
		Samples:   sums.Samples,
	}, nil
}

// Ablation 依次评估一组策略，返回按策略名索引的结果。
func (e *Evaluator) Ablation(ctx context.Context, strategies []Strategy, samples []Sample) (map[string]Result, error) {
	out := make(map[string]Result, len(strategies))
	for _, s := range strategies {
		r, err := e.Evaluate(ctx, s, samples)
		if err != nil {
			return nil, err
		}
		out[s.Name()] = r
	}
	return out, nil
}

// Failure 是一条回放样本的命中明细，用于错误分析。
type Failure struct {
	UserID     string `json:"user_id"`
	TargetID   string `json:"target_product_id"`
	Query      string `json:"query"`
	TargetRank int    `json:"target_rank"` // 未命中时为 k+1
	Missed     bool   `json:"missed"`
}

// ErrorSummary 是整批样本的错误分析汇总。
type ErrorSummary struct {
	TotalSamples   int     `json:"total_samples"`
	MissRate       float64 `json:"miss_rate"`
	MeanTargetRank float64 `json:"mean_target_rank"`
}

// AnalyzeErrors 回放整批样本并统计目标命中位置。
// 返回的明细按（未命中优先，目标排名降序）排列，最差的样本排在最前。
func (e *Evaluator) AnalyzeErrors(ctx context.Context, s Strategy, samples []Sample) ([]Failure, ErrorSummary, error) {
	k := e.k()
	failures := make([]Failure, 0, len(samples))

	for _, sample := range samples {
		rankedIDs, err := s.Rank(ctx, sample.Query, sample.UserID)
		if err != nil {
			return nil, ErrorSummary{}, err
		}
		rank := k + 1
		missed := true
		for i, id := range rankedIDs {
			if id == sample.TargetID {
				rank = i + 1
				missed = false
				break
			}
		}
		failures = append(failures, Failure{
			UserID:     sample.UserID,
			TargetID:   sample.TargetID,
			Query:      sample.Query,
			TargetRank: rank,
			Missed:     missed,
		})
	}

	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].Missed != failures[j].Missed {
			return failures[i].Missed
		}
		return failures[i].TargetRank > failures[j].TargetRank
	})

	summary := ErrorSummary{TotalSamples: len(failures)}
	if len(failures) > 0 {
		misses, rankSum := 0, 0
		for _, f := range failures {
			if f.Missed {
				misses++
			}
			rankSum += f.TargetRank
		}
		summary.MissRate = float64(misses) / float64(len(failures))
		summary.MeanTargetRank = float64(rankSum) / float64(len(failures))
	}
	return failures, summary, nil
}
