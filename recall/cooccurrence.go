package recall

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// DefaultHistorySize 是参与共现统计的单用户历史截断长度。
const DefaultHistorySize = 20

// CoOccurrence 是基于物品共现的协同召回源。
//
// 训练（Fit）：
//   - 只保留隐式正反馈事件（click/cart/purchase），按时间排序
//   - 每个用户的历史按首次出现去重，再截断为最近 HistorySize 条
//   - 截断后历史内的无序对计数累加到对称共现矩阵
//
// 推理（Recommend）：
//   - 对用户截断历史内每个物品，取其共现邻居并累计共现次数
//   - 排除该用户交互过的全部物品（含截断前的完整历史）
//   - 分数 = 共现次数 / 本次候选集内的最大次数
//   - 次数相同按物品 ID 升序，保证结果确定
type CoOccurrence struct {
	HistorySize int

	// counts[a][b] 为物品 a 与 b 在同一截断历史中共同出现的次数
	counts map[string]map[string]int
	// histories 为每个用户去重截断后的历史（推理时的种子）
	histories map[string][]string
	// seen 为每个用户交互过的完整物品集合（推荐排除集）
	seen map[string]map[string]bool
}

// NewCoOccurrence 构建未训练的共现召回源。
func NewCoOccurrence() *CoOccurrence {
	return &CoOccurrence{
		HistorySize: DefaultHistorySize,
		counts:      map[string]map[string]int{},
		histories:   map[string][]string{},
		seen:        map[string]map[string]bool{},
	}
}

func (c *CoOccurrence) Name() string        { return "recall.cooccurrence" }
func (c *CoOccurrence) Kind() pipeline.Kind { return pipeline.KindRecall }

// Fit 从交互事件重建共现矩阵，重复调用会整体覆盖。
func (c *CoOccurrence) Fit(events []core.InteractionEvent) {
	size := c.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}

	positives := make([]core.InteractionEvent, 0, len(events))
	for _, ev := range events {
		if core.IsImplicitPositive(ev.Event) {
			positives = append(positives, ev)
		}
	}
	sort.SliceStable(positives, func(i, j int) bool {
		return positives[i].Timestamp.Before(positives[j].Timestamp)
	})

	counts := map[string]map[string]int{}
	histories := map[string][]string{}
	seen := map[string]map[string]bool{}

	for _, ev := range positives {
		if seen[ev.UserID] == nil {
			seen[ev.UserID] = map[string]bool{}
		}
		if !seen[ev.UserID][ev.ProductID] {
			seen[ev.UserID][ev.ProductID] = true
			histories[ev.UserID] = append(histories[ev.UserID], ev.ProductID)
		}
	}

	for user, hist := range histories {
		if len(hist) > size {
			hist = hist[len(hist)-size:]
			histories[user] = hist
		}
		for i := 0; i < len(hist); i++ {
			for j := i + 1; j < len(hist); j++ {
				a, b := hist[i], hist[j]
				if counts[a] == nil {
					counts[a] = map[string]int{}
				}
				if counts[b] == nil {
					counts[b] = map[string]int{}
				}
				counts[a][b]++
				counts[b][a]++
			}
		}
	}

	c.counts = counts
	c.histories = histories
	c.seen = seen
}

// Process 实现 Node 接口。
func (c *CoOccurrence) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return c.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (c *CoOccurrence) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	userID := ""
	if rctx != nil {
		userID = rctx.UserID
	}
	topK := core.Param(rctx, "top_k", DefaultTopK)
	return c.Recommend(userID, topK), nil
}

// Recommend 返回用户的共现推荐，冷启动用户返回空列表。
func (c *CoOccurrence) Recommend(userID string, topK int) []*core.Item {
	hist := c.histories[userID]
	if len(hist) == 0 {
		return []*core.Item{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	exclude := c.seen[userID]

	scores := map[string]int{}
	for _, pid := range hist {
		for other, n := range c.counts[pid] {
			if exclude[other] {
				continue
			}
			scores[other] += n
		}
	}
	if len(scores) == 0 {
		return []*core.Item{}
	}

	max := 0
	ids := make([]string, 0, len(scores))
	for id, n := range scores {
		ids = append(ids, id)
		if n > max {
			max = n
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if topK < len(ids) {
		ids = ids[:topK]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = float64(scores[id]) / float64(max)
		it.PutLabel("reason", utils.Label{Value: "item_cooccurrence", Source: "recall"})
		out = append(out, it)
	}
	return out
}

// History 返回用户去重截断后的历史，测试与调试用。
func (c *CoOccurrence) History(userID string) []string {
	return append([]string(nil), c.histories[userID]...)
}

// CoOccurrenceSnapshot 是共现召回源的可序列化状态。
type CoOccurrenceSnapshot struct {
	HistorySize int                       `json:"history_size"`
	Counts      map[string]map[string]int `json:"counts"`
	Histories   map[string][]string       `json:"histories"`
	Seen        map[string][]string       `json:"seen"`
}

// Snapshot 导出当前状态用于持久化。
func (c *CoOccurrence) Snapshot() CoOccurrenceSnapshot {
	seen := make(map[string][]string, len(c.seen))
	for user, set := range c.seen {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		seen[user] = ids
	}
	return CoOccurrenceSnapshot{
		HistorySize: c.HistorySize,
		Counts:      c.counts,
		Histories:   c.histories,
		Seen:        seen,
	}
}

// RestoreCoOccurrence 从持久化状态重建共现召回源。
func RestoreCoOccurrence(snap CoOccurrenceSnapshot) *CoOccurrence {
	c := NewCoOccurrence()
	if snap.HistorySize > 0 {
		c.HistorySize = snap.HistorySize
	}
	if snap.Counts != nil {
		c.counts = snap.Counts
	}
	if snap.Histories != nil {
		c.histories = snap.Histories
	}
	for user, ids := range snap.Seen {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		c.seen[user] = set
	}
	return c
}
