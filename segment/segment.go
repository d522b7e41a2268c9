// Package segment 基于交互历史做用户分群：
// 活跃度（事件数三分位）+ 偏好类目（众数）组合成分群标签。
package segment

import (
	"math"
	"sort"

	"github.com/rushteam/searchkit/core"
)

// 活跃度分层标签。
const (
	LowEngagement  = "low_engagement"
	MidEngagement  = "mid_engagement"
	HighEngagement = "high_engagement"
)

// UnknownSegment 是未分群用户的默认标签。
const UnknownSegment = "unknown"

// Detail 是单个用户的分群明细。
type Detail struct {
	Segment           string `json:"segment"`
	Engagement        string `json:"engagement"`
	PreferredCategory string `json:"preferred_category"`
	EventCount        int    `json:"event_count"`
}

// Segmenter 按一次拟合批次计算用户分群。
//
// 分层阈值取自当前批次事件数分布的 33/67 分位（线性插值），
// 因此同一用户在不同批次可能落入不同层级，这是按批重算的预期行为。
// 用户数不足 3 时退化为 t1=0、t2=max(event_count)。
//
// 偏好类目为该用户交互类目的众数，并列时取字典序最小的类目。
// 分群标签格式为 "{engagement}_({preferred_category})"。
type Segmenter struct {
	userToSegment map[string]string
	userDetails   map[string]Detail
	segmentCounts map[string]int
}

// NewSegmenter 构建空的分群器。
func NewSegmenter() *Segmenter {
	return &Segmenter{
		userToSegment: map[string]string{},
		userDetails:   map[string]Detail{},
		segmentCounts: map[string]int{},
	}
}

// Fit 从交互事件重建分群表，只统计隐式正反馈事件，重复调用整体覆盖。
func (s *Segmenter) Fit(events []core.InteractionEvent, products map[string]*core.Product) {
	s.userToSegment = map[string]string{}
	s.userDetails = map[string]Detail{}
	s.segmentCounts = map[string]int{}

	counts := map[string]int{}
	catCounts := map[string]map[string]int{}
	for _, ev := range events {
		if !core.IsImplicitPositive(ev.Event) {
			continue
		}
		counts[ev.UserID]++
		cat := UnknownSegment
		if p, ok := products[ev.ProductID]; ok && p != nil && p.Category != "" {
			cat = p.Category
		}
		if catCounts[ev.UserID] == nil {
			catCounts[ev.UserID] = map[string]int{}
		}
		catCounts[ev.UserID][cat]++
	}
	if len(counts) == 0 {
		return
	}

	t1, t2 := terciles(counts)

	for user, count := range counts {
		eng := engagementTier(float64(count), t1, t2)
		pref := modeCategory(catCounts[user])
		seg := eng + "_(" + pref + ")"
		s.userToSegment[user] = seg
		s.userDetails[user] = Detail{
			Segment:           seg,
			Engagement:        eng,
			PreferredCategory: pref,
			EventCount:        count,
		}
		s.segmentCounts[seg]++
	}
}

// Segment 返回用户的分群标签，未分群用户返回 "unknown"。
func (s *Segmenter) Segment(userID string) string {
	if seg, ok := s.userToSegment[userID]; ok {
		return seg
	}
	return UnknownSegment
}

// Details 返回用户分群明细，未分群用户返回 (零值, false)。
func (s *Segmenter) Details(userID string) (Detail, bool) {
	d, ok := s.userDetails[userID]
	return d, ok
}

// Segments 返回每个分群标签下的用户数。
func (s *Segmenter) Segments() map[string]int {
	out := make(map[string]int, len(s.segmentCounts))
	for k, v := range s.segmentCounts {
		out[k] = v
	}
	return out
}

// Snapshot 是分群表的可序列化状态。
type Snapshot struct {
	Details map[string]Detail `json:"details"`
}

// Snapshot 导出当前分群表用于持久化。
func (s *Segmenter) Snapshot() Snapshot {
	return Snapshot{Details: s.userDetails}
}

// Restore 从持久化状态重建分群器。
func Restore(snap Snapshot) *Segmenter {
	s := NewSegmenter()
	for user, d := range snap.Details {
		s.userDetails[user] = d
		s.userToSegment[user] = d.Segment
		s.segmentCounts[d.Segment]++
	}
	return s
}

func engagementTier(count, t1, t2 float64) string {
	switch {
	case count <= t1:
		return LowEngagement
	case count <= t2:
		return MidEngagement
	default:
		return HighEngagement
	}
}

// terciles 计算批次事件数分布的 33/67 分位阈值（线性插值）。
func terciles(counts map[string]int) (float64, float64) {
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		values = append(values, float64(c))
	}
	if len(values) < 3 {
		max := 0.0
		for _, v := range values {
			if v > max {
				max = v
			}
		}
		return 0, max
	}
	sort.Float64s(values)
	return quantile(values, 1.0/3.0), quantile(values, 2.0/3.0)
}

// quantile 对升序序列做线性插值分位数。
func quantile(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// modeCategory 返回类目众数，并列取字典序最小。
func modeCategory(counts map[string]int) string {
	if len(counts) == 0 {
		return UnknownSegment
	}
	best, bestCount := "", -1
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && cat < best) {
			best, bestCount = cat, n
		}
	}
	return best
}
