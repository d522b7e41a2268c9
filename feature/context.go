package feature

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Context 是每个 fit 周期从目录+交互流聚合一次的离线特征上下文。
//
// 聚合口径：
//   - popularity: 商品的原始交互次数 / 全目录最大次数，最热商品为 1.0；
//     零交互或未知商品查询返回 0.0，绝不报缺 key 错误
//   - categoryPref: 用户在每个类目上的事件权重和（view=1, click=2, cart=3, purchase=4），
//     按用户归一化使权重和为 1.0；无加权交互的用户映射为空，查询一律返回 0.0
//
// fit 后只读，可被任意并发请求共享。
type Context struct {
	popularity   map[string]float64
	categoryPref map[string]map[string]float64
}

// BuildContext 从目录与交互流聚合特征上下文。
// events 中引用未知商品的事件仍计入热度；类目取 "unknown"。
func BuildContext(products []core.Product, events []core.InteractionEvent) *Context {
	categoryByID := make(map[string]string, len(products))
	for _, p := range products {
		categoryByID[p.ID] = p.Category
	}

	counts := make(map[string]float64)
	maxCount := 0.0
	for _, ev := range events {
		counts[ev.ProductID]++
		if counts[ev.ProductID] > maxCount {
			maxCount = counts[ev.ProductID]
		}
	}
	popularity := make(map[string]float64, len(counts))
	if maxCount > 0 {
		for pid, c := range counts {
			popularity[pid] = c / maxCount
		}
	}

	raw := make(map[string]map[string]float64)
	totals := make(map[string]float64)
	for _, ev := range events {
		w := core.EventWeight(ev.Event)
		if w == 0 {
			continue
		}
		category, ok := categoryByID[ev.ProductID]
		if !ok {
			category = "unknown"
		}
		prefs, ok := raw[ev.UserID]
		if !ok {
			prefs = make(map[string]float64)
			raw[ev.UserID] = prefs
		}
		prefs[category] += w
		totals[ev.UserID] += w
	}
	for userID, prefs := range raw {
		total := totals[userID]
		if total == 0 {
			continue
		}
		for category := range prefs {
			prefs[category] /= total
		}
	}

	return &Context{popularity: popularity, categoryPref: raw}
}

func (c *Context) Name() string { return "memory" }

// Popularity 实现 Provider；未知商品返回 0（冷启动约定）。
func (c *Context) Popularity(_ context.Context, productID string) (float64, error) {
	return c.popularity[productID], nil
}

// CategoryPreference 实现 Provider；未知用户/类目返回 0。
func (c *Context) CategoryPreference(_ context.Context, userID, category string) (float64, error) {
	prefs, ok := c.categoryPref[userID]
	if !ok {
		return 0.0, nil
	}
	return prefs[category], nil
}

// PopularityTable 返回热度表的拷贝（持久化用）。
func (c *Context) PopularityTable() map[string]float64 {
	out := make(map[string]float64, len(c.popularity))
	for k, v := range c.popularity {
		out[k] = v
	}
	return out
}

// CategoryPreferenceTable 返回类目偏好表的拷贝（持久化用）。
func (c *Context) CategoryPreferenceTable() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(c.categoryPref))
	for userID, prefs := range c.categoryPref {
		m := make(map[string]float64, len(prefs))
		for k, v := range prefs {
			m[k] = v
		}
		out[userID] = m
	}
	return out
}

// RestoreContext 从持久化表重建特征上下文。
func RestoreContext(popularity map[string]float64, categoryPref map[string]map[string]float64) *Context {
	if popularity == nil {
		popularity = make(map[string]float64)
	}
	if categoryPref == nil {
		categoryPref = make(map[string]map[string]float64)
	}
	return &Context{popularity: popularity, categoryPref: categoryPref}
}
