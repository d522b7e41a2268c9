package core

import (
	"strings"
	"time"
)

// Product 是商品目录中的一条记录。
// 目录由外部加载器完成校验与去重（ID 唯一、Price 为有限值），
// 核心层只读使用，一个模型代次（fit 周期）内不发生变更。
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       float64
}

// Text 返回用于索引的归一化文本：title + description，去首尾空白并小写。
func (p Product) Text() string {
	return strings.ToLower(strings.TrimSpace(p.Title + " " + p.Description))
}

// EventType 是用户行为事件类型。
type EventType string

const (
	EventView     EventType = "view"
	EventClick    EventType = "click"
	EventCart     EventType = "cart"
	EventPurchase EventType = "purchase"
)

// InteractionEvent 是一条带时间戳的用户行为事件，按用户内时间升序排列。
type InteractionEvent struct {
	UserID    string
	ProductID string
	Event     EventType
	Timestamp time.Time
}

// EventWeight 返回事件的隐式权重：view=1, click=2, cart=3, purchase=4。
// 未知事件类型权重为 0。
func EventWeight(e EventType) float64 {
	switch e {
	case EventView:
		return 1.0
	case EventClick:
		return 2.0
	case EventCart:
		return 3.0
	case EventPurchase:
		return 4.0
	}
	return 0.0
}

// IsImplicitPositive 判断事件是否为隐式正反馈。
// 只有 click / cart / purchase 参与个性化、训练与评估；view 不参与
// （但 view 仍以权重 1 参与用户向量与类目偏好的聚合，见 feature 与 model 包）。
func IsImplicitPositive(e EventType) bool {
	switch e {
	case EventClick, EventCart, EventPurchase:
		return true
	}
	return false
}

// RelevanceLabel 返回事件对应的训练相关性标签：view=0, click=1, cart=2, purchase=3。
// 标签构造供外部训练器使用，训练本身不在核心范围内。
func RelevanceLabel(e EventType) float64 {
	switch e {
	case EventClick:
		return 1.0
	case EventCart:
		return 2.0
	case EventPurchase:
		return 3.0
	}
	return 0.0
}

// PositiveHistory 按用户聚合隐式正反馈的商品序列（按时间升序，保留重复）。
// events 须已按时间升序排列。
func PositiveHistory(events []InteractionEvent) map[string][]string {
	out := make(map[string][]string)
	for _, ev := range events {
		if !IsImplicitPositive(ev.Event) {
			continue
		}
		out[ev.UserID] = append(out[ev.UserID], ev.ProductID)
	}
	return out
}
