package core

import "github.com/rushteam/searchkit/pkg/utils"

// RecommendContext 承载一次请求的用户/查询/场景信息，贯穿整个 Pipeline 透传。
// 服务期只读：同一模型代次上的多个并发请求共享只读状态，互不影响。
type RecommendContext struct {
	UserID string // 使用 string 类型（通用，支持所有 ID 格式）
	Query  string // 自由文本查询；纯推荐场景可为空

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数：alpha、top_k、personalization_weight 等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Param 读取请求级参数，缺失时返回默认值。
func Param[T any](rctx *RecommendContext, key string, def T) T {
	if rctx == nil || rctx.Params == nil {
		return def
	}
	if v, ok := rctx.Params[key]; ok {
		if tv, ok := v.(T); ok {
			return tv
		}
	}
	return def
}
