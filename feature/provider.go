// Package feature 提供离线特征聚合（FeatureContext）与排序特征行构建。
package feature

import "context"

// Provider 是排序特征取数的领域接口。
//
// 设计原则：
//   - 排序节点只依赖此接口，不关心特征来自内存聚合还是在线特征库
//   - 查不到的 ID 一律按冷启动返回 0，不报缺 key 错误
//
// 实现：
//   - Context：fit 时从交互流聚合的内存实现（默认）
//   - FeastProvider：Feast 在线特征库实现
type Provider interface {
	// Name 返回特征来源名称（用于日志/监控）
	Name() string

	// Popularity 返回商品热度，[0,1]；未知商品返回 0
	Popularity(ctx context.Context, productID string) (float64, error)

	// CategoryPreference 返回用户对类目的偏好权重，[0,1]；未知用户/类目返回 0
	CategoryPreference(ctx context.Context, userID, category string) (float64, error)
}
