package core

import "context"

// Encoder 是文本向量化的领域接口（编码器 oracle）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（model、encoder）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 契约：
//   - 输出固定维度、L2 归一化的向量
//   - fit 时编码商品文本与 serve 时编码查询必须使用同一实现，
//     跨版本的向量空间不匹配由调用方负责避免
//   - 相同输入必须产生相同输出（确定性）
//
// 实现：
//   - model.WordVectorEncoder：本地词向量表编码器
//   - encoder.OpenAIEncoder：OpenAI 兼容 API 的远程编码器
type Encoder interface {
	// Name 返回编码器名称（用于日志/监控）
	Name() string

	// Dimension 返回输出向量维度
	Dimension() int

	// Encode 将文本编码为 L2 归一化的稠密向量
	Encode(ctx context.Context, text string) ([]float64, error)
}
