package model

// RankModel 是排序阶段的最小抽象（排序 oracle）：输入特征矩阵，输出每行一个可比较的分数。
// 具体实现可以是本地模型（线性/GBDT 权重）或远程 RPC 服务。
//
// 契约：
//   - 行为 (query, user, candidate) 特征行，列顺序固定为 feature.Columns
//   - 必须接受任意行数的批量输入
//   - 分数越高越相关；不保证有界，也不保证跨模型版本可比
//   - 任何特征数量或顺序的变化都会使已训练的模型失效
type RankModel interface {
	Name() string
	Score(matrix [][]float64) ([]float64, error)
}
