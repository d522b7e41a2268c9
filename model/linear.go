package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// LinearModel 是按固定列顺序加权求和的本地排序模型。
//
// 预测原理：score = Bias + sum(Weights[i] * X[i])
//
// 它是排序 oracle 契约的最小本地实现：权重通常由外部训练器产出
// （训练不在本库范围内），以 JSON 形式加载。分数不做 Sigmoid 压缩，
// 保持"不保证有界"的 oracle 语义。
type LinearModel struct {
	Bias    float64   // 偏置项
	Weights []float64 // 按 feature.Columns 顺序排列的特征权重
}

// LoadLinearModel 从 JSON 文件加载权重。
// 格式：{"bias": 0.1, "weights": [0.5, 0.3, ...]}
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias    float64   `json:"bias"`
		Weights []float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &LinearModel{Bias: raw.Bias, Weights: raw.Weights}, nil
}

func (m *LinearModel) Name() string { return "linear" }

// Score 对批量特征矩阵逐行打分。列数与权重数不一致视为契约破坏，返回错误。
func (m *LinearModel) Score(matrix [][]float64) ([]float64, error) {
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != len(m.Weights) {
			return nil, fmt.Errorf("feature count mismatch: row has %d, model expects %d", len(row), len(m.Weights))
		}
		s := m.Bias
		for j, v := range row {
			s += m.Weights[j] * v
		}
		scores[i] = s
	}
	return scores, nil
}
