package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TFServingModel 通过 TensorFlow Serving REST API（端口 8501）实现 RankModel。
//
// 请求：POST {endpoint}/v1/models/{model}:predict
// 请求体：{"instances": [[...], ...], "signature_name": "..."}
// 响应体：{"predictions": [...]}，标量或数组（数组取首元素）。
//
// 与 RPCModel 一样，排序服务是一个不透明打分黑箱：
// 输入固定列序的特征矩阵，输出与行数对齐的分数向量。
type TFServingModel struct {
	Endpoint      string // 例如 "http://localhost:8501"
	ModelName     string
	ModelVersion  string // 为空时使用最新版本
	SignatureName string // 默认 "serving_default"

	httpClient *http.Client
}

// NewTFServingModel 创建 TF Serving 排序模型客户端。
func NewTFServingModel(endpoint, modelName string, timeout time.Duration) *TFServingModel {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TFServingModel{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (m *TFServingModel) Name() string {
	return "tfserving:" + m.ModelName
}

// Score 批量打分，返回分数与输入行数不一致时报错。
func (m *TFServingModel) Score(matrix [][]float64) ([]float64, error) {
	if len(matrix) == 0 {
		return []float64{}, nil
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", m.Endpoint, m.ModelName)
	if m.ModelVersion != "" {
		url = fmt.Sprintf("%s/v1/models/%s/versions/%s:predict", m.Endpoint, m.ModelName, m.ModelVersion)
	}

	body := map[string]interface{}{"instances": matrix}
	if m.SignatureName != "" {
		body["signature_name"] = m.SignatureName
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tf serving request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tf serving error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var result struct {
		Predictions []interface{} `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	scores := make([]float64, 0, len(result.Predictions))
	for _, pred := range result.Predictions {
		switch v := pred.(type) {
		case float64:
			scores = append(scores, v)
		case []interface{}:
			if len(v) == 0 {
				return nil, fmt.Errorf("empty prediction row")
			}
			fv, ok := v[0].(float64)
			if !ok {
				return nil, fmt.Errorf("unexpected prediction element type: %T", v[0])
			}
			scores = append(scores, fv)
		default:
			return nil, fmt.Errorf("unexpected prediction type: %T", pred)
		}
	}
	if len(scores) != len(matrix) {
		return nil, fmt.Errorf("score count mismatch: got %d, want %d", len(scores), len(matrix))
	}
	return scores, nil
}

var _ RankModel = (*TFServingModel)(nil)
