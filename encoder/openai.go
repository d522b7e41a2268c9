// Package encoder 提供远程编码器实现（core.Encoder 的基础设施层）。
package encoder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rushteam/searchkit/model"
)

// OpenAIEncoder 是 OpenAI 兼容 Embedding API 的远程编码器。
// 任何兼容 /v1/embeddings 的服务（OpenAI、本地推理网关等）都可接入。
//
// 契约要求输出 L2 归一化：API 返回的向量会在本地再做一次归一化，
// 保证与本地编码器（model.WordVectorEncoder）行为一致。
type OpenAIEncoder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// Config 是 OpenAIEncoder 的配置。
type Config struct {
	APIKey     string
	BaseURL    string // 可选，指向兼容服务
	Model      string // 模型名，例如 "text-embedding-3-small"
	Dimensions int    // 输出维度
}

// NewOpenAIEncoder 创建远程编码器。
func NewOpenAIEncoder(cfg *Config) *OpenAIEncoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEncoder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		dim:    cfg.Dimensions,
	}
}

func (e *OpenAIEncoder) Name() string { return "openai" }

func (e *OpenAIEncoder) Dimension() int { return e.dim }

// Encode 实现 core.Encoder。
func (e *OpenAIEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dim > 0 {
		req.Dimensions = e.dim
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	return model.L2Normalize(vec), nil
}
