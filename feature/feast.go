package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// Feast 特征引用约定：特征视图 product_stats / user_category_stats 由
// 离线物化任务写入在线库，与内存聚合（Context）口径一致。
const (
	feastPopularityFeature = "product_stats:popularity"
	feastCategoryPrefix    = "user_category_stats:pref_"
)

// FeastProvider 是 Feast Feature Store 在线库的 Provider 实现。
//
// Feast 是一个开源的 Feature Store，提供在线/离线特征存储与物化。
// 此实现使用官方 Go SDK 的 gRPC 客户端访问 Feature Server。
//
// 使用场景：多实例部署时共享一份物化特征，替代每实例的内存聚合。
// 任何取数错误都应被调用方按冷启动降级为 0（见 BuildRow）。
type FeastProvider struct {
	client  *feastsdk.GrpcClient
	project string
}

// NewFeastProvider 连接 Feast Feature Server（gRPC，默认端口 6565）。
func NewFeastProvider(host string, port int, project string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}
	return &FeastProvider{client: client, project: project}, nil
}

func (p *FeastProvider) Name() string { return "feast" }

// Popularity 实现 Provider：从在线库取 product_stats:popularity。
func (p *FeastProvider) Popularity(ctx context.Context, productID string) (float64, error) {
	return p.getOnlineFeature(ctx, feastPopularityFeature, feastsdk.Row{
		"product_id": feastsdk.StrVal(productID),
	})
}

// CategoryPreference 实现 Provider：从在线库取 user_category_stats:pref_<category>。
func (p *FeastProvider) CategoryPreference(ctx context.Context, userID, category string) (float64, error) {
	if category == "" {
		return 0.0, nil
	}
	return p.getOnlineFeature(ctx, feastCategoryPrefix+category, feastsdk.Row{
		"user_id": feastsdk.StrVal(userID),
	})
}

func (p *FeastProvider) getOnlineFeature(ctx context.Context, featureRef string, entity feastsdk.Row) (float64, error) {
	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{featureRef},
		Entities: []feastsdk.Row{entity},
		Project:  p.project,
	}
	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return 0.0, fmt.Errorf("feast get online features: %w", err)
	}
	rows := resp.Rows()
	if len(rows) == 0 {
		return 0.0, nil
	}
	val, ok := rows[0][featureRef]
	if !ok || val == nil {
		return 0.0, nil
	}
	return valueToFloat64(val), nil
}

// valueToFloat64 将 SDK 的 *types.Value 转为 float64；缺失/非数值按冷启动取 0。
func valueToFloat64(v *feasttypes.Value) float64 {
	switch val := v.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal)
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val)
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val)
	default:
		return 0.0
	}
}

// Close 关闭客户端。官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理。
func (p *FeastProvider) Close() error {
	return nil
}
