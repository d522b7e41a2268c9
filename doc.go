// Package searchkit 是一个商品搜索与推荐工具包（Search Kit）：
// BM25 词法检索 + 稠密向量检索的混合召回、特征排序、个性化重排、
// 共现推荐、用户分群与离线评估。
//
// 设计要点：
// - Pipeline-first: 检索逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Generation-first: 每次 fit 产出完整只读代次，原子切换，服务路径无锁
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测
package searchkit

import "github.com/rushteam/searchkit/pipeline"

// 轻量 facade：便于用户直接 import "searchkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
