// Package engine 把检索、排序、个性化、推荐与分群装配成一个可服务的搜索引擎。
//
// 设计原则：
//   - 一次 Fit 构建一个完整的模型代次（Generation），原子发布
//   - 服务路径只读：并发请求共享同一代次，不加锁
//   - Fit 期间旧代次继续服务，构建完成后整体切换，不存在半可见状态
package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/eval"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/filter"
	"github.com/rushteam/searchkit/index"
	"github.com/rushteam/searchkit/model"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/rank"
	"github.com/rushteam/searchkit/recall"
	"github.com/rushteam/searchkit/rerank"
	"github.com/rushteam/searchkit/segment"
)

// ErrNotReady 在任何代次发布之前的服务调用返回。
var ErrNotReady = core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotReady, "engine: no generation fitted")

// Options 是引擎的静态配置，zero value 即可用。
type Options struct {
	Alpha                 float64 // 混合检索权重，默认 0.5
	TopK                  int     // 检索候选数，默认 10
	PersonalizationWeight float64 // 个性化权重，默认 0.3
	HistorySize           int     // 共现历史截断，默认 20
	DriftWindow           int     // 漂移窗口长度，默认 200
	FilterExpr            string  // 候选过滤 CEL 表达式，空则不过滤
}

func (o Options) withDefaults() Options {
	if o.Alpha == 0 {
		o.Alpha = recall.DefaultAlpha
	}
	if o.TopK <= 0 {
		o.TopK = recall.DefaultTopK
	}
	if o.PersonalizationWeight == 0 {
		o.PersonalizationWeight = rerank.DefaultPersonalizationWeight
	}
	if o.HistorySize <= 0 {
		o.HistorySize = recall.DefaultHistorySize
	}
	if o.DriftWindow <= 0 {
		o.DriftWindow = eval.DefaultDriftWindow
	}
	return o
}

// Generation 是一次 Fit 产出的全部派生结构，构建后只读。
type Generation struct {
	Products     map[string]*core.Product
	IDs          []string // 目录输入顺序
	BM25         *index.BM25
	Dense        *index.Dense
	Features     *feature.Context
	CoOccurrence *recall.CoOccurrence
	Segments     *segment.Segmenter
	Users        *model.UserEmbeddingTable
	Drift        *eval.DriftDetector

	hybrid *recall.Hybrid
	search *pipeline.Pipeline
}

// Engine 是搜索/推荐引擎。Encoder 必填；Model 可为空（无排序模型时
// 直接用混合检索分进入个性化重排）。
type Engine struct {
	encoder core.Encoder
	model   model.RankModel
	opts    Options

	gen atomic.Pointer[Generation]
}

// New 构建引擎，Fit 之前所有服务调用返回 NOT_READY。
func New(encoder core.Encoder, rankModel model.RankModel, opts Options) *Engine {
	return &Engine{
		encoder: encoder,
		model:   rankModel,
		opts:    opts.withDefaults(),
	}
}

// Fit 从目录与交互事件构建新代次并原子发布。
// 各派生结构之间无依赖的并发构建；任何一步失败则整代放弃，旧代次不受影响。
func (e *Engine) Fit(ctx context.Context, products []core.Product, events []core.InteractionEvent) error {
	gen := &Generation{
		Products: make(map[string]*core.Product, len(products)),
		IDs:      make([]string, 0, len(products)),
	}
	for i := range products {
		p := products[i]
		gen.Products[p.ID] = &p
		gen.IDs = append(gen.IDs, p.ID)
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		corpus := make([][]string, len(products))
		for i, p := range products {
			corpus[i] = index.Tokenize(p.Text())
		}
		bm25 := index.NewBM25()
		bm25.Fit(corpus)
		gen.BM25 = bm25
		return nil
	})

	eg.Go(func() error {
		dense, err := index.FitDense(egCtx, e.encoder, products)
		if err != nil {
			return err
		}
		gen.Dense = dense

		// 用户向量依赖商品向量，串在同一个 goroutine 里
		users := model.NewUserEmbeddingTable(dense.Dimension())
		users.Fit(events, dense.Vectors())
		gen.Users = users
		return nil
	})

	eg.Go(func() error {
		gen.Features = feature.BuildContext(products, events)
		return nil
	})

	eg.Go(func() error {
		co := recall.NewCoOccurrence()
		co.HistorySize = e.opts.HistorySize
		co.Fit(events)
		gen.CoOccurrence = co
		return nil
	})

	eg.Go(func() error {
		seg := segment.NewSegmenter()
		seg.Fit(events, productsByID(products))
		gen.Segments = seg
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	gen.Drift = eval.NewDriftDetector(gen.Products, e.opts.DriftWindow)
	e.assemble(gen)
	e.gen.Store(gen)
	return nil
}

// assemble 基于已构建的派生结构装配服务流水线。
func (e *Engine) assemble(gen *Generation) {
	gen.hybrid = recall.NewHybrid(gen.BM25, gen.Dense, e.encoder, gen.IDs)
	gen.hybrid.TopK = e.opts.TopK
	gen.hybrid.Alpha = e.opts.Alpha

	nodes := []pipeline.Node{gen.hybrid}
	if e.opts.FilterExpr != "" {
		nodes = append(nodes, &filter.FilterNode{
			Filters: []filter.Filter{&filter.ExprFilter{Expr: e.opts.FilterExpr}},
		})
	}
	if e.model != nil {
		nodes = append(nodes, &rank.ModelNode{
			Model:    e.model,
			Products: gen.Products,
			Provider: gen.Features,
		})
	}
	personalize := rerank.NewPersonalizeNode(gen.Users, gen.Dense.Vectors())
	personalize.Weight = e.opts.PersonalizationWeight
	nodes = append(nodes, personalize, &rerank.TopNNode{N: e.opts.TopK})

	gen.search = &pipeline.Pipeline{Nodes: nodes}
}

// Generation 返回当前已发布的代次，未发布时返回 nil。
func (e *Engine) Generation() *Generation {
	return e.gen.Load()
}

// Search 执行一次搜索：混合检索 → 排序 → 个性化重排，返回有序候选。
// 曝光结果的类目会写入漂移窗口。
func (e *Engine) Search(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	gen := e.gen.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	items, err := gen.search.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	gen.observeServed(items)
	return items, nil
}

// Recommend 返回用户的共现推荐，冷启动用户返回空列表。
func (e *Engine) Recommend(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	gen := e.gen.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	items, err := gen.CoOccurrence.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	gen.observeServed(items)
	return items, nil
}

// SegmentOf 返回用户分群明细，未分群用户返回 NOT_FOUND。
func (e *Engine) SegmentOf(userID string) (segment.Detail, error) {
	gen := e.gen.Load()
	if gen == nil {
		return segment.Detail{}, ErrNotReady
	}
	d, ok := gen.Segments.Details(userID)
	if !ok {
		return segment.Detail{}, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound, "engine: user not segmented: "+userID)
	}
	return d, nil
}

// DriftScore 返回当前代次曝光分布相对目录基线的漂移分数。
func (e *Engine) DriftScore() (float64, error) {
	gen := e.gen.Load()
	if gen == nil {
		return 0, ErrNotReady
	}
	return gen.Drift.Score(), nil
}

func (gen *Generation) observeServed(items []*core.Item) {
	if gen.Drift == nil || len(items) == 0 {
		return
	}
	categories := make([]string, 0, len(items))
	for _, it := range items {
		if p, ok := gen.Products[it.ID]; ok && p != nil {
			categories = append(categories, p.Category)
		}
	}
	gen.Drift.Observe(categories...)
}

func productsByID(products []core.Product) map[string]*core.Product {
	out := make(map[string]*core.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out
}
