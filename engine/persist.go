package engine

import (
	"context"
	"encoding/json"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/eval"
	"github.com/rushteam/searchkit/feature"
	"github.com/rushteam/searchkit/index"
	"github.com/rushteam/searchkit/model"
	"github.com/rushteam/searchkit/recall"
	"github.com/rushteam/searchkit/segment"
)

// DefaultGenerationKey 是代次工件在 Store 中的默认键。
const DefaultGenerationKey = "searchkit:generation"

// generationSnapshot 是一整个代次的可序列化形态。
// BM25 不直接落盘：加载时从商品文本确定性重建，结构等价。
type generationSnapshot struct {
	Products     []core.Product                `json:"products"`
	Vectors      map[string][]float64          `json:"vectors"`
	Dim          int                           `json:"dim"`
	Popularity   map[string]float64            `json:"popularity"`
	CategoryPref map[string]map[string]float64 `json:"category_pref"`
	CoOccurrence recall.CoOccurrenceSnapshot   `json:"cooccurrence"`
	Segments     segment.Snapshot              `json:"segments"`
	Users        map[string][]float64          `json:"users"`
	UserDim      int                           `json:"user_dim"`
}

// Save 把当前代次序列化到 Store。未发布代次时返回 NOT_READY。
func (e *Engine) Save(ctx context.Context, s core.Store, key string) error {
	gen := e.gen.Load()
	if gen == nil {
		return ErrNotReady
	}
	if key == "" {
		key = DefaultGenerationKey
	}

	products := make([]core.Product, 0, len(gen.IDs))
	for _, id := range gen.IDs {
		products = append(products, *gen.Products[id])
	}
	snap := generationSnapshot{
		Products:     products,
		Vectors:      gen.Dense.Vectors(),
		Dim:          gen.Dense.Dimension(),
		Popularity:   gen.Features.PopularityTable(),
		CategoryPref: gen.Features.CategoryPreferenceTable(),
		CoOccurrence: gen.CoOccurrence.Snapshot(),
		Segments:     gen.Segments.Snapshot(),
		Users:        gen.Users.Vectors,
		UserDim:      gen.Users.Dim,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}

// Load 从 Store 重建代次并原子发布，等价于一次不经过 Fit 的上线。
func (e *Engine) Load(ctx context.Context, s core.Store, key string) error {
	if key == "" {
		key = DefaultGenerationKey
	}
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	var snap generationSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	gen := &Generation{
		Products: make(map[string]*core.Product, len(snap.Products)),
		IDs:      make([]string, 0, len(snap.Products)),
	}
	corpus := make([][]string, len(snap.Products))
	for i := range snap.Products {
		p := snap.Products[i]
		gen.Products[p.ID] = &p
		gen.IDs = append(gen.IDs, p.ID)
		corpus[i] = index.Tokenize(p.Text())
	}

	bm25 := index.NewBM25()
	bm25.Fit(corpus)
	gen.BM25 = bm25
	gen.Dense = index.NewDense(gen.IDs, snap.Vectors, snap.Dim)
	gen.Features = feature.RestoreContext(snap.Popularity, snap.CategoryPref)
	gen.CoOccurrence = recall.RestoreCoOccurrence(snap.CoOccurrence)
	gen.Segments = segment.Restore(snap.Segments)

	users := model.NewUserEmbeddingTable(snap.UserDim)
	if snap.Users != nil {
		users.Vectors = snap.Users
	}
	gen.Users = users

	gen.Drift = eval.NewDriftDetector(gen.Products, e.opts.DriftWindow)
	e.assemble(gen)
	e.gen.Store(gen)
	return nil
}
