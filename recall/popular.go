package recall

import (
	"context"
	"sort"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pipeline"
	"github.com/marketkit/promorank/pkg/utils"
)

// Popular 是热门召回源：按收藏数降序的在架商品，用作无个性化信号时的兜底。
// - 如果配置了 KeyValueStore + Key，优先走 ZRange（离线维护的热门榜有序集合）
// - 否则全量扫描 CatalogReader.ActiveProducts 按收藏数排序
// Popular 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Popular struct {
	Catalog core.CatalogReader

	Store core.KeyValueStore // 可选：榜单存储
	Key   string             // 榜单 key，例如 "hot:products"

	// TopK 返回 TopK 个商品；<= 0 时使用 rctx.Limit，再 <= 0 时用默认值
	TopK int
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 && rctx != nil {
		topK = rctx.Limit
	}
	if topK <= 0 {
		topK = 20
	}

	// 优先从榜单有序集合读取
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(topK)-1)
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, len(members))
			for i, id := range members {
				it := core.NewItem(id)
				it.Score = float64(len(members) - i) // 名次越靠前分越高
				it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
				out = append(out, it)
			}
			return out, nil
		}
	}

	// 兜底：全量扫描按收藏数排序
	if r.Catalog == nil {
		return nil, nil
	}
	products, err := r.Catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*core.Product, 0, len(products))
	for _, prod := range products {
		if prod != nil && prod.IsActive {
			active = append(active, prod)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].FavoriteCount != active[j].FavoriteCount {
			return active[i].FavoriteCount > active[j].FavoriteCount
		}
		return active[i].ID < active[j].ID
	})
	if len(active) > topK {
		active = active[:topK]
	}

	out := make([]*core.Item, 0, len(active))
	for _, prod := range active {
		it := core.NewItem(prod.ID)
		it.Score = float64(prod.FavoriteCount)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// RefreshRanking 把在架商品按收藏数写入榜单有序集合（离线维护任务）。
func (r *Popular) RefreshRanking(ctx context.Context) error {
	if r.Store == nil || r.Key == "" || r.Catalog == nil {
		return core.ErrStoreNotSupported
	}
	products, err := r.Catalog.ActiveProducts(ctx)
	if err != nil {
		return err
	}
	for _, prod := range products {
		if prod == nil || !prod.IsActive {
			continue
		}
		if err := r.Store.ZAdd(ctx, r.Key, float64(prod.FavoriteCount), prod.ID); err != nil {
			return err
		}
	}
	return nil
}
