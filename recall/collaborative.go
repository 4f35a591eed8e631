package recall

import (
	"context"
	"sort"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pkg/utils"
)

// CollaborativeRecall 是基于用户协同的召回源（User-based CF, u2i）。
//
// 核心思想："兴趣相似的用户，喜欢相似的商品"
//
// 算法流程：
//  1. 读取当前用户的相似度记录（离线由 similarity.Rebuilder 产出，按分数降序）
//  2. 对每个相似度 > NeighborThreshold 的邻居，取其交互过的商品集合
//  3. 剔除当前用户自己交互过的商品，得到去重候选集
//  4. 候选解析为在架商品，按收藏数降序排序（同收藏数按 ID 升序）
//
// 没有相似度记录时返回空结果，由调用方走 Fallback。
// 注意：相似度是离线计算好的（u2u -> u2i 工程拆分），请求路径不做全量扫描。
type CollaborativeRecall struct {
	Interactions core.InteractionReader
	Similarities core.SimilarityStore
	Catalog      core.CatalogReader

	// NeighborThreshold 采用邻居的相似度阈值；<= 0 时用默认值 0.3
	NeighborThreshold float64

	// TopK 返回 TopK 个商品；= 0 时使用 rctx.Limit（再为 0 时用默认值）；< 0 表示不截断
	TopK int
}

func (r *CollaborativeRecall) Name() string {
	return "recall.collaborative"
}

func (r *CollaborativeRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Similarities == nil || r.Interactions == nil || r.Catalog == nil ||
		rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	// 1. 相似度记录（已按分数降序）
	sims, err := r.Similarities.ListByUser(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(sims) == 0 {
		return nil, nil
	}

	threshold := r.NeighborThreshold
	if threshold <= 0 {
		threshold = 0.3
	}

	// 2. 当前用户自己的交互商品集合（用于剔除已见过的）
	own, err := interactedProducts(ctx, r.Interactions, rctx.UserID)
	if err != nil {
		return nil, err
	}

	// 3. 汇总邻居的商品（无序去重候选集）
	candidates := make(map[string]struct{})
	for _, sim := range sims {
		if sim == nil || sim.Score <= threshold {
			continue
		}
		neighbor, err := interactedProducts(ctx, r.Interactions, sim.OtherID)
		if err != nil {
			continue
		}
		for id := range neighbor {
			if _, seen := own[id]; seen {
				continue
			}
			candidates[id] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// 4. 解析为在架商品，按收藏数降序
	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	products, err := r.Catalog.ProductsByIDs(ctx, ids)
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

	if topK := resolveTopK(r.TopK, rctx.Limit); topK > 0 && len(active) > topK {
		active = active[:topK]
	}

	out := make([]*core.Item, 0, len(active))
	for _, prod := range active {
		it := core.NewItem(prod.ID)
		it.Score = float64(prod.FavoriteCount)
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		out = append(out, it)
	}

	return out, nil
}

// interactedProducts 取用户交互过的商品 ID 集合（无商品的事件跳过）。
func interactedProducts(
	ctx context.Context,
	reader core.InteractionReader,
	userID string,
) (map[string]struct{}, error) {
	events, err := reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.HasProduct() {
			set[e.ProductID] = struct{}{}
		}
	}
	return set, nil
}
