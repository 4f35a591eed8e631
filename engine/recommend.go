package engine

import (
	"context"
	"sort"

	"github.com/marketkit/promorank/boost"
	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/recall"
)

// GetContentBasedRecommendations 返回内容召回的推荐列表：
// 用户画像对全量在架商品逐维打分，降序截断。
// 没有画像或上游读取失败时走热门兜底。
func (e *Engine) GetContentBasedRecommendations(
	ctx context.Context,
	userID string,
	limit int,
) ([]string, error) {
	if err := validate(userID, limit); err != nil {
		return nil, err
	}
	if ids, ok := e.fromCache(ctx, flavorContent, userID, limit); ok {
		return ids, nil
	}

	items, err := e.contentItems(ctx, userID, limit, limit)
	if err != nil || len(items) == 0 {
		// 缺画像和上游失败同等对待：降级，不失败
		return e.fallback(ctx, limit)
	}

	ids := itemIDs(items, limit)
	e.putCache(ctx, flavorContent, userID, limit, ids)
	return ids, nil
}

// GetCollaborativeRecommendations 返回协同召回的推荐列表：
// 邻居商品候选按收藏数降序，推广注入后截断。
// 没有相似度记录或上游读取失败时走热门兜底。
func (e *Engine) GetCollaborativeRecommendations(
	ctx context.Context,
	userID string,
	limit int,
) ([]string, error) {
	if err := validate(userID, limit); err != nil {
		return nil, err
	}
	if ids, ok := e.fromCache(ctx, flavorCollaborative, userID, limit); ok {
		return ids, nil
	}

	// 不预截断：推广注入在截断之前，低位的推广商品也要有机会占位
	items, err := e.collaborativeItems(ctx, userID, limit, -1)
	if err != nil || len(items) == 0 {
		return e.fallback(ctx, limit)
	}

	items = boost.Inject(ctx, e.deps.Boosts, e.policy, e.now(), items)
	ids := itemIDs(items, limit)
	e.putCache(ctx, flavorCollaborative, userID, limit, ids)
	return ids, nil
}

// GetHybridRecommendations 返回混合推荐列表：
// 内容列表与协同列表按位置加权融合（内容 0.6 / 协同 0.4），
// 去重后按综合分降序截断，再做推广注入。
// 两路都为空或都失败时走热门兜底。
func (e *Engine) GetHybridRecommendations(
	ctx context.Context,
	userID string,
	limit int,
) ([]string, error) {
	if err := validate(userID, limit); err != nil {
		return nil, err
	}
	if ids, ok := e.fromCache(ctx, flavorHybrid, userID, limit); ok {
		return ids, nil
	}

	// 任一路失败按空列表处理，另一路仍然参与融合
	contentItems, err := e.contentItems(ctx, userID, limit, limit)
	if err != nil {
		contentItems = nil
	}
	collabItems, err := e.collaborativeItems(ctx, userID, limit, limit)
	if err != nil {
		collabItems = nil
	}
	if len(contentItems) == 0 && len(collabItems) == 0 {
		return e.fallback(ctx, limit)
	}

	blended := BlendByPosition(
		itemIDs(contentItems, limit),
		itemIDs(collabItems, limit),
		limit,
		e.cfg.ContentWeight(),
		e.cfg.CollaborativeWeight(),
	)

	items := make([]*core.Item, 0, len(blended))
	for _, id := range blended {
		items = append(items, core.NewItem(id))
	}
	items = boost.Inject(ctx, e.deps.Boosts, e.policy, e.now(), items)

	ids := itemIDs(items, limit)
	e.putCache(ctx, flavorHybrid, userID, limit, ids)
	return ids, nil
}

// BlendByPosition 把两个有序 ID 列表按位置加权融合成一个列表。
//
// 打分规则：列表 A 第 i 位贡献 (limit-i)*weightA/limit，
// 列表 B 第 i 位贡献 (limit-i)*weightB/limit；同一商品出现在两个列表时分数相加。
// 去重以首次出现为准，按综合分降序排序（同分保持首次出现顺序），截断到 limit。
func BlendByPosition(a, b []string, limit int, weightA, weightB float64) []string {
	if limit <= 0 {
		return nil
	}

	scores := make(map[string]float64, len(a)+len(b))
	order := make([]string, 0, len(a)+len(b))

	accumulate := func(list []string, weight float64) {
		for i, id := range list {
			if i >= limit {
				break
			}
			if _, seen := scores[id]; !seen {
				order = append(order, id)
			}
			scores[id] += float64(limit-i) * weight / float64(limit)
		}
	}
	accumulate(a, weightA)
	accumulate(b, weightB)

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// contentItems 跑一次内容召回。
func (e *Engine) contentItems(
	ctx context.Context,
	userID string,
	limit, topK int,
) ([]*core.Item, error) {
	src := &recall.ContentRecall{
		Catalog:  e.deps.Catalog,
		Profiles: e.deps.Profiles,
		TopK:     topK,
	}
	return src.Recall(ctx, &core.RecommendContext{UserID: userID, Limit: limit})
}

// collaborativeItems 跑一次协同召回。
func (e *Engine) collaborativeItems(
	ctx context.Context,
	userID string,
	limit, topK int,
) ([]*core.Item, error) {
	src := &recall.CollaborativeRecall{
		Interactions:      e.deps.Interactions,
		Similarities:      e.deps.Similarities,
		Catalog:           e.deps.Catalog,
		NeighborThreshold: e.cfg.NeighborThreshold(),
		TopK:              topK,
	}
	return src.Recall(ctx, &core.RecommendContext{UserID: userID, Limit: limit})
}

