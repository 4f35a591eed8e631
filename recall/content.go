package recall

import (
	"context"
	"sort"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pkg/utils"
)

// 内容打分的各维度权重。
// 一个在所有维度都命中、且偏好计数为 1 的商品恰好得 1.0 分
// (0.3 + 0.2 + 0.15 + 0.2 + 0.15)。
const (
	weightCategory   = 0.3
	weightBrand      = 0.2
	weightCondition  = 0.15
	weightPriceFit   = 0.2  // 价格落在偏好区间内
	weightPriceMiss  = 0.05 // 有价格区间但未命中：降权，不排除
	weightLocation   = 0.15
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户偏好某些属性的商品，推荐具有相同属性的其他商品"
//
// 算法流程：
//  1. 取用户画像（优先用 rctx.Profile，否则从 ProfileStore 读）
//  2. 对每个在架商品按类目/品牌/成色/价格/城市五个维度加权求和
//  3. 丢弃总分 <= 0 的商品，按分数降序排序（同分按商品 ID 升序，保证确定性）
//  4. 截断到 TopK
//
// 没有画像时返回空结果，由调用方走 Fallback。
type ContentRecall struct {
	Catalog  core.CatalogReader
	Profiles core.ProfileStore

	// TopK 返回 TopK 个商品；= 0 时使用 rctx.Limit（再为 0 时用默认值）；< 0 表示不截断
	TopK int
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	// 1. 取用户画像
	profile := rctx.Profile
	if profile == nil && r.Profiles != nil {
		p, err := r.Profiles.GetProfile(ctx, rctx.UserID)
		if err != nil {
			if core.IsProfileNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		profile = p
	}
	if profile.Empty() {
		return nil, nil
	}

	// 2. 全量在架商品打分
	products, err := r.Catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	type scoredProduct struct {
		id    string
		score float64
	}
	scores := make([]scoredProduct, 0, len(products))
	for _, prod := range products {
		if prod == nil || !prod.IsActive {
			continue
		}
		score := Score(profile, prod)
		if score > 0 {
			scores = append(scores, scoredProduct{id: prod.ID, score: score})
		}
	}

	// 3. 降序排序，同分按 ID 升序保证确定性
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	if topK := resolveTopK(r.TopK, rctx.Limit); topK > 0 && len(scores) > topK {
		scores = scores[:topK]
	}

	// 4. 封装结果
	out := make([]*core.Item, 0, len(scores))
	for _, s := range scores {
		it := core.NewItem(s.id)
		it.Score = s.score
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}

	return out, nil
}

// Score 计算一个商品对画像的内容匹配分。
// 每个维度只有在画像对应字段存在且非空时才参与：
//   - 类目：categoryWeights[key] * 0.3（未命中为 0）
//   - 品牌：brandWeights[brand] * 0.2
//   - 成色：conditionWeights[condition] * 0.15
//   - 价格：区间内 +0.2；有区间但区间外 +0.05；无区间不加分
//   - 城市：命中偏好城市 +0.15
func Score(profile *core.UserProfile, prod *core.Product) float64 {
	if profile == nil || prod == nil {
		return 0
	}

	var score float64

	if prod.CategoryKey != "" {
		if w, ok := profile.CategoryWeights[prod.CategoryKey]; ok {
			score += float64(w) * weightCategory
		}
	}

	if prod.Brand != "" {
		if w, ok := profile.BrandWeights[prod.Brand]; ok {
			score += float64(w) * weightBrand
		}
	}

	if prod.Condition != "" {
		if w, ok := profile.ConditionWeights[prod.Condition]; ok {
			score += float64(w) * weightCondition
		}
	}

	if profile.HasPriceRange {
		if profile.InPriceRange(prod.Price) {
			score += weightPriceFit
		} else {
			score += weightPriceMiss
		}
	}

	if profile.PrefersCity(prod.City) {
		score += weightLocation
	}

	return score
}
