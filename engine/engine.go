// Package engine 是推荐引擎的门面：把召回、混排、推广注入、兜底
// 组装成对外的五个操作，屏蔽内部的 Pipeline 细节。
//
// 对外操作：
//   - GetContentBasedRecommendations：内容召回（画像 x 商品打分）
//   - GetCollaborativeRecommendations：协同召回（邻居商品 + 推广注入）
//   - GetHybridRecommendations：混合推荐（位置加权融合 + 推广注入）
//   - RebuildProfile / RebuildSimilarities：画像与相似度的显式重建
//
// 降级语义：缺画像/缺相似度/上游读取失败都走热门兜底，请求不失败；
// 只有非法输入（limit <= 0、空 userID）返回校验错误。
package engine

import (
	"context"
	"time"

	"github.com/marketkit/promorank/boost"
	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/profile"
	"github.com/marketkit/promorank/recall"
	"github.com/marketkit/promorank/similarity"
)

// Deps 汇集引擎依赖的全部外部协作方。
// 接口都定义在 core 包，store 包提供基于 MemoryStore/RedisStore 的实现。
type Deps struct {
	Interactions core.InteractionReader
	Catalog      core.CatalogReader
	Boosts       core.BoostReader
	Profiles     core.ProfileStore
	Similarities core.SimilarityStore
}

// Engine 是推荐引擎门面。通过 New 创建，零值不可用。
type Engine struct {
	deps Deps
	cfg  core.RecommendConfig

	// 结果缓存；nil 表示不缓存
	cache    core.Store
	cacheTTL time.Duration

	// 推广注入策略；nil 时用 MultiplicativePolicy
	policy boost.Policy

	// 热门榜单有序集合（可选），兜底优先走它
	hotStore core.KeyValueStore
	hotKey   string

	builder   *profile.Builder
	rebuilder *similarity.Rebuilder
	dirty     core.DirtyQueue

	// nowFunc 是时间基准来源（推广时间窗、缓存时间戳）
	nowFunc func() time.Time
}

// now 返回请求时间基准。
func (e *Engine) now() time.Time {
	if e.nowFunc != nil {
		return e.nowFunc()
	}
	return time.Now()
}

// Option 配置 Engine。
type Option func(*Engine)

// WithConfig 覆盖默认的推荐配置。
func WithConfig(cfg core.RecommendConfig) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithCache 启用结果缓存。ttl <= 0 时用配置的 CacheTTL。
func WithCache(store core.Store, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = store
		e.cacheTTL = ttl
	}
}

// WithBoostPolicy 覆盖推广注入策略（默认按档位复制）。
func WithBoostPolicy(p boost.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithHotList 配置热门榜单有序集合，兜底召回优先从它读取。
func WithHotList(kv core.KeyValueStore, key string) Option {
	return func(e *Engine) {
		e.hotStore = kv
		e.hotKey = key
	}
}

// WithDirtyQueue 配置待重建队列，RebuildDirty 从中消费。
func WithDirtyQueue(q core.DirtyQueue) Option {
	return func(e *Engine) {
		e.dirty = q
	}
}

// WithNow 覆盖时间基准来源（测试用）。
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.nowFunc = now
	}
}

// New 创建推荐引擎。
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		deps: deps,
		cfg:  &core.DefaultRecommendConfig{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheTTL <= 0 {
		e.cacheTTL = e.cfg.CacheTTL()
	}

	e.builder = &profile.Builder{
		Interactions: deps.Interactions,
		Catalog:      deps.Catalog,
		Profiles:     deps.Profiles,
	}
	e.rebuilder = &similarity.Rebuilder{
		Interactions:    deps.Interactions,
		Similarities:    deps.Similarities,
		RetainThreshold: e.cfg.RetainThreshold(),
	}
	return e
}

// validate 检查请求输入，非法输入立刻拒绝而不是静默取默认值。
func validate(userID string, limit int) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	if limit <= 0 {
		return core.ErrInvalidLimit
	}
	return nil
}

// fallback 返回热门兜底列表。兜底本身失败时才向上返回错误。
func (e *Engine) fallback(ctx context.Context, limit int) ([]string, error) {
	pop := &recall.Popular{
		Catalog: e.deps.Catalog,
		Store:   e.hotStore,
		Key:     e.hotKey,
		TopK:    limit,
	}
	items, err := pop.Recall(ctx, &core.RecommendContext{Limit: limit})
	if err != nil {
		return nil, err
	}
	return itemIDs(items, limit), nil
}

// itemIDs 提取商品 ID 并截断到 limit。
func itemIDs(items []*core.Item, limit int) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ids = append(ids, it.ID)
		if len(ids) == limit {
			break
		}
	}
	return ids
}
