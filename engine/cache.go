package engine

import (
	"context"
	"encoding/json"
)

// 结果缓存：key 按用户 + 口味划分，value 带 limit，TTL 过期淘汰。
// 缓存是短时效的读加速，不是一致性机制；重建操作会主动失效对应用户的条目。

const (
	flavorContent       = "content"
	flavorCollaborative = "collaborative"
	flavorHybrid        = "hybrid"
)

// cachedResult 是缓存的值。limit 不同的请求不复用（列表长度和混合打分都依赖 limit）。
type cachedResult struct {
	Limit      int      `json:"limit"`
	ProductIDs []string `json:"product_ids"`
}

func cacheKey(flavor, userID string) string {
	return "rec:" + flavor + ":" + userID
}

// fromCache 读缓存；未命中/limit 不匹配/读取失败都按未命中处理。
func (e *Engine) fromCache(ctx context.Context, flavor, userID string, limit int) ([]string, bool) {
	if e.cache == nil {
		return nil, false
	}
	data, err := e.cache.Get(ctx, cacheKey(flavor, userID))
	if err != nil {
		return nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	if cached.Limit != limit {
		return nil, false
	}
	return cached.ProductIDs, true
}

// putCache 写缓存；写入失败忽略（缓存不影响请求结果）。
func (e *Engine) putCache(ctx context.Context, flavor, userID string, limit int, ids []string) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(cachedResult{Limit: limit, ProductIDs: ids})
	if err != nil {
		return
	}
	ttl := int(e.cacheTTL.Seconds())
	_ = e.cache.Set(ctx, cacheKey(flavor, userID), data, ttl)
}

// invalidateCache 删除一个用户的全部缓存条目（画像/相似度重建后调用）。
func (e *Engine) invalidateCache(ctx context.Context, userID string) {
	if e.cache == nil {
		return
	}
	for _, flavor := range []string{flavorContent, flavorCollaborative, flavorHybrid} {
		_ = e.cache.Delete(ctx, cacheKey(flavor, userID))
	}
}
