// Package profile 实现用户偏好画像的整体重建。
//
// 画像重建是批处理任务，不是请求路径的一部分：
//   - O(全部交互历史) 的全量扫描，由外部调度器（或 DirtyQueue 消费者）显式触发
//   - 每次整体重算并覆盖旧画像，不做增量合并
//   - 同一用户的并发重建通过 singleflight 串行化，避免写坏画像
package profile

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marketkit/promorank/core"
)

// Builder 把一个用户的全部交互历史聚合成偏好画像。
type Builder struct {
	Interactions core.InteractionReader
	Catalog      core.CatalogReader
	Profiles     core.ProfileStore

	// group 按 userID 合并并发重建：同一用户同时只有一次重算在跑，
	// 并发调用共享同一次结果（最后写入者即最新历史，满足 last-writer-wins）。
	group singleflight.Group
}

// Rebuild 重建一个用户的画像并落盘。
//
// 流程：
//  1. 读取该用户全部交互事件
//  2. 解析出事件关联的商品（SEARCH 等无商品事件跳过）
//  3. 逐商品累积类目/品牌/成色计数、价格区间、城市集合
//  4. 整体覆盖写入 ProfileStore
//
// 没有任何可解析交互时不产出画像，返回 ErrProfileNotFound；
// 调用方（引擎）据此走 Fallback，不视为失败。
func (b *Builder) Rebuild(ctx context.Context, userID string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}

	v, err, _ := b.group.Do(userID, func() (any, error) {
		return b.rebuild(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.UserProfile), nil
}

func (b *Builder) rebuild(ctx context.Context, userID string) (*core.UserProfile, error) {
	events, err := b.Interactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 收集事件关联的商品 ID（保留重复：同一商品交互多次计数多次）
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e.HasProduct() {
			ids = append(ids, e.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil, core.ErrProfileNotFound
	}

	// 批量解析商品；未知 ID 被目录方跳过
	products, err := b.Catalog.ProductsByIDs(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*core.Product, len(products))
	for _, prod := range products {
		if prod != nil {
			byID[prod.ID] = prod
		}
	}

	prof := core.NewUserProfile(userID)
	for _, id := range ids {
		if prod, ok := byID[id]; ok {
			prof.AddSample(prod)
		}
	}
	if prof.Empty() {
		return nil, core.ErrProfileNotFound
	}
	prof.UpdatedAt = time.Now()

	if b.Profiles != nil {
		if err := b.Profiles.PutProfile(ctx, prof); err != nil {
			return nil, err
		}
	}
	return prof, nil
}

// uniq 去重但保持首次出现顺序。
func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
