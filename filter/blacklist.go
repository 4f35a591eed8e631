package filter

import (
	"context"
	"encoding/json"

	"github.com/marketkit/promorank/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的商品。
// 运营/审核侧维护黑名单（被举报下架、违规商品等），引擎只读。
type BlacklistFilter struct {
	// ProductIDs 是内存中的黑名单商品 ID 列表
	ProductIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单商品 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(productIDs []string, store BlacklistStore, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ProductIDs: productIDs,
		Store:      store,
		Key:        key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	// 从内存列表检查
	for _, id := range f.ProductIDs {
		if item.ID == id {
			return true, nil
		}
	}

	// 从 Store 检查
	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err == nil {
			for _, id := range blacklist {
				if item.ID == id {
					return true, nil
				}
			}
		}
	}

	return false, nil
}

// StoreBlacklist 将 core.Store 适配为 BlacklistStore（JSON 数组编码）。
type StoreBlacklist struct {
	store core.Store
}

// NewStoreBlacklist 创建一个 core.Store 黑名单适配器。
func NewStoreBlacklist(s core.Store) *StoreBlacklist {
	return &StoreBlacklist{store: s}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreBlacklist) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
