package filter

import (
	"context"

	"github.com/marketkit/promorank/core"
)

// ActiveFilter 过滤掉已下架的商品：只有在架商品可以被推荐或推广。
// 以 CatalogReader 为准（候选可能来自陈旧的相似度/榜单数据）。
type ActiveFilter struct {
	Catalog core.CatalogReader
}

func (f *ActiveFilter) Name() string {
	return "filter.active"
}

func (f *ActiveFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Catalog == nil {
		return false, nil
	}

	products, err := f.Catalog.ProductsByIDs(ctx, []string{item.ID})
	if err != nil {
		return false, err
	}
	for _, prod := range products {
		if prod != nil && prod.ID == item.ID {
			return !prod.IsActive, nil
		}
	}
	// 目录不认识的 ID 一律过滤
	return true, nil
}
