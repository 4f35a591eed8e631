package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/marketkit/promorank/core"
)

// CatalogAdapter 是基于 core.KeyValueStore 的商品目录适配器。
// 实现 core.CatalogReader 接口，商品投影以 Hash 存储，字段为商品 ID。
//
// 存储布局：
//
//	商品投影：Hash {KeyPrefix}:products，field = productID
type CatalogAdapter struct {
	kv core.KeyValueStore

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewCatalogAdapter 创建一个基于 core.KeyValueStore 的商品目录适配器。
func NewCatalogAdapter(kv core.KeyValueStore, keyPrefix string) *CatalogAdapter {
	if keyPrefix == "" {
		keyPrefix = "catalog"
	}
	return &CatalogAdapter{
		kv:        kv,
		KeyPrefix: keyPrefix,
	}
}

func (a *CatalogAdapter) productsKey() string {
	return a.KeyPrefix + ":products"
}

// ActiveProducts 实现 core.CatalogReader 接口。
// 只返回在架商品，按商品 ID 升序保证遍历顺序稳定。
func (a *CatalogAdapter) ActiveProducts(ctx context.Context) ([]*core.Product, error) {
	fields, err := a.kv.HGetAll(ctx, a.productsKey())
	if err != nil {
		return nil, err
	}

	products := make([]*core.Product, 0, len(fields))
	for _, data := range fields {
		var prod core.Product
		if err := json.Unmarshal(data, &prod); err != nil {
			return nil, err
		}
		if prod.IsActive {
			products = append(products, &prod)
		}
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// ProductsByIDs 实现 core.CatalogReader 接口。未知 ID 直接跳过，不报错。
func (a *CatalogAdapter) ProductsByIDs(ctx context.Context, ids []string) ([]*core.Product, error) {
	products := make([]*core.Product, 0, len(ids))
	for _, id := range ids {
		data, err := a.kv.HGet(ctx, a.productsKey(), id)
		if err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return nil, err
		}
		var prod core.Product
		if err := json.Unmarshal(data, &prod); err != nil {
			return nil, err
		}
		products = append(products, &prod)
	}
	return products, nil
}

// PutProduct 写入/覆盖一条商品投影。
func (a *CatalogAdapter) PutProduct(ctx context.Context, prod *core.Product) error {
	if prod == nil || prod.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "catalog: empty product id")
	}
	data, err := json.Marshal(prod)
	if err != nil {
		return err
	}
	return a.kv.HSet(ctx, a.productsKey(), prod.ID, data)
}

// 确保实现 core.CatalogReader 接口
var _ core.CatalogReader = (*CatalogAdapter)(nil)
