package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/marketkit/promorank/core"
)

// BoostAdapter 是基于 core.KeyValueStore 的推广记录适配器。
// 实现 core.BoostReader 接口，推广记录按商品聚合后以 Hash 存储。
//
// 存储布局：
//
//	推广记录：Hash {KeyPrefix}:records，field = productID，值为该商品的推广列表
type BoostAdapter struct {
	kv core.KeyValueStore

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewBoostAdapter 创建一个基于 core.KeyValueStore 的推广记录适配器。
func NewBoostAdapter(kv core.KeyValueStore, keyPrefix string) *BoostAdapter {
	if keyPrefix == "" {
		keyPrefix = "boost"
	}
	return &BoostAdapter{
		kv:        kv,
		KeyPrefix: keyPrefix,
	}
}

func (a *BoostAdapter) recordsKey() string {
	return a.KeyPrefix + ":records"
}

// ActiveBoosts 实现 core.BoostReader 接口。
// 返回 now 时刻生效的全部推广，按商品 ID 升序保证遍历顺序稳定。
func (a *BoostAdapter) ActiveBoosts(ctx context.Context, now time.Time) ([]*core.ProductBoost, error) {
	fields, err := a.kv.HGetAll(ctx, a.recordsKey())
	if err != nil {
		return nil, err
	}

	var active []*core.ProductBoost
	for _, data := range fields {
		boosts, err := decodeBoosts(data)
		if err != nil {
			return nil, err
		}
		for _, b := range boosts {
			if b.CurrentlyActive(now) {
				active = append(active, b)
			}
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].ProductID != active[j].ProductID {
			return active[i].ProductID < active[j].ProductID
		}
		return active[i].Level > active[j].Level
	})
	return active, nil
}

// ActiveBoostsForProduct 返回单个商品在 now 时刻生效的推广。
func (a *BoostAdapter) ActiveBoostsForProduct(ctx context.Context, productID string, now time.Time) ([]*core.ProductBoost, error) {
	boosts, err := a.listByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var active []*core.ProductBoost
	for _, b := range boosts {
		if b.CurrentlyActive(now) {
			active = append(active, b)
		}
	}
	return active, nil
}

// IsBoosted 检查商品在 now 时刻是否有生效的推广。
func (a *BoostAdapter) IsBoosted(ctx context.Context, productID string, now time.Time) (bool, error) {
	active, err := a.ActiveBoostsForProduct(ctx, productID, now)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}

// Put 写入一条推广记录。同商品同类型的旧记录被覆盖。
func (a *BoostAdapter) Put(ctx context.Context, boost *core.ProductBoost) error {
	if boost == nil || boost.ProductID == "" {
		return core.NewDomainError(core.ModuleBoost, core.ErrorCodeInvalidInput, "boost: empty product id")
	}

	boosts, err := a.listByProduct(ctx, boost.ProductID)
	if err != nil {
		return err
	}

	replaced := false
	for i, b := range boosts {
		if b.Type == boost.Type {
			boosts[i] = boost
			replaced = true
			break
		}
	}
	if !replaced {
		boosts = append(boosts, boost)
	}

	return a.putByProduct(ctx, boost.ProductID, boosts)
}

// ExpireBoosts 把 EndTime 已过的记录置为 Inactive，返回本次停用的条数。
// 外部调度器周期性调用，保证过期推广不再进入注入环节。
func (a *BoostAdapter) ExpireBoosts(ctx context.Context, now time.Time) (int, error) {
	fields, err := a.kv.HGetAll(ctx, a.recordsKey())
	if err != nil {
		return 0, err
	}

	expired := 0
	for productID, data := range fields {
		boosts, err := decodeBoosts(data)
		if err != nil {
			return expired, err
		}

		changed := false
		for _, b := range boosts {
			if b.Active && b.Expired(now) {
				b.Active = false
				expired++
				changed = true
			}
		}
		if changed {
			if err := a.putByProduct(ctx, productID, boosts); err != nil {
				return expired, err
			}
		}
	}
	return expired, nil
}

func (a *BoostAdapter) listByProduct(ctx context.Context, productID string) ([]*core.ProductBoost, error) {
	data, err := a.kv.HGet(ctx, a.recordsKey(), productID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []*core.ProductBoost{}, nil
		}
		return nil, err
	}
	return decodeBoosts(data)
}

func (a *BoostAdapter) putByProduct(ctx context.Context, productID string, boosts []*core.ProductBoost) error {
	data, err := json.Marshal(boosts)
	if err != nil {
		return err
	}
	return a.kv.HSet(ctx, a.recordsKey(), productID, data)
}

func decodeBoosts(data []byte) ([]*core.ProductBoost, error) {
	var boosts []*core.ProductBoost
	if err := json.Unmarshal(data, &boosts); err != nil {
		return nil, err
	}
	return boosts, nil
}

// 确保实现 core.BoostReader 接口
var _ core.BoostReader = (*BoostAdapter)(nil)
