package boost

import (
	"context"
	"time"

	"github.com/marketkit/promorank/core"
)

// Inject 取 now 时刻生效的推广并用 policy 重排 items。
// 同一商品多条推广时保留档位更高的；policy 为 nil 时用 MultiplicativePolicy。
// 推广读取失败时降级为原列表（推广是增强，不能让请求失败）。
func Inject(
	ctx context.Context,
	reader core.BoostReader,
	policy Policy,
	now time.Time,
	items []*core.Item,
) []*core.Item {
	if reader == nil || len(items) == 0 {
		return items
	}

	boosts, err := reader.ActiveBoosts(ctx, now)
	if err != nil {
		return items
	}

	active := make(map[string]*core.ProductBoost, len(boosts))
	for _, b := range boosts {
		if b == nil || !b.CurrentlyActive(now) {
			continue
		}
		if old, ok := active[b.ProductID]; ok && old.Level >= b.Level {
			continue
		}
		active[b.ProductID] = b
	}
	if len(active) == 0 {
		return items
	}

	if policy == nil {
		policy = MultiplicativePolicy{}
	}
	return policy.Apply(items, active)
}
