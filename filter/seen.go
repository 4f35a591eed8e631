package filter

import (
	"context"
	"time"

	"github.com/marketkit/promorank/core"
)

// SeenFilter 过滤掉用户近期已经交互过的商品：看过/收藏过的商品不再推荐。
// 候选来自召回源时通常已经排除过交互商品（协同召回），
// 但融合、推广注入和热门兜底会重新引入，这里统一兜住。
type SeenFilter struct {
	Interactions core.InteractionReader

	// Window 只统计该时长内的交互；<= 0 时统计全部历史
	Window time.Duration
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Interactions == nil {
		return false, nil
	}

	events, err := f.Interactions.ListByUser(ctx, rctx.UserID)
	if err != nil {
		return false, err
	}

	var cutoff time.Time
	if f.Window > 0 {
		cutoff = rctx.At().Add(-f.Window)
	}

	for _, ev := range events {
		if ev == nil || ev.ProductID != item.ID {
			continue
		}
		if f.Window > 0 && ev.CreatedAt.Before(cutoff) {
			continue
		}
		return true, nil
	}
	return false, nil
}
