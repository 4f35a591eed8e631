package filter

import (
	"context"
	"encoding/json"

	"github.com/marketkit/promorank/core"
)

// HiddenFilter 过滤掉用户主动隐藏的商品（"不感兴趣"）。
// 隐藏列表由业务侧写入，引擎只读。
//
// 存储布局：{KeyPrefix}:{userID}，值为商品 ID 的 JSON 数组。
type HiddenFilter struct {
	Store core.Store

	// KeyPrefix 是存储 key 的前缀，空时用 "user:hidden"
	KeyPrefix string
}

func (f *HiddenFilter) Name() string {
	return "filter.hidden"
}

func (f *HiddenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Store == nil {
		return false, nil
	}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "user:hidden"
	}

	data, err := f.Store.Get(ctx, prefix+":"+rctx.UserID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}

	var hidden []string
	if err := json.Unmarshal(data, &hidden); err != nil {
		return false, err
	}
	for _, id := range hidden {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
