package store

import (
	"context"
	"time"

	"github.com/marketkit/promorank/core"
)

// DirtyAdapter 是基于 core.KeyValueStore 的待重建队列适配器。
// 实现 core.DirtyQueue 接口，用户以标记时间为分数存入有序集合。
//
// 存储布局：
//
//	待重建队列：SortedSet {Key}，member = userID，score = 标记时间
type DirtyAdapter struct {
	kv core.KeyValueStore

	// Key 是队列的存储 key
	Key string
}

// NewDirtyAdapter 创建一个基于 core.KeyValueStore 的待重建队列适配器。
func NewDirtyAdapter(kv core.KeyValueStore, key string) *DirtyAdapter {
	if key == "" {
		key = "dirty:users"
	}
	return &DirtyAdapter{
		kv:  kv,
		Key: key,
	}
}

// Mark 实现 core.DirtyQueue 接口。重复标记只刷新时间戳。
// 分数取负，让 ZRange 的降序遍历变成"先标记先取出"。
func (a *DirtyAdapter) Mark(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	return a.kv.ZAdd(ctx, a.Key, -float64(at.UnixMilli()), userID)
}

// Drain 实现 core.DirtyQueue 接口。取出最多 n 个待重建用户并从队列移除。
func (a *DirtyAdapter) Drain(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	userIDs, err := a.kv.ZRange(ctx, a.Key, 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return []string{}, nil
	}

	if err := a.kv.ZRem(ctx, a.Key, userIDs...); err != nil {
		return nil, err
	}
	return userIDs, nil
}

// 确保实现 core.DirtyQueue 接口
var _ core.DirtyQueue = (*DirtyAdapter)(nil)
