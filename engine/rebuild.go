package engine

import (
	"context"

	"github.com/marketkit/promorank/core"
)

// 重建操作是显式触发的维护任务，不在请求路径上执行。
// 同一用户的并发重建由下层 singleflight 串行化；失败由外部调度器重跑。

// RebuildProfile 全量重建一个用户的画像并使其缓存失效。
// 用户没有任何可解析交互时返回 ErrProfileNotFound（调用方可忽略，读取时会走兜底）。
func (e *Engine) RebuildProfile(ctx context.Context, userID string) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	_, err := e.builder.Rebuild(ctx, userID)
	if err != nil && !core.IsProfileNotFound(err) {
		return err
	}
	e.invalidateCache(ctx, userID)
	return err
}

// RebuildSimilarities 全量重建一个用户与其他全体用户的相似度并使其缓存失效。
// O(U) 扫描，ctx 取消/超时会中断；已写入的记录保留，任务可重跑。
func (e *Engine) RebuildSimilarities(ctx context.Context, userID string) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	if err := e.rebuilder.Rebuild(ctx, userID); err != nil {
		return err
	}
	e.invalidateCache(ctx, userID)
	return nil
}

// RebuildDirty 从待重建队列取出最多 n 个用户，依次重建画像和相似度。
// 返回成功处理的用户数；单个用户失败记入 firstErr 并继续处理后面的用户。
// 需要通过 WithDirtyQueue 配置队列，否则返回 ErrStoreNotSupported。
func (e *Engine) RebuildDirty(ctx context.Context, n int) (int, error) {
	if e.dirty == nil {
		return 0, core.ErrStoreNotSupported
	}

	userIDs, err := e.dirty.Drain(ctx, n)
	if err != nil {
		return 0, err
	}

	done := 0
	var firstErr error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		if err := e.RebuildProfile(ctx, userID); err != nil && !core.IsProfileNotFound(err) {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := e.RebuildSimilarities(ctx, userID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}
	return done, firstErr
}
