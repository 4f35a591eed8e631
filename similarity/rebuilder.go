package similarity

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marketkit/promorank/core"
)

// Rebuilder 对一个用户做相似度全量重建：与交互日志中出现过的每个其他
// 用户算一次 Jaccard，超过保留阈值的记录落盘。
//
// 工程特征：
//  - O(U) 全量扫描，每次调用遍历系统里的所有用户
//  - 维护任务，不是请求路径；通过 context 支持取消/超时
//  - 低于阈值的记录不写入；已存在的旧低分记录不回收（接受陈旧的折中）
//  - 同一用户的并发重建通过 singleflight 串行化
type Rebuilder struct {
	Interactions core.InteractionReader
	Similarities core.SimilarityStore

	// RetainThreshold 落盘的保留阈值；<= 0 时用默认值 0.1。
	// 这是存储开销的折中，不是正确性阈值。
	RetainThreshold float64

	// OnlyForward 为 true 时只写 (u, other) 方向。
	// 默认（false）同时写 (u, other) 和 (other, u) 两个方向，
	// 保证任一方向的 ListByUser 查询都能命中。
	OnlyForward bool

	group singleflight.Group
}

// Rebuild 重建一个用户与全体其他用户的相似度。
// 遍历过程中 ctx 取消/超时会立刻停止并返回；已写入的记录保留（任务幂等，可重跑）。
func (r *Rebuilder) Rebuild(ctx context.Context, userID string) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}

	_, err, _ := r.group.Do(userID, func() (any, error) {
		return nil, r.rebuild(ctx, userID)
	})
	return err
}

func (r *Rebuilder) rebuild(ctx context.Context, userID string) error {
	threshold := r.RetainThreshold
	if threshold <= 0 {
		threshold = 0.1
	}

	own, err := interactionSet(ctx, r.Interactions, userID)
	if err != nil {
		return err
	}

	others, err := r.Interactions.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, other := range others {
		if other == userID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		otherSet, err := interactionSet(ctx, r.Interactions, other)
		if err != nil {
			continue
		}

		score := Jaccard(own, otherSet)
		if score <= threshold {
			// 阈值以下不写；旧记录若存在则保持陈旧
			continue
		}

		if err := r.Similarities.PutSimilarity(ctx, &core.UserSimilarity{
			UserID:         userID,
			OtherID:        other,
			Score:          score,
			LastCalculated: now,
		}); err != nil {
			return err
		}
		if !r.OnlyForward {
			if err := r.Similarities.PutSimilarity(ctx, &core.UserSimilarity{
				UserID:         other,
				OtherID:        userID,
				Score:          score,
				LastCalculated: now,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Between 按需计算两个用户的相似度（不落盘）。
func (r *Rebuilder) Between(ctx context.Context, userA, userB string) (float64, error) {
	setA, err := interactionSet(ctx, r.Interactions, userA)
	if err != nil {
		return 0, err
	}
	setB, err := interactionSet(ctx, r.Interactions, userB)
	if err != nil {
		return 0, err
	}
	return Jaccard(setA, setB), nil
}

// interactionSet 取用户交互过的商品 ID 集合（无商品的事件跳过）。
func interactionSet(
	ctx context.Context,
	reader core.InteractionReader,
	userID string,
) (map[string]struct{}, error) {
	events, err := reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.HasProduct() {
			set[e.ProductID] = struct{}{}
		}
	}
	return set, nil
}
