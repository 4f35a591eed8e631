package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/marketkit/promorank/core"
)

// SimilarityAdapter 是基于 core.Store 的用户相似度适配器。
// 实现 core.SimilarityStore 接口，相似度记录按 (userID, *) 方向聚合存储。
//
// 存储布局：
//
//	用户相似度列表：{KeyPrefix}:{userID}
type SimilarityAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewSimilarityAdapter 创建一个基于 core.Store 的用户相似度适配器。
func NewSimilarityAdapter(s core.Store, keyPrefix string) *SimilarityAdapter {
	if keyPrefix == "" {
		keyPrefix = "similarity"
	}
	return &SimilarityAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

// PutSimilarity 实现 core.SimilarityStore 接口。同方向 (UserID, OtherID) 的旧记录被覆盖。
func (a *SimilarityAdapter) PutSimilarity(ctx context.Context, sim *core.UserSimilarity) error {
	if sim == nil || sim.UserID == "" || sim.OtherID == "" {
		return core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInvalidInput, "similarity: empty user id")
	}

	sims, err := a.listRaw(ctx, sim.UserID)
	if err != nil {
		return err
	}

	replaced := false
	for i, s := range sims {
		if s.OtherID == sim.OtherID {
			sims[i] = sim
			replaced = true
			break
		}
	}
	if !replaced {
		sims = append(sims, sim)
	}

	data, err := json.Marshal(sims)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.KeyPrefix+":"+sim.UserID, data)
}

// ListByUser 实现 core.SimilarityStore 接口。
// 按 Score 降序返回，同分按 OtherID 升序保证顺序稳定。
func (a *SimilarityAdapter) ListByUser(ctx context.Context, userID string) ([]*core.UserSimilarity, error) {
	sims, err := a.listRaw(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].Score != sims[j].Score {
			return sims[i].Score > sims[j].Score
		}
		return sims[i].OtherID < sims[j].OtherID
	})
	return sims, nil
}

func (a *SimilarityAdapter) listRaw(ctx context.Context, userID string) ([]*core.UserSimilarity, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":"+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []*core.UserSimilarity{}, nil
		}
		return nil, err
	}

	var sims []*core.UserSimilarity
	if err := json.Unmarshal(data, &sims); err != nil {
		return nil, err
	}
	return sims, nil
}

// 确保实现 core.SimilarityStore 接口
var _ core.SimilarityStore = (*SimilarityAdapter)(nil)
