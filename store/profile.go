package store

import (
	"context"
	"encoding/json"

	"github.com/marketkit/promorank/core"
)

// ProfileAdapter 是基于 core.Store 的用户画像适配器。
// 实现 core.ProfileStore 接口，画像整体 JSON 编码后按用户存取。
//
// 存储布局：
//
//	用户画像：{KeyPrefix}:{userID}
type ProfileAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewProfileAdapter 创建一个基于 core.Store 的用户画像适配器。
func NewProfileAdapter(s core.Store, keyPrefix string) *ProfileAdapter {
	if keyPrefix == "" {
		keyPrefix = "profile"
	}
	return &ProfileAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

// GetProfile 实现 core.ProfileStore 接口。画像不存在时返回 ErrProfileNotFound。
func (a *ProfileAdapter) GetProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	key := a.KeyPrefix + ":" + userID
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrProfileNotFound
		}
		return nil, err
	}

	var profile core.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PutProfile 实现 core.ProfileStore 接口。整体覆盖写入。
func (a *ProfileAdapter) PutProfile(ctx context.Context, profile *core.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "profile: empty user id")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.KeyPrefix+":"+profile.UserID, data)
}

// DeleteProfile 删除用户画像（用户注销/数据清理）。
func (a *ProfileAdapter) DeleteProfile(ctx context.Context, userID string) error {
	return a.store.Delete(ctx, a.KeyPrefix+":"+userID)
}

// 确保实现 core.ProfileStore 接口
var _ core.ProfileStore = (*ProfileAdapter)(nil)
