package store

import (
	"context"
	"encoding/json"

	"github.com/marketkit/promorank/core"
)

// InteractionAdapter 是基于 core.Store 的交互日志适配器。
// 实现 core.InteractionReader 接口，交互事件按用户聚合后 JSON 编码存储。
//
// 存储布局：
//
//	用户交互列表：{KeyPrefix}:user:{userID}
//	所有用户列表：{KeyPrefix}:users
type InteractionAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string

	// Dirty 不为 nil 时，Record 落库后把用户标记为待重建
	Dirty core.DirtyQueue
}

// NewInteractionAdapter 创建一个基于 core.Store 的交互日志适配器。
func NewInteractionAdapter(s core.Store, keyPrefix string) *InteractionAdapter {
	if keyPrefix == "" {
		keyPrefix = "interaction"
	}
	return &InteractionAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

// ListByUser 实现 core.InteractionReader 接口。用户没有记录时返回空列表。
func (a *InteractionAdapter) ListByUser(ctx context.Context, userID string) ([]*core.InteractionEvent, error) {
	key := a.KeyPrefix + ":user:" + userID
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []*core.InteractionEvent{}, nil
		}
		return nil, err
	}

	var events []*core.InteractionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListUserIDs 实现 core.InteractionReader 接口。
func (a *InteractionAdapter) ListUserIDs(ctx context.Context) ([]string, error) {
	key := a.KeyPrefix + ":users"
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var userIDs []string
	if err := json.Unmarshal(data, &userIDs); err != nil {
		return nil, err
	}
	return userIDs, nil
}

// Record 追加一条交互事件，并维护用户列表。
// 配置了 Dirty 队列时，落库成功后把用户标记为待重建。
func (a *InteractionAdapter) Record(ctx context.Context, ev *core.InteractionEvent) error {
	if ev == nil || ev.UserID == "" {
		return core.ErrEmptyUserID
	}

	events, err := a.ListByUser(ctx, ev.UserID)
	if err != nil {
		return err
	}
	events = append(events, ev)

	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	key := a.KeyPrefix + ":user:" + ev.UserID
	if err := a.store.Set(ctx, key, data); err != nil {
		return err
	}

	if err := a.addUserID(ctx, ev.UserID); err != nil {
		return err
	}

	if a.Dirty != nil {
		if err := a.Dirty.Mark(ctx, ev.UserID, ev.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (a *InteractionAdapter) addUserID(ctx context.Context, userID string) error {
	userIDs, err := a.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range userIDs {
		if id == userID {
			return nil
		}
	}
	userIDs = append(userIDs, userID)

	data, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.KeyPrefix+":users", data)
}

// 确保实现 core.InteractionReader 接口
var _ core.InteractionReader = (*InteractionAdapter)(nil)
