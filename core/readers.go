package core

import (
	"context"
	"time"
)

// 本文件集中定义引擎对外部协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 交互日志/商品目录/推广记录都是外部数据，引擎只读；
//     引擎自己拥有的可变状态只有 UserProfile 和 UserSimilarity

// InteractionReader 是交互日志的只读接口。
type InteractionReader interface {
	// ListByUser 返回一个用户的全部交互事件（顺序不保证）
	ListByUser(ctx context.Context, userID string) ([]*InteractionEvent, error)

	// ListUserIDs 返回交互日志中出现过的全部用户 ID（相似度全量重建用）
	ListUserIDs(ctx context.Context) ([]string, error)
}

// CatalogReader 是商品目录的只读接口。
type CatalogReader interface {
	// ActiveProducts 返回全部在架商品
	ActiveProducts(ctx context.Context) ([]*Product, error)

	// ProductsByIDs 按 ID 批量解析商品；未知 ID 直接跳过，不报错
	ProductsByIDs(ctx context.Context, ids []string) ([]*Product, error)
}

// BoostReader 是推广记录的只读接口。
type BoostReader interface {
	// ActiveBoosts 返回 now 时刻生效的推广（Active 且 now ∈ [StartTime, EndTime)）
	ActiveBoosts(ctx context.Context, now time.Time) ([]*ProductBoost, error)
}

// ProfileStore 是用户画像的持久化接口。画像整体覆盖写入，不做增量合并。
type ProfileStore interface {
	// GetProfile 读取画像；不存在时返回 ErrProfileNotFound
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// PutProfile 整体覆盖写入画像
	PutProfile(ctx context.Context, profile *UserProfile) error
}

// SimilarityStore 是用户相似度的持久化接口。
type SimilarityStore interface {
	// PutSimilarity 写入/覆盖一条有向相似度记录
	PutSimilarity(ctx context.Context, sim *UserSimilarity) error

	// ListByUser 返回 (userID, *) 方向的全部记录，按 Score 降序
	ListByUser(ctx context.Context, userID string) ([]*UserSimilarity, error)
}

// DirtyQueue 标记"画像/相似度需要重建"的用户队列。
// 交互写入方在落库后调用 Mark；外部调度器消费队列触发重建，
// 避免在请求路径里做全量重算。
type DirtyQueue interface {
	// Mark 把用户标记为待重建（重复标记只刷新时间戳）
	Mark(ctx context.Context, userID string, at time.Time) error

	// Drain 取出最多 n 个待重建用户并从队列移除
	Drain(ctx context.Context, n int) ([]string, error)
}

// 画像/相似度错误定义（使用统一的 DomainError）
var (
	// ErrProfileNotFound 表示用户没有画像（没有个性化信号，调用方走 Fallback）
	ErrProfileNotFound = NewDomainError(ModuleProfile, ErrorCodeNotFound, "profile: not found")
)

// IsProfileNotFound 检查错误是否为画像不存在。
func IsProfileNotFound(err error) bool {
	if err == nil {
		return false
	}
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleProfile {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
