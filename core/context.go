package core

import (
	"time"

	"github.com/marketkit/promorank/pkg/utils"
)

// RecommendContext 承载用户/场景/实时信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 使用 string 类型（通用，支持所有 ID 格式）
	Scene  string

	// Limit 是调用方请求的结果条数，各 Node 可据此做截断或打分归一。
	Limit int

	// Now 是本次请求的时间基准（boost 时间窗、TTL 判断都以它为准）。
	// 零值时各组件使用 time.Now()。
	Now time.Time

	// Profile 是用户偏好画像；为 nil 表示该用户没有任何个性化信号，
	// 调用方应走 Fallback 流程。
	Profile *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：新用户、重度用户、价格敏感等
	Labels map[string]utils.Label

	// Params 请求级上下文参数（经纬度、设备类型、实验参数等）
	Params map[string]any
}

// At 返回请求的时间基准。
func (rctx *RecommendContext) At() time.Time {
	if rctx == nil || rctx.Now.IsZero() {
		return time.Now()
	}
	return rctx.Now
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
