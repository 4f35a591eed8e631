package recall

import (
	"context"

	"github.com/marketkit/promorank/core"
)

// Source 表示一个可复用的召回源（内容/协同/热门/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// resolveTopK 统一各召回源的 TopK 语义：
// > 0 直接使用；= 0 退化到 rctx.Limit（再为 0 时用默认值 20）；< 0 表示不截断。
func resolveTopK(topK, limit int) int {
	if topK > 0 {
		return topK
	}
	if topK < 0 {
		return 0
	}
	if limit > 0 {
		return limit
	}
	return 20
}
