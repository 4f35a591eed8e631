package filter

import (
	"context"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pkg/dsl"
)

// ExprFilter 是表达式过滤器：按 CEL 表达式对候选做规则过滤。
// 表达式返回 true 时商品被过滤掉。
//
// 示例（配置驱动的运营规则）：
//   - `label.recall_source == "popular" && item.score < 5.0`
//   - `label.boost_type == "URGENT"`
type ExprFilter struct {
	// Expr 是 CEL 表达式；空表达式不过滤任何商品
	Expr string
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
