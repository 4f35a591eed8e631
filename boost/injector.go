package boost

import (
	"context"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pipeline"
)

// InjectorNode 是推广注入的 ReRank Node：把生效中的推广叠加到已排序的候选上。
//
// 使用场景：
//   - 放在召回/混排之后、TopN 截断之前
//   - 推广读取失败时降级为原列表（推广是增强，不能让请求失败）
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        recallNode,
//	        &boost.InjectorNode{Boosts: boostReader},
//	        &rerank.TopNNode{N: 20},
//	    },
//	}
type InjectorNode struct {
	Boosts core.BoostReader

	// Policy 注入策略；nil 时用 MultiplicativePolicy（兼容行为）
	Policy Policy
}

func (n *InjectorNode) Name() string {
	if n.Policy != nil {
		return "boost.inject." + n.Policy.Name()
	}
	return "boost.inject"
}

func (n *InjectorNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *InjectorNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Boosts == nil || len(items) == 0 {
		return items, nil
	}
	return Inject(ctx, n.Boosts, n.Policy, rctx.At(), items), nil
}
