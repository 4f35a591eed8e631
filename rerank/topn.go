package rerank

import (
	"context"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个商品。
// 通常放在推广注入（boost.InjectorNode）之后，保证最终结果不超过 limit。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        recallNode,
//	        &boost.InjectorNode{...},  // 推广注入
//	        &rerank.TopNNode{N: 20},   // 截取 Top 20
//	    },
//	}
type TopNNode struct {
	// N 要保留的商品数量（Top N）
	// 如果 N <= 0，则使用 rctx.Limit；仍 <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 {
		return items, nil
	}

	if len(items) <= limit {
		return items, nil
	}

	return items[:limit], nil
}
