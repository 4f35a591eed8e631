// Package boost 实现付费推广对排序结果的注入。
package boost

import (
	"sort"

	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/pkg/utils"
)

// Policy 决定推广如何改变一个已排好序的列表。
// 抽出接口是为了隔离"按档位复制"这种兼容行为，后续可平滑切到加分策略。
type Policy interface {
	Name() string

	// Apply 输入有序候选与生效中的推广（按商品 ID 索引），输出重排后的列表。
	Apply(items []*core.Item, active map[string]*core.ProductBoost) []*core.Item
}

// MultiplicativePolicy 按档位复制推广商品（兼容源系统的行为，默认策略）。
//
// 输出 = 所有推广商品的重复项（保持原相对顺序，每个重复 Level 次）
//      + 所有普通商品（保持原相对顺序）。
// 调用方事后按 limit 截断，极高的档位可以把普通结果完全挤出去。
type MultiplicativePolicy struct{}

func (MultiplicativePolicy) Name() string { return "boost.multiplicative" }

func (MultiplicativePolicy) Apply(
	items []*core.Item,
	active map[string]*core.ProductBoost,
) []*core.Item {
	if len(items) == 0 || len(active) == 0 {
		return items
	}

	boosted := make([]*core.Item, 0, len(items))
	regular := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}
		b, ok := active[it.ID]
		if !ok {
			regular = append(regular, it)
			continue
		}
		level := b.Level
		if level < 1 {
			level = 1
		}
		it.PutLabel("boost_type", utils.Label{Value: string(b.Type), Source: "boost"})
		for i := 0; i < level; i++ {
			boosted = append(boosted, it)
		}
	}

	out := make([]*core.Item, 0, len(boosted)+len(regular))
	out = append(out, boosted...)
	out = append(out, regular...)
	return out
}

// AdditivePolicy 按档位加分后重新排序（替代复制的重设计变体）。
// 不产生重复项；Delta 是每档的加分步长。
type AdditivePolicy struct {
	// Delta 每个档位的加分；<= 0 时用默认值 1.0
	Delta float64
}

func (AdditivePolicy) Name() string { return "boost.additive" }

func (p AdditivePolicy) Apply(
	items []*core.Item,
	active map[string]*core.ProductBoost,
) []*core.Item {
	if len(items) == 0 || len(active) == 0 {
		return items
	}

	delta := p.Delta
	if delta <= 0 {
		delta = 1.0
	}

	// 原顺序作为同分 tie-break，保证稳定
	rank := make(map[string]int, len(items))
	out := make([]*core.Item, 0, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		if _, ok := rank[it.ID]; !ok {
			rank[it.ID] = i
		}
		if b, ok := active[it.ID]; ok {
			level := b.Level
			if level < 1 {
				level = 1
			}
			it.Score += float64(level) * delta
			it.PutLabel("boost_type", utils.Label{Value: string(b.Type), Source: "boost"})
		}
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return rank[out[i].ID] < rank[out[j].ID]
	})
	return out
}
