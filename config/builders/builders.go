// Package builders 在 init 中注册全部内置 Node 的配置构建器。
// 入口处空导入本包即可启用配置驱动：
//
//	import _ "github.com/marketkit/promorank/config/builders"
//
// 需要运行期协作方（商品目录、画像、相似度、推广存储）的 Node
// 从 Use 注入的 Deps 取依赖；不注入时这些 Node 构建成功但召回为空。
package builders

import (
	"fmt"
	"sync"
	"time"

	"github.com/marketkit/promorank/boost"
	"github.com/marketkit/promorank/config"
	"github.com/marketkit/promorank/core"
	"github.com/marketkit/promorank/filter"
	"github.com/marketkit/promorank/pipeline"
	"github.com/marketkit/promorank/pkg/conv"
	"github.com/marketkit/promorank/recall"
	"github.com/marketkit/promorank/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("recall.content", BuildContentNode)
	config.Register("recall.collaborative", BuildCollaborativeNode)
	config.Register("recall.popular", BuildPopularNode)
	config.Register("boost.inject", BuildBoostInjectNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// Deps 是配置驱动 Node 的运行期协作方。配置文件只描述结构和参数，
// 数据依赖在进程启动时通过 Use 注入一次。
type Deps struct {
	Interactions core.InteractionReader
	Catalog      core.CatalogReader
	Boosts       core.BoostReader
	Profiles     core.ProfileStore
	Similarities core.SimilarityStore

	// KV 供热门榜单/黑名单等基于存储的组件使用
	KV core.KeyValueStore
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// Use 注入运行期协作方。在 BuildPipeline 之前调用。
func Use(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		src, err := buildSource(sourceMap)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet(cfg, "dedup", true),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	fanout.MergeStrategy = conv.ConfigGet(cfg, "merge_strategy", "")
	return fanout, nil
}

func buildSource(cfg map[string]interface{}) (recall.Source, error) {
	d := current()
	topK := int(conv.ConfigGetInt64(cfg, "top_k", 0))

	switch sourceType := conv.ConfigGet(cfg, "type", ""); sourceType {
	case "content":
		return &recall.ContentRecall{
			Catalog:  d.Catalog,
			Profiles: d.Profiles,
			TopK:     topK,
		}, nil
	case "collaborative":
		return &recall.CollaborativeRecall{
			Interactions:      d.Interactions,
			Similarities:      d.Similarities,
			Catalog:           d.Catalog,
			NeighborThreshold: conv.ConfigGetFloat64(cfg, "neighbor_threshold", 0),
			TopK:              topK,
		}, nil
	case "popular":
		return &recall.Popular{
			Catalog: d.Catalog,
			Store:   d.KV,
			Key:     conv.ConfigGet(cfg, "key", ""),
			TopK:    topK,
		}, nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}

func BuildContentNode(cfg map[string]interface{}) (pipeline.Node, error) {
	src, err := buildSource(map[string]interface{}{
		"type":  "content",
		"top_k": cfg["top_k"],
	})
	if err != nil {
		return nil, err
	}
	return &recall.Fanout{Sources: []recall.Source{src}, Dedup: true}, nil
}

func BuildCollaborativeNode(cfg map[string]interface{}) (pipeline.Node, error) {
	src, err := buildSource(map[string]interface{}{
		"type":               "collaborative",
		"top_k":              cfg["top_k"],
		"neighbor_threshold": cfg["neighbor_threshold"],
	})
	if err != nil {
		return nil, err
	}
	return &recall.Fanout{Sources: []recall.Source{src}, Dedup: true}, nil
}

func BuildPopularNode(cfg map[string]interface{}) (pipeline.Node, error) {
	d := current()
	return &recall.Popular{
		Catalog: d.Catalog,
		Store:   d.KV,
		Key:     conv.ConfigGet(cfg, "key", ""),
		TopK:    int(conv.ConfigGetInt64(cfg, "top_k", 0)),
	}, nil
}

func BuildBoostInjectNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &boost.InjectorNode{Boosts: current().Boosts}
	switch policy := conv.ConfigGet(cfg, "policy", ""); policy {
	case "", "multiplicative":
		node.Policy = boost.MultiplicativePolicy{}
	case "additive":
		node.Policy = boost.AdditivePolicy{
			Delta: conv.ConfigGetFloat64(cfg, "delta", 0),
		}
	default:
		return nil, fmt.Errorf("unknown boost policy: %s", policy)
	}
	return node, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "active":
			filters = append(filters, &filter.ActiveFilter{Catalog: current().Catalog})
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["product_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet(filterMap, "key", "")
			var store filter.BlacklistStore
			if key != "" && current().KV != nil {
				store = filter.NewStoreBlacklist(current().KV)
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, store, key))
		case "seen":
			f := &filter.SeenFilter{Interactions: current().Interactions}
			if sec := conv.ConfigGetInt64(filterMap, "window", 0); sec > 0 {
				f.Window = time.Duration(sec) * time.Second
			}
			filters = append(filters, f)
		case "hidden":
			filters = append(filters, &filter.HiddenFilter{
				Store:     current().KV,
				KeyPrefix: conv.ConfigGet(filterMap, "key_prefix", ""),
			})
		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("expr filter requires expr")
			}
			filters = append(filters, &filter.ExprFilter{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 0)),
	}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	return &rerank.Diversity{LabelKey: labelKey}, nil
}
