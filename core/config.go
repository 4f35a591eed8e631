package core

import "time"

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultLimit 返回默认的结果条数
	DefaultLimit() int

	// NeighborThreshold 返回协同召回采用邻居的相似度阈值
	NeighborThreshold() float64

	// RetainThreshold 返回相似度落盘的保留阈值
	RetainThreshold() float64

	// ContentWeight 返回混合打分中内容列表的权重
	ContentWeight() float64

	// CollaborativeWeight 返回混合打分中协同列表的权重
	CollaborativeWeight() float64

	// CacheTTL 返回结果缓存的有效期
	CacheTTL() time.Duration

	// DefaultTimeout 返回单个召回源的默认超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultLimit() int {
	return 20
}

func (c *DefaultRecommendConfig) NeighborThreshold() float64 {
	return 0.3
}

func (c *DefaultRecommendConfig) RetainThreshold() float64 {
	return 0.1
}

func (c *DefaultRecommendConfig) ContentWeight() float64 {
	return 0.6
}

func (c *DefaultRecommendConfig) CollaborativeWeight() float64 {
	return 0.4
}

func (c *DefaultRecommendConfig) CacheTTL() time.Duration {
	return 2 * time.Minute
}

func (c *DefaultRecommendConfig) DefaultTimeout() time.Duration {
	return 2 * time.Second
}
