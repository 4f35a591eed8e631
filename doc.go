// Package promorank 是一个二手交易市场的推荐与推广排序引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 显式降级: 缺画像/缺相似度/上游失败都走热门兜底，推荐请求不失败
// - 引擎门面: engine.Engine 把召回、融合、推广注入组装成对外操作
package promorank

import "github.com/marketkit/promorank/pipeline"

// 轻量 facade：便于用户直接 import "promorank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
