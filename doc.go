// Package agrorec 为联邦区（DF）家庭农业合作社提供混合推荐。
//
// 设计要点：
// - Pipeline-first: 推荐由 Node 串联（Recall → Filter → Rank → ReRank）
// - 硬过滤先行: 距离、有机、产品、排除列表与 CEL 规则只收窄候选集
// - 五路子分数: 距离、评分、营养、区域产量占比与 Item-CF 协同分，按查询权重线性组合
package agrorec

import (
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/recommender"
)

// 轻量 facade：便于直接 import "agrorec" 使用核心抽象。
type (
	Pipeline       = pipeline.Pipeline
	Node           = pipeline.Node
	Kind           = pipeline.Kind
	Recommender    = recommender.Recommender
	Recommendation = recommender.Recommendation
	Snapshot       = recommender.Snapshot
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
