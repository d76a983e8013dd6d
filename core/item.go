package core

import "github.com/rushteam/agrorec/pkg/utils"

// 标准 Feature key：HybridNode 写入的五个子分数，均在 [0,1]。
const (
	FeatureDistance      = "distance"
	FeatureRating        = "rating"
	FeatureNutrition     = "nutrition"
	FeatureRegional      = "regional"
	FeatureCollaborative = "collaborative"
)

// FeatureKeys 是子分数的固定顺序，加权求和按此顺序累加。
var FeatureKeys = []string{
	FeatureDistance,
	FeatureRating,
	FeatureNutrition,
	FeatureRegional,
	FeatureCollaborative,
}

// 标准 Meta key。
const (
	MetaName       = "name"
	MetaDistanceKm = "distance_km"
	MetaProducts   = "products"
	MetaRegions    = "regions"
	MetaOrganic    = "organic"
	MetaAvgRating  = "avg_rating"
)

// Item 是推荐链路中的统一承载结构：一个候选合作社（association）。
// Features 存放子分数；Meta 存放展示/过滤所需的静态属性；Score 用于排序决策。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64, 5),
		Meta:     make(map[string]any, 6),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	it.Labels[key] = utils.MergeLabel(it.Labels[key], lbl)
}

// DistanceKm 返回召回阶段写入的测地距离；缺失时视为 +Inf。
func (it *Item) DistanceKm() float64 {
	if v, ok := it.Meta[MetaDistanceKm].(float64); ok {
		return v
	}
	return inf
}

// Products 返回候选提供的规范化产品列表。
func (it *Item) Products() []string {
	if v, ok := it.Meta[MetaProducts].([]string); ok {
		return v
	}
	return nil
}

// Regions 返回候选服务的行政区列表。
func (it *Item) Regions() []string {
	if v, ok := it.Meta[MetaRegions].([]string); ok {
		return v
	}
	return nil
}

// Organic 返回候选是否以有机产品为主。
func (it *Item) Organic() bool {
	v, _ := it.Meta[MetaOrganic].(bool)
	return v
}

// Name 返回候选名称。
func (it *Item) Name() string {
	v, _ := it.Meta[MetaName].(string)
	return v
}

// AvgRating 返回候选的平均评分（0–5）。
func (it *Item) AvgRating() float64 {
	v, _ := it.Meta[MetaAvgRating].(float64)
	return v
}
