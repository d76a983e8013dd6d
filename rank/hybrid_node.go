package rank

import (
	"context"
	"sort"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/model"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/utils"
	"github.com/rushteam/agrorec/recall"
)

// HybridNode 是混合排序 Node：
//   - 为每个候选计算五个子分数并写入 Features（distance/rating/nutrition/regional/collaborative）
//   - 用 RankModel 合成 item.Score（默认按查询权重构造 LinearModel）
//   - 按分数降序稳定排序，分数相同时保持候选原有顺序
//
// 距离分与协同分依赖整个候选集（min-max / 除以最大值），因此必须在硬过滤之后执行。
type HybridNode struct {
	Catalog *catalog.Catalog
	CF      *recall.ItemBasedCF

	// Model 为空时使用查询权重构造的 LinearModel。
	Model model.RankModel
}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	prefs := rctx.Prefs()

	distances := make([]float64, len(items))
	ids := make([]int64, len(items))
	for i, it := range items {
		distances[i] = it.DistanceKm()
		ids[i] = it.ID
	}
	distScores := DistanceScores(distances)

	collab := make([]float64, len(items))
	if n.CF.HasHistory(rctx.UserID) {
		collab = n.CF.ScoreAll(rctx.UserID, ids)
		NormalizeByMax(collab)
	} else {
		rctx.PutLabel("cold_start", utils.NewLabel("true", "rank"))
	}

	var nutrients *catalog.NutrientTable
	var production *catalog.ProductionIndex
	if n.Catalog != nil {
		nutrients = n.Catalog.Nutrients()
		production = n.Catalog.Production()
	}

	m := n.Model
	if m == nil {
		m = model.NewLinearModel(prefs.Weights.AsMap())
	}

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		offered := it.Products()
		it.Features[core.FeatureDistance] = distScores[i]
		it.Features[core.FeatureRating] = RatingScore(it.AvgRating())
		it.Features[core.FeatureNutrition] = NutritionScore(offered, prefs.DesiredProducts, prefs.NutritionObjective, nutrients)
		if prefs.ConsiderRegionalRelevance {
			it.Features[core.FeatureRegional] = RegionalScore(offered, it.Regions(), prefs.DesiredProducts, production)
		} else {
			it.Features[core.FeatureRegional] = 0
		}
		it.Features[core.FeatureCollaborative] = collab[i]

		score, err := m.Predict(it.Features)
		if err != nil {
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.NewLabel(m.Name(), "rank"))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}
