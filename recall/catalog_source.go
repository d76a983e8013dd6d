package recall

import (
	"context"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/geo"
	"github.com/rushteam/agrorec/pkg/utils"
)

// CatalogRecall 是全量召回源：目录中的每个合作社都是候选，
// 并在 Meta 中写入到消费者位置的测地距离（km）。
//
// 坐标缺失的合作社距离为 +Inf，会被后续距离过滤剔除。
type CatalogRecall struct {
	Catalog *catalog.Catalog
}

func (r *CatalogRecall) Name() string {
	return "recall.catalog"
}

func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CatalogRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil {
		return nil, nil
	}
	origin := rctx.Query.Location
	assocs := r.Catalog.Associations()
	out := make([]*core.Item, 0, len(assocs))
	for _, a := range assocs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, ItemFromAssociation(a, geo.DistanceKm(&origin, a.Location)))
	}
	return out, nil
}

// Process 使 CatalogRecall 可以直接作为 Pipeline 的第一个 Node；
// 传入的 items 被忽略。
func (r *CatalogRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// ItemFromAssociation 将合作社转换为候选 Item。
func ItemFromAssociation(a *catalog.Association, distanceKm float64) *core.Item {
	it := core.NewItem(a.ID)
	it.Meta[core.MetaName] = a.Name
	it.Meta[core.MetaDistanceKm] = distanceKm
	it.Meta[core.MetaProducts] = a.Products
	it.Meta[core.MetaRegions] = a.Regions
	it.Meta[core.MetaOrganic] = a.Organic
	it.Meta[core.MetaAvgRating] = a.AvgRating
	it.PutLabel("recall_source", utils.NewLabel("catalog", "recall"))
	return it
}
