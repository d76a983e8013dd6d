// Package catalog 持有推荐所需的静态参考表：产品词表、合作社、营养表与地区产量。
//
// Catalog 在加载后不可变，可被并发查询共享。
package catalog

import (
	"fmt"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
)

// Catalog 是加载完成的参考数据。
type Catalog struct {
	vocab      *Vocabulary
	assocs     []*Association
	byID       map[int64]*Association
	byProduct  map[string][]int64
	nutrients  *NutrientTable
	production *ProductionIndex
}

// Stats 是目录的汇总统计。
type Stats struct {
	Associations     int `json:"associations"`
	DistinctProducts int `json:"distinct_products"`
	ProductLinks     int `json:"product_links"`
	Organic          int `json:"organic"`
	MissingLocation  int `json:"missing_location"`
	NutrientProducts int `json:"nutrient_products"`
	ProductionPairs  int `json:"production_pairs"`
}

func missingTable(table string) error {
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeMissingTable,
		fmt.Sprintf("catalog: %s table is missing or empty", table))
}

func invalidRecord(format string, args ...any) error {
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
		"catalog: "+fmt.Sprintf(format, args...))
}

// Load 校验并构建目录。
// 表缺失、合作社 ID 重复或非法属于配置错误，直接返回；
// 无法识别的产品名、缺失坐标只记录日志。
func Load(vocab *Vocabulary, assocs []AssociationRecord, nutrients []NutrientRecord, production []ProductionRecord) (*Catalog, error) {
	if vocab == nil {
		return nil, missingTable("vocabulary")
	}
	if len(assocs) == 0 {
		return nil, missingTable("associations")
	}
	if len(nutrients) == 0 {
		return nil, missingTable("nutrients")
	}
	if production == nil {
		return nil, missingTable("production")
	}

	log := logging.With("catalog")
	c := &Catalog{
		vocab:     vocab,
		assocs:    make([]*Association, 0, len(assocs)),
		byID:      make(map[int64]*Association, len(assocs)),
		byProduct: make(map[string][]int64),
	}
	for _, rec := range assocs {
		if rec.ID <= 0 {
			return nil, invalidRecord("association id must be positive, got %d", rec.ID)
		}
		if _, dup := c.byID[rec.ID]; dup {
			return nil, invalidRecord("duplicate association id %d", rec.ID)
		}
		a := newAssociation(rec, vocab)
		if a.Name == "" {
			return nil, invalidRecord("association %d has empty name", rec.ID)
		}
		if unmapped := vocab.Unmapped(rec.RawProducts); len(unmapped) > 0 {
			log.Debug().Int64("association_id", a.ID).Strs("products", unmapped).Msg("unmapped products dropped")
		}
		if a.Location == nil {
			log.Warn().Int64("association_id", a.ID).Msg("association has no valid coordinates")
		}
		c.assocs = append(c.assocs, a)
		c.byID[a.ID] = a
		for _, p := range a.Products {
			c.byProduct[p] = append(c.byProduct[p], a.ID)
		}
	}

	c.nutrients = NewNutrientTable(nutrients, vocab)
	if c.nutrients.Len() == 0 {
		return nil, missingTable("nutrients")
	}
	c.production = NewProductionIndex(production, vocab)
	if n := c.production.Dropped(); n > 0 {
		log.Debug().Int("records", n).Msg("production records outside vocabulary dropped")
	}
	return c, nil
}

// Vocabulary 返回共享词表。
func (c *Catalog) Vocabulary() *Vocabulary { return c.vocab }

// Association 按 ID 查询。
func (c *Catalog) Association(id int64) (*Association, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Associations 以加载顺序返回全部合作社。
func (c *Catalog) Associations() []*Association {
	out := make([]*Association, len(c.assocs))
	copy(out, c.assocs)
	return out
}

// Len 返回合作社数量。
func (c *Catalog) Len() int { return len(c.assocs) }

// WithProduct 返回提供 product 的合作社 ID（加载顺序）。
func (c *Catalog) WithProduct(product string) []int64 {
	ids := c.byProduct[product]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// Nutrients 返回营养表。
func (c *Catalog) Nutrients() *NutrientTable { return c.nutrients }

// Production 返回地区产量索引。
func (c *Catalog) Production() *ProductionIndex { return c.production }

// Stats 汇总目录统计。
func (c *Catalog) Stats() Stats {
	s := Stats{
		Associations:     len(c.assocs),
		DistinctProducts: len(c.byProduct),
		NutrientProducts: c.nutrients.Len(),
		ProductionPairs:  c.production.Len(),
	}
	for _, a := range c.assocs {
		s.ProductLinks += len(a.Products)
		if a.Organic {
			s.Organic++
		}
		if a.Location == nil {
			s.MissingLocation++
		}
	}
	return s
}

// Records 导出合作社的规范化记录，用于写入快照存储。
func (c *Catalog) Records() []AssociationRecord {
	out := make([]AssociationRecord, 0, len(c.assocs))
	for _, a := range c.assocs {
		rec := AssociationRecord{
			ID:          a.ID,
			Name:        a.Name,
			Regions:     append([]string(nil), a.Regions...),
			RawProducts: append([]string(nil), a.Products...),
			Organic:     a.Organic,
			AvgRating:   a.AvgRating,
			RatingCount: a.RatingCount,
			PriceTier:   string(a.PriceTier),
		}
		if a.Location != nil {
			lat, lon := a.Location.Lat, a.Location.Lon
			rec.Lat, rec.Lon = &lat, &lon
		}
		out = append(out, rec)
	}
	return out
}
