package catalog

import (
	"sort"
	"strings"
)

// ProductionRecord 是 EMATER 年报中某地区某产品的产量记录。
type ProductionRecord struct {
	Region  string  `json:"region" yaml:"region"`
	Product string  `json:"product" yaml:"product"`
	AreaHa  float64 `json:"area_ha" yaml:"area_ha"`
	OutputT float64 `json:"output_t" yaml:"output_t"`
}

// RegionShare 是某地区在某产品总产量中的占比。
type RegionShare struct {
	Region       string  `json:"region"`
	AreaHa       float64 `json:"area_ha"`
	OutputT      float64 `json:"output_t"`
	SharePercent float64 `json:"share_percent"`
}

// ProductionIndex 是 (地区, 产品) → 产量 的索引，地区名统一大写。
type ProductionIndex struct {
	records map[productionKey]*RegionShare
	totals  map[string]float64
	byProd  map[string][]string
	dropped int
}

type productionKey struct {
	region  string
	product string
}

// RegionKey 将地区名规范为 join 用的键：去空白并转大写。
func RegionKey(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// NewProductionIndex 规范化产品与地区并建立索引。
// 产品不在词表内的记录被丢弃；规范化后重复的 (地区, 产品) 会累加。
func NewProductionIndex(records []ProductionRecord, vocab *Vocabulary) *ProductionIndex {
	idx := &ProductionIndex{
		records: make(map[productionKey]*RegionShare, len(records)),
		totals:  make(map[string]float64),
		byProd:  make(map[string][]string),
	}
	for _, rec := range records {
		product, ok := vocab.Canonicalize(rec.Product)
		region := RegionKey(rec.Region)
		if !ok || region == "" {
			idx.dropped++
			continue
		}
		k := productionKey{region: region, product: product}
		rs, exists := idx.records[k]
		if !exists {
			rs = &RegionShare{Region: region}
			idx.records[k] = rs
			idx.byProd[product] = append(idx.byProd[product], region)
		}
		rs.AreaHa += rec.AreaHa
		rs.OutputT += rec.OutputT
		idx.totals[product] += rec.OutputT
	}
	for k, rs := range idx.records {
		if total := idx.totals[k.product]; total > 0 {
			rs.SharePercent = rs.OutputT / total * 100
		}
	}
	return idx
}

// Len 返回索引中的 (地区, 产品) 数。
func (p *ProductionIndex) Len() int { return len(p.records) }

// Dropped 返回构建时被丢弃的记录数。
func (p *ProductionIndex) Dropped() int { return p.dropped }

// Share 返回 region 在 product 总产量中的百分比；没有记录时 ok=false。
func (p *ProductionIndex) Share(region, product string) (float64, bool) {
	rs, ok := p.records[productionKey{region: RegionKey(region), product: product}]
	if !ok {
		return 0, false
	}
	return rs.SharePercent, true
}

// Total 返回 product 的总产量（吨）。
func (p *ProductionIndex) Total(product string) float64 {
	return p.totals[product]
}

// TopRegions 返回 product 产量最高的 n 个地区，n<=0 返回全部。
func (p *ProductionIndex) TopRegions(product string, n int) []RegionShare {
	regions := p.byProd[product]
	out := make([]RegionShare, 0, len(regions))
	for _, r := range regions {
		out = append(out, *p.records[productionKey{region: r, product: product}])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OutputT != out[j].OutputT {
			return out[i].OutputT > out[j].OutputT
		}
		return out[i].Region < out[j].Region
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Products 返回有产量记录的产品（排序）。
func (p *ProductionIndex) Products() []string {
	out := make([]string, 0, len(p.byProd))
	for prod := range p.byProd {
		out = append(out, prod)
	}
	sort.Strings(out)
	return out
}

// Records 导出合并后的记录，按产品、地区排序。
func (p *ProductionIndex) Records() []ProductionRecord {
	out := make([]ProductionRecord, 0, len(p.records))
	for k, rs := range p.records {
		out = append(out, ProductionRecord{Region: k.region, Product: k.product, AreaHa: rs.AreaHa, OutputT: rs.OutputT})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].Region < out[j].Region
	})
	return out
}
