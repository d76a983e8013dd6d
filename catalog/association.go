package catalog

import (
	"strings"

	"github.com/rushteam/agrorec/pkg/geo"
)

// PriceTier 是相对价格档位。
type PriceTier string

const (
	PriceUnknown PriceTier = ""
	PriceLow     PriceTier = "low"
	PriceMedium  PriceTier = "medium"
	PriceHigh    PriceTier = "high"
)

// ParsePriceTier 解析价格档位，兼容葡语写法（Baixo/Médio/Alto）。
func ParsePriceTier(s string) PriceTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "baixo":
		return PriceLow
	case "medium", "médio", "medio":
		return PriceMedium
	case "high", "alto":
		return PriceHigh
	default:
		return PriceUnknown
	}
}

// AssociationRecord 是外部提供的合作社原始记录（产品名未规范化）。
// Lat/Lon 为 nil 表示坐标缺失。
type AssociationRecord struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Lat         *float64 `json:"lat" yaml:"lat"`
	Lon         *float64 `json:"lon" yaml:"lon"`
	Regions     []string `json:"regions" yaml:"regions"`
	RawProducts []string `json:"raw_products" yaml:"raw_products"`
	Organic     bool     `json:"organic" yaml:"organic"`
	AvgRating   float64  `json:"avg_rating" yaml:"avg_rating"`
	RatingCount int      `json:"rating_count" yaml:"rating_count"`
	PriceTier   string   `json:"price_tier" yaml:"price_tier"`
}

// Association 是加载后的合作社，查询期间不可变。
type Association struct {
	ID          int64
	Name        string
	Location    *geo.Point // nil 表示坐标缺失
	Regions     []string
	Products    []string // 规范化、去重后的产品类别
	Organic     bool
	AvgRating   float64
	RatingCount int
	PriceTier   PriceTier

	products map[string]struct{}
}

// Offers 判断合作社是否提供某个规范化产品。
func (a *Association) Offers(product string) bool {
	_, ok := a.products[product]
	return ok
}

// OffersAny 判断是否提供 desired 中的任一产品。
func (a *Association) OffersAny(desired []string) bool {
	for _, p := range desired {
		if a.Offers(p) {
			return true
		}
	}
	return false
}

func newAssociation(rec AssociationRecord, vocab *Vocabulary) *Association {
	a := &Association{
		ID:          rec.ID,
		Name:        strings.TrimSpace(rec.Name),
		Regions:     append([]string(nil), rec.Regions...),
		Products:    vocab.CanonicalizeAll(rec.RawProducts),
		Organic:     rec.Organic,
		AvgRating:   clampRating(rec.AvgRating),
		RatingCount: rec.RatingCount,
		PriceTier:   ParsePriceTier(rec.PriceTier),
	}
	if rec.Lat != nil && rec.Lon != nil {
		p := geo.Point{Lat: *rec.Lat, Lon: *rec.Lon}
		if p.Valid() {
			a.Location = &p
		}
	}
	a.products = make(map[string]struct{}, len(a.Products))
	for _, p := range a.Products {
		a.products[p] = struct{}{}
	}
	return a
}

func clampRating(r float64) float64 {
	if r < 0 || r != r {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}
