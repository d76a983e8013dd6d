// Package geo 提供测地距离计算（WGS-84 椭球），与 geopy.distance.geodesic 口径一致。
package geo

import (
	"math"

	"github.com/tidwall/geodesic"
)

// Point 是经纬度坐标（度）。
type Point struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

// Valid 判断坐标是否为有限值且在合法范围内。
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKm 返回两点间的测地距离（公里）。
// 任一端点缺失或非法时返回 +Inf，使该候选在距离过滤中被排除而不是被打分。
func DistanceKm(a, b *Point) float64 {
	if a == nil || b == nil || !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return meters / 1000
}
