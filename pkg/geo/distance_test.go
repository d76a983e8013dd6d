package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	unb := &Point{Lat: -15.7632, Lon: -47.8706}

	tests := []struct {
		name  string
		a, b  *Point
		want  float64
		delta float64
	}{
		{name: "same point", a: unb, b: unb, want: 0, delta: 1e-9},
		{name: "one degree of latitude at the equator", a: &Point{0, 0}, b: &Point{1, 0}, want: 110.574, delta: 0.01},
		{name: "one degree of longitude at the equator", a: &Point{0, 0}, b: &Point{0, 1}, want: 111.319, delta: 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := &Point{Lat: -15.911319, Lon: -47.721311}
	b := &Point{Lat: -15.445505, Lon: -47.619013}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
	assert.Greater(t, DistanceKm(a, b), 40.0)
	assert.Less(t, DistanceKm(a, b), 60.0)
}

func TestDistanceKm_MissingCoordinates(t *testing.T) {
	valid := &Point{Lat: -15.7, Lon: -47.8}
	assert.True(t, math.IsInf(DistanceKm(nil, valid), 1))
	assert.True(t, math.IsInf(DistanceKm(valid, nil), 1))
	assert.True(t, math.IsInf(DistanceKm(&Point{Lat: math.NaN(), Lon: 0}, valid), 1))
	assert.True(t, math.IsInf(DistanceKm(&Point{Lat: 91, Lon: 0}, valid), 1))
}
