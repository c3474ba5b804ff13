package services

import (
	"math"
	"testing"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
)

func TestHaversineZeroAtSamePoint(t *testing.T) {
	if d := Haversine(116.4074, 39.9042, 116.4074, 39.9042); d != 0 {
		t.Fatalf("d=%f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Haversine(116.4074, 39.9042, 121.4737, 31.2304)
	b := Haversine(121.4737, 31.2304, 116.4074, 39.9042)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("asymmetric: %f vs %f", a, b)
	}
}

func TestHaversineBeijingShanghai(t *testing.T) {
	// Beijing to Shanghai is roughly 1070 km.
	d := Haversine(116.4074, 39.9042, 121.4737, 31.2304)
	if d < 1000e3 || d > 1150e3 {
		t.Fatalf("d=%f", d)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lon, lat, radius := 116.4074, 39.9042, 1000.0
	box := boundingBox(lon, lat, radius)

	// Points on the cardinal edges of the circle must fall inside.
	north := Haversine(lon, lat, lon, box.MaxLat)
	if north < radius*0.99 {
		t.Fatalf("north edge too close: %f", north)
	}
	east := Haversine(lon, lat, box.MaxLon, lat)
	if east < radius*0.99 {
		t.Fatalf("east edge too close: %f", east)
	}
}

func TestCircleRingClosedAndSized(t *testing.T) {
	ring := circleRing(116.4074, 39.9042, 500, 32)
	if len(ring) != 33 {
		t.Fatalf("len=%d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Fatalf("ring not closed: %v vs %v", ring[0], ring[len(ring)-1])
	}
	for _, p := range ring {
		d := Haversine(116.4074, 39.9042, p[0], p[1])
		if math.Abs(d-500) > 25 {
			t.Fatalf("ring point off circle: %f", d)
		}
	}
}

func TestHeightBucketBoundaries(t *testing.T) {
	cases := map[float64]string{
		0:     "0-50m",
		49.9:  "0-50m",
		50:    "50-100m",
		99.9:  "50-100m",
		100:   "100-200m",
		199.9: "100-200m",
		200:   "200m+",
		450:   "200m+",
	}
	for h, want := range cases {
		if got := heightBucket(h); got != want {
			t.Fatalf("heightBucket(%f)=%q want %q", h, got, want)
		}
	}
}

func TestMatchBufferFilters(t *testing.T) {
	b := &types.Building{
		Name:      "国贸大厦",
		Address:   "建国门外大街1号",
		Category:  "商业",
		Height:    330,
		RiskLevel: 2,
	}

	if !matchBufferFilters(b, BufferInput{Category: "商业"}) {
		t.Fatal("category match rejected")
	}
	if matchBufferFilters(b, BufferInput{Category: "住宅"}) {
		t.Fatal("category mismatch accepted")
	}
	minH := 400.0
	if matchBufferFilters(b, BufferInput{MinHeight: &minH}) {
		t.Fatal("min height filter ignored")
	}
	minRisk := 3
	if matchBufferFilters(b, BufferInput{MinRisk: &minRisk}) {
		t.Fatal("min risk filter ignored")
	}
	if !matchBufferFilters(b, BufferInput{Keyword: "国贸"}) {
		t.Fatal("name keyword rejected")
	}
	if !matchBufferFilters(b, BufferInput{Keyword: "建国门"}) {
		t.Fatal("address keyword rejected")
	}
	if matchBufferFilters(b, BufferInput{Keyword: "机场"}) {
		t.Fatal("unrelated keyword accepted")
	}
}

func TestTravelSpeeds(t *testing.T) {
	if travelSpeeds["driving"] <= travelSpeeds["transit"] {
		t.Fatal("driving should be faster than transit")
	}
	if travelSpeeds["transit"] <= travelSpeeds["walking"] {
		t.Fatal("transit should be faster than walking")
	}
}
