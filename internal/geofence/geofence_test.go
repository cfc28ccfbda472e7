package geofence

import (
	"math"
	"testing"
)

func dms(deg, min, sec float64) float64 {
	return deg + min/60 + sec/3600
}

// Flinders Peak to Buninyong, the classic Vincenty test line published by
// Geoscience Australia: 54972.271 m on WGS-84-class ellipsoids.
func TestDistanceKnownLine(t *testing.T) {
	lat1, lng1 := -dms(37, 57, 3.72030), dms(144, 25, 29.52440)
	lat2, lng2 := -dms(37, 39, 10.15610), dms(143, 55, 35.38390)

	d, ok := Distance(lat1, lng1, lat2, lng2)
	if !ok {
		t.Fatal("distance did not converge")
	}
	if math.Abs(d-54972.271) > 0.01 {
		t.Fatalf("got %.3f m, want 54972.271 m", d)
	}
}

func TestDistanceCoincident(t *testing.T) {
	d, ok := Distance(22.930758, -82.689342, 22.930758, -82.689342)
	if !ok || d != 0 {
		t.Fatalf("got d=%v ok=%v, want 0 true", d, ok)
	}
}

func TestContainsCenter(t *testing.T) {
	f := Fence{Lat: 22.930758, Lng: -82.689342, RadiusMeters: 200}
	if !f.Contains(f.Lat, f.Lng) {
		t.Fatal("center must be inside")
	}
}

func TestContainsNearbyAndFar(t *testing.T) {
	f := Fence{Lat: 22.930758, Lng: -82.689342, RadiusMeters: 200}

	// ~110 m north of center (1 deg latitude ~ 110.6 km at this latitude).
	near := f.Lat + 0.001
	if !f.Contains(near, f.Lng) {
		t.Fatal("point ~110 m away must be inside a 200 m fence")
	}

	// ~550 m north of center.
	far := f.Lat + 0.005
	if f.Contains(far, f.Lng) {
		t.Fatal("point ~550 m away must be outside a 200 m fence")
	}
}

// The boundary is inclusive: a point at exactly the radius is inside, a
// fence one millimeter tighter excludes it.
func TestContainsBoundaryInclusive(t *testing.T) {
	centerLat, centerLng := 22.930758, -82.689342
	ptLat, ptLng := centerLat+0.0018, centerLng

	d, ok := Distance(centerLat, centerLng, ptLat, ptLng)
	if !ok {
		t.Fatal("distance did not converge")
	}

	exact := Fence{Lat: centerLat, Lng: centerLng, RadiusMeters: d}
	if !exact.Contains(ptLat, ptLng) {
		t.Fatalf("point at exactly radius (%.3f m) must be inside", d)
	}

	tighter := Fence{Lat: centerLat, Lng: centerLng, RadiusMeters: d - 0.001}
	if tighter.Contains(ptLat, ptLng) {
		t.Fatal("point beyond radius must be outside")
	}
}

func TestContainsFailsClosed(t *testing.T) {
	f := Fence{Lat: 22.930758, Lng: -82.689342, RadiusMeters: 200}
	cases := []struct {
		name     string
		lat, lng float64
	}{
		{"lat too high", 91, 0},
		{"lat too low", -90.01, 0},
		{"lng too high", 0, 181},
		{"lng too low", 0, -180.5},
		{"nan lat", math.NaN(), 0},
		{"nan lng", 0, math.NaN()},
	}
	for _, tc := range cases {
		if f.Contains(tc.lat, tc.lng) {
			t.Fatalf("%s: out-of-range coordinates must be rejected", tc.name)
		}
	}
}
