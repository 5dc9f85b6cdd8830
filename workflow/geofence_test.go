package workflow

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistances(t *testing.T) {
	if d := HaversineMeters(37.7749, -122.4194, 37.7749, -122.4194); d != 0 {
		t.Errorf("same point: expected 0, got %f", d)
	}

	// One degree of latitude is ~111.19 km.
	d := HaversineMeters(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Errorf("one degree latitude: expected ~111195m, got %f", d)
	}
}

func f64(v float64) *float64 { return &v }

func TestGeofence_RejectsOutsideRadius(t *testing.T) {
	siteLat, siteLng := 37.7749, -122.4194
	// ~150m north of the site.
	workerLat := siteLat + 150.0/111195.0

	res := ValidateGeofence(f64(workerLat), f64(siteLng), f64(siteLat), f64(siteLng), 100)
	if res.Valid {
		t.Fatalf("expected rejection at ~150m with 100m radius, got %+v", res)
	}
	if res.Skipped {
		t.Errorf("expected a real check, got skipped")
	}
	if math.Abs(res.DistanceMeters-150) > 1 {
		t.Errorf("expected distance ~150m, got %f", res.DistanceMeters)
	}
	if res.MaxDistanceMeters != 100 {
		t.Errorf("expected maxDistance 100, got %f", res.MaxDistanceMeters)
	}
}

func TestGeofence_AcceptsInsideRadius(t *testing.T) {
	siteLat, siteLng := 37.7749, -122.4194
	// ~80m north of the site.
	workerLat := siteLat + 80.0/111195.0

	res := ValidateGeofence(f64(workerLat), f64(siteLng), f64(siteLat), f64(siteLng), 100)
	if !res.Valid {
		t.Fatalf("expected acceptance at ~80m with 100m radius, got %+v", res)
	}
	if math.Abs(res.DistanceMeters-80) > 1 {
		t.Errorf("expected distance ~80m, got %f", res.DistanceMeters)
	}
}

func TestGeofence_SkippedWhenCoordinatesMissing(t *testing.T) {
	cases := []struct {
		name                                   string
		workerLat, workerLng, siteLat, siteLng *float64
	}{
		{"no site coordinates", f64(37.7749), f64(-122.4194), nil, nil},
		{"no worker coordinates", nil, nil, f64(37.7749), f64(-122.4194)},
		{"nothing at all", nil, nil, nil, nil},
	}
	for _, tc := range cases {
		res := ValidateGeofence(tc.workerLat, tc.workerLng, tc.siteLat, tc.siteLng, 100)
		if !res.Valid || !res.Skipped {
			t.Errorf("%s: expected valid+skipped, got %+v", tc.name, res)
		}
	}
}
