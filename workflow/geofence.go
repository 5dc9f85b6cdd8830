package workflow

import "math"

const earthRadiusMeters = 6371000.0

// GeofenceResult reports one proximity decision. Skipped is true when either
// coordinate pair was absent: ungeocoded addresses and clients that cannot
// report location do not block check-in.
type GeofenceResult struct {
	Valid             bool
	Skipped           bool
	DistanceMeters    float64
	MaxDistanceMeters float64
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// ValidateGeofence decides whether the worker is close enough to the job
// site to check in.
func ValidateGeofence(workerLat, workerLng, siteLat, siteLng *float64, radiusMeters float64) GeofenceResult {
	if workerLat == nil || workerLng == nil || siteLat == nil || siteLng == nil {
		return GeofenceResult{Valid: true, Skipped: true, MaxDistanceMeters: radiusMeters}
	}
	distance := HaversineMeters(*workerLat, *workerLng, *siteLat, *siteLng)
	return GeofenceResult{
		Valid:             distance <= radiusMeters,
		DistanceMeters:    distance,
		MaxDistanceMeters: radiusMeters,
	}
}
