package telemetry

import (
	"math"
	"time"

	"contravento/internal/config"
	"contravento/internal/gpx"
	"contravento/internal/models"
)

// meanEarthRadiusKm is the spherical-earth radius used for all geodesic sums.
const meanEarthRadiusKm = 6371.0

// Stats are the aggregate route statistics derived from one parsed track.
// Compute is deterministic: segments are summed in recording order, so the
// same point sequence always produces byte-identical statistics.
type Stats struct {
	TotalDistanceKm float64
	ElevationGainM  float64
	ElevationLossM  float64
	Duration        *time.Duration
	AvgSpeedKmh     *float64
	Difficulty      models.Difficulty
	HasElevation    bool
}

// Compute derives Stats from a parsed track. It never fails on valid parser
// output: a track with fewer than two points yields zero distance and
// duration instead of an error.
func Compute(track *gpx.Track, cfg config.ProcessingConfig) Stats {
	stats := Stats{HasElevation: track.HasElevation}

	for i := 1; i < len(track.Points); i++ {
		prev, cur := track.Points[i-1], track.Points[i]
		stats.TotalDistanceKm += haversineKm(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

		// Raw consecutive deltas, no smoothing: deterministic and testable.
		// Only summed when every point carries elevation, so a partial sum
		// can never masquerade as a real gain/loss figure.
		if track.HasElevation {
			delta := *cur.Elevation - *prev.Elevation
			if delta > 0 {
				stats.ElevationGainM += delta
			} else {
				stats.ElevationLossM += -delta
			}
		}
	}

	if track.HasTimestamps && len(track.Points) >= 2 {
		// A recording whose last timestamp precedes its first is clock
		// garbage; report no duration rather than a negative one.
		if d := track.Points[len(track.Points)-1].Time.Sub(*track.Points[0].Time); d >= 0 {
			stats.Duration = &d
			if hours := d.Hours(); hours > 0 {
				speed := stats.TotalDistanceKm / hours
				stats.AvgSpeedKmh = &speed
			}
		}
	}

	stats.Difficulty = classify(stats.TotalDistanceKm, stats.ElevationGainM, cfg.Difficulty)
	return stats
}

// classify buckets a route by distance and elevation gain. A route stays in a
// class only while both values are under that class's bounds; the worse of
// the two decides.
func classify(distanceKm, gainM float64, t config.DifficultyThresholds) models.Difficulty {
	switch {
	case distanceKm < t.EasyMaxKm && gainM < t.EasyMaxGainM:
		return models.DifficultyEasy
	case distanceKm < t.ModerateMaxKm && gainM < t.ModerateGainM:
		return models.DifficultyModerate
	case distanceKm < t.HardMaxKm && gainM < t.HardMaxGainM:
		return models.DifficultyHard
	default:
		return models.DifficultyExtreme
	}
}

// haversineKm is the great-circle distance between two points on a sphere of
// mean Earth radius.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return meanEarthRadiusKm * c
}
