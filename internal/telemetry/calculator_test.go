package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"contravento/internal/config"
	"contravento/internal/gpx"
	"contravento/internal/models"
)

func pt(lat, lon float64, ele *float64, ts *time.Time) gpx.RawPoint {
	return gpx.RawPoint{Lat: lat, Lon: lon, Elevation: ele, Time: ts}
}

func f(v float64) *float64 { return &v }

func at(minutes int) *time.Time {
	t := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	return &t
}

func equatorTrack() *gpx.Track {
	return &gpx.Track{
		Points: []gpx.RawPoint{
			pt(0, 0, f(0), at(0)),
			pt(0, 0.001, f(10), at(10)),
			pt(0, 0.002, f(0), at(20)),
		},
		HasElevation:  true,
		HasTimestamps: true,
	}
}

func TestComputeEquatorTrack(t *testing.T) {
	stats := Compute(equatorTrack(), config.DefaultProcessingConfig())

	// Two segments of ~0.111 km each at the equator.
	require.InDelta(t, 0.222, stats.TotalDistanceKm, 0.001)
	require.Equal(t, 10.0, stats.ElevationGainM)
	require.Equal(t, 10.0, stats.ElevationLossM)
	require.True(t, stats.HasElevation)
	require.NotNil(t, stats.Duration)
	require.Equal(t, 20*time.Minute, *stats.Duration)
	require.NotNil(t, stats.AvgSpeedKmh)
	require.InDelta(t, 0.667, *stats.AvgSpeedKmh, 0.01)
	require.Equal(t, models.DifficultyEasy, stats.Difficulty)
}

func TestComputeIsDeterministic(t *testing.T) {
	cfg := config.DefaultProcessingConfig()
	first := Compute(equatorTrack(), cfg)
	second := Compute(equatorTrack(), cfg)
	require.Equal(t, first, second)
}

func TestComputeFewerThanTwoPoints(t *testing.T) {
	cfg := config.DefaultProcessingConfig()

	single := &gpx.Track{Points: []gpx.RawPoint{pt(45, 7, f(1000), at(0))}, HasElevation: true, HasTimestamps: true}
	stats := Compute(single, cfg)
	require.Zero(t, stats.TotalDistanceKm)
	require.Zero(t, stats.ElevationGainM)
	require.Nil(t, stats.Duration)
	require.Nil(t, stats.AvgSpeedKmh)
	require.Equal(t, models.DifficultyEasy, stats.Difficulty)
}

func TestComputeElevationGuard(t *testing.T) {
	// One point without elevation: the parser clears the file flag, and no
	// partial gain/loss sum may survive.
	track := &gpx.Track{
		Points: []gpx.RawPoint{
			pt(0, 0, f(0), nil),
			pt(0, 0.001, nil, nil),
			pt(0, 0.002, f(500), nil),
		},
		HasElevation:  false,
		HasTimestamps: false,
	}
	stats := Compute(track, config.DefaultProcessingConfig())
	require.False(t, stats.HasElevation)
	require.Zero(t, stats.ElevationGainM)
	require.Zero(t, stats.ElevationLossM)
	require.Nil(t, stats.Duration)
}

func TestComputeOutOfOrderTimestampsDropDuration(t *testing.T) {
	// Last timestamp before the first is recorder clock garbage: no duration
	// (and certainly not a negative one), no average speed.
	track := &gpx.Track{
		Points: []gpx.RawPoint{
			pt(0, 0, f(0), at(20)),
			pt(0, 0.001, f(10), at(10)),
			pt(0, 0.002, f(0), at(0)),
		},
		HasElevation:  true,
		HasTimestamps: true,
	}
	stats := Compute(track, config.DefaultProcessingConfig())
	require.Nil(t, stats.Duration)
	require.Nil(t, stats.AvgSpeedKmh)
	require.InDelta(t, 0.222, stats.TotalDistanceKm, 0.001)
}

func TestComputeNoTimestampsNoSpeed(t *testing.T) {
	track := equatorTrack()
	track.HasTimestamps = false
	stats := Compute(track, config.DefaultProcessingConfig())
	require.Nil(t, stats.Duration)
	require.Nil(t, stats.AvgSpeedKmh)
}

func TestClassifyThresholdsAreConfiguration(t *testing.T) {
	thresholds := config.DifficultyThresholds{
		EasyMaxKm: 30, EasyMaxGainM: 300,
		ModerateMaxKm: 80, ModerateGainM: 1000,
		HardMaxKm: 150, HardMaxGainM: 2500,
	}

	cases := []struct {
		name   string
		km     float64
		gain   float64
		expect models.Difficulty
	}{
		{"short flat", 10, 100, models.DifficultyEasy},
		{"short but steep", 10, 500, models.DifficultyModerate},
		{"long moderate", 79, 999, models.DifficultyModerate},
		{"gain pushes to hard", 40, 1800, models.DifficultyHard},
		{"distance pushes to hard", 120, 200, models.DifficultyHard},
		{"beyond hard", 200, 100, models.DifficultyExtreme},
		{"alpine", 60, 3000, models.DifficultyExtreme},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, classify(tc.km, tc.gain, thresholds))
		})
	}

	// Tightened thresholds reclassify the same route.
	tight := thresholds
	tight.EasyMaxKm, tight.EasyMaxGainM = 5, 50
	require.Equal(t, models.DifficultyModerate, classify(10, 100, tight))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Jakarta to Bandung, roughly 115-120 km great-circle.
	d := haversineKm(-6.2, 106.816, -6.9175, 107.6191)
	require.Greater(t, d, 100.0)
	require.Less(t, d, 140.0)

	require.Zero(t, haversineKm(3, 3, 3, 3))
}
