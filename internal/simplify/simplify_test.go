package simplify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"contravento/internal/gpx"
)

func line(points ...[2]float64) []gpx.RawPoint {
	out := make([]gpx.RawPoint, len(points))
	for i, p := range points {
		out[i] = gpx.RawPoint{Lat: p[0], Lon: p[1]}
	}
	return out
}

func TestStraightLineReducesToTwoPoints(t *testing.T) {
	points := make([]gpx.RawPoint, 500)
	for i := range points {
		points[i] = gpx.RawPoint{Lat: 0, Lon: float64(i) * 0.0001}
	}

	for _, tol := range []float64{1e-9, 1e-4, 0.5} {
		result := Simplify(points, tol, 500)
		require.Len(t, result.Coords, 2, "tolerance %v", tol)
		require.Equal(t, geom.Coord{0, 0}, result.Coords[0])
		require.Equal(t, geom.Coord{0.0499, 0}, result.Coords[1])
	}
}

func TestFirstAndLastAlwaysRetained(t *testing.T) {
	points := line([2]float64{10, 10}, [2]float64{10.5, 10.2}, [2]float64{10.1, 10.9}, [2]float64{11, 11})
	result := Simplify(points, 5, 500) // tolerance so coarse everything interior drops
	require.Len(t, result.Coords, 2)
	require.Equal(t, geom.Coord{10, 10}, result.Coords[0])
	require.Equal(t, geom.Coord{11, 11}, result.Coords[1])
}

func TestOutputNeverLargerThanInput(t *testing.T) {
	points := line([2]float64{0, 0}, [2]float64{1, 0.5}, [2]float64{0, 1}, [2]float64{1, 1.5}, [2]float64{0, 2})
	result := Simplify(points, 1e-9, 500)
	require.LessOrEqual(t, len(result.Coords), len(points))
}

func TestTwoPointSegmentNotSubdivided(t *testing.T) {
	points := line([2]float64{1, 1}, [2]float64{2, 2})
	result := Simplify(points, 1e-9, 500)
	require.Len(t, result.Coords, 2)

	single := Simplify(points[:1], 1e-9, 500)
	require.Len(t, single.Coords, 1)
}

func TestMonotonicityInTolerance(t *testing.T) {
	// A zigzag with varied amplitudes so each tolerance step can only shed
	// points, never regain them.
	points := make([]gpx.RawPoint, 101)
	for i := range points {
		amplitude := 0.0
		switch {
		case i%4 == 1:
			amplitude = 0.001
		case i%4 == 3:
			amplitude = 0.01
		}
		points[i] = gpx.RawPoint{Lat: amplitude, Lon: float64(i) * 0.001}
	}

	prev := len(points) + 1
	for _, tol := range []float64{0, 0.0001, 0.002, 0.05, 1} {
		result := Simplify(points, tol, 10_000)
		require.LessOrEqual(t, len(result.Coords), prev, "tolerance %v", tol)
		prev = len(result.Coords)
	}
}

func TestTiesSplitAtFirstPointInSequence(t *testing.T) {
	// Indices 1 and 2 sit at exactly the same perpendicular distance from the
	// first-to-last chord. The split must land on index 1; index 2 then falls
	// inside the tolerance of the new chord and is dropped.
	points := line(
		[2]float64{0, 0},
		[2]float64{0.6, 1},
		[2]float64{0.6, 2},
		[2]float64{0, 3},
	)
	result := Simplify(points, 0.5, 500)
	require.Equal(t, []geom.Coord{{0, 0}, {1, 0.6}, {3, 0}}, result.Coords)
}

func TestCapDoublesTolerance(t *testing.T) {
	// Every interior point survives the base tolerance, so the cap can only be
	// met by re-running with a doubled tolerance.
	points := make([]gpx.RawPoint, 41)
	for i := range points {
		lat := 0.0
		if i%2 == 1 {
			lat = 1.0
		}
		points[i] = gpx.RawPoint{Lat: lat, Lon: float64(i)}
	}

	base := 0.0001
	result := Simplify(points, base, 5)
	require.LessOrEqual(t, len(result.Coords), 5)
	require.Greater(t, result.Tolerance, base)
	require.Equal(t, geom.Coord{0, 0}, result.Coords[0])
	require.Equal(t, geom.Coord{40, 0}, result.Coords[len(result.Coords)-1])

	// Uncapped, the same input keeps every point.
	uncapped := Simplify(points, base, 10_000)
	require.Len(t, uncapped.Coords, len(points))
}

func TestCapTerminatesWithZeroTolerance(t *testing.T) {
	// Doubling a zero tolerance would never change it; the cap loop must seed
	// a positive tolerance instead of spinning forever.
	points := make([]gpx.RawPoint, 41)
	for i := range points {
		lat := 0.0
		if i%2 == 1 {
			lat = 1.0
		}
		points[i] = gpx.RawPoint{Lat: lat, Lon: float64(i)}
	}

	done := make(chan Result, 1)
	go func() { done <- Simplify(points, 0, 5) }()

	select {
	case result := <-done:
		require.LessOrEqual(t, len(result.Coords), 5)
		require.Greater(t, result.Tolerance, 0.0)
		require.Equal(t, geom.Coord{0, 0}, result.Coords[0])
		require.Equal(t, geom.Coord{40, 0}, result.Coords[len(result.Coords)-1])
	case <-time.After(3 * time.Second):
		t.Fatal("Simplify did not terminate with a zero tolerance and a cap")
	}
}

func TestSimplifyIsDeterministic(t *testing.T) {
	points := make([]gpx.RawPoint, 200)
	for i := range points {
		points[i] = gpx.RawPoint{Lat: float64(i%7) * 0.003, Lon: float64(i) * 0.002}
	}
	first := Simplify(points, 0.001, 50)
	second := Simplify(points, 0.001, 50)
	require.Equal(t, first, second)
}

func TestLineStringRoundTrip(t *testing.T) {
	result := Simplify(line([2]float64{0, 0}, [2]float64{1, 1}), 1e-9, 500)
	ls := result.LineString()
	require.Equal(t, geom.XY, ls.Layout())
	require.Equal(t, 2, ls.NumCoords())
}
