package simplify

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"contravento/internal/gpx"
)

// Result is the bounded display polyline for one track. Elevation is dropped;
// only the 2D (lon, lat) projection is simplified.
type Result struct {
	// Coords are XY coordinates (lon, lat) in recording order, always
	// starting and ending on the input's first and last points.
	Coords []geom.Coord

	// Tolerance is the tolerance (degrees) actually applied, after any
	// doubling needed to respect the point cap.
	Tolerance float64
}

// Simplify runs Douglas-Peucker at the configured tolerance. If the result
// still exceeds maxPoints, the tolerance is doubled and the pass re-run on the
// original input until the cap holds; cap enforcement is tolerance-driven, so
// the output is always a pure function of (input, tolerance).
func Simplify(points []gpx.RawPoint, tolerance float64, maxPoints int) Result {
	if maxPoints < 2 {
		maxPoints = 2
	}

	coords := douglasPeucker(points, tolerance)
	for len(coords) > maxPoints {
		// A zero (or negative) tolerance would double to zero forever; seed a
		// tiny positive one so cap enforcement always terminates.
		if tolerance <= 0 {
			tolerance = 1e-12
		} else {
			tolerance *= 2
		}
		coords = douglasPeucker(points, tolerance)
	}
	return Result{Coords: coords, Tolerance: tolerance}
}

// LineString packs a result into a go-geom XY LineString for WKB storage.
func (r Result) LineString() *geom.LineString {
	return geom.NewLineString(geom.XY).MustSetCoords(r.Coords)
}

type span struct {
	first, last int
}

// douglasPeucker keeps every point whose perpendicular distance from the local
// chord exceeds the tolerance. It runs on an explicit work stack of index
// ranges instead of recursing, so pathologically long tracks cannot blow the
// call stack; the kept set is identical to the recursive formulation.
func douglasPeucker(points []gpx.RawPoint, tolerance float64) []geom.Coord {
	n := len(points)
	if n == 0 {
		return nil
	}
	if n <= 2 {
		out := make([]geom.Coord, 0, n)
		for _, p := range points {
			out = append(out, geom.Coord{p.Lon, p.Lat})
		}
		return out
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		chordStart := geom.Coord{points[s.first].Lon, points[s.first].Lat}
		chordEnd := geom.Coord{points[s.last].Lon, points[s.last].Lat}

		// Strict > on both comparisons: ties on maximum distance resolve to
		// the first point in sequence order, keeping output reproducible.
		maxDist := -1.0
		maxIdx := -1
		for i := s.first + 1; i < s.last; i++ {
			d := xy.DistanceFromPointToLine(geom.Coord{points[i].Lon, points[i].Lat}, chordStart, chordEnd)
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxDist > tolerance {
			keep[maxIdx] = true
			stack = append(stack, span{s.first, maxIdx}, span{maxIdx, s.last})
		}
	}

	out := make([]geom.Coord, 0, n)
	for i, kept := range keep {
		if kept {
			out = append(out, geom.Coord{points[i].Lon, points[i].Lat})
		}
	}
	return out
}
