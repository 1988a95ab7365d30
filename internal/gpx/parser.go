package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"
)

// Parse errors. InvalidCoordinate is a subtype of malformed input: a
// *CoordinateError unwraps to ErrMalformed, so errors.Is(err, ErrMalformed)
// holds for both and the whole file is rejected either way.
var (
	ErrOversized = errors.New("track upload exceeds size limit")
	ErrMalformed = errors.New("malformed track document")
)

// CoordinateError reports a trackpoint outside the valid lat/lon range.
// There is no partial acceptance: one bad point fails the whole parse.
type CoordinateError struct {
	Seq int
	Lat float64
	Lon float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("trackpoint %d has out-of-range coordinate (%.6f, %.6f)", e.Seq, e.Lat, e.Lon)
}

func (e *CoordinateError) Unwrap() error { return ErrMalformed }

// RawPoint is one recorded sample in file order. Elevation and Time are
// optional per point; presence is summarized once into the Track flags rather
// than re-checked downstream.
type RawPoint struct {
	Lat       float64
	Lon       float64
	Elevation *float64
	Time      *time.Time
}

// Track is the parsed, immutable point sequence of one uploaded file.
type Track struct {
	Points []RawPoint

	// HasElevation is false as soon as ANY point lacks <ele>, so partial
	// elevation never leaks into gain/loss sums.
	HasElevation bool

	// HasTimestamps is false as soon as ANY point lacks a usable <time>.
	HasTimestamps bool
}

// GPX document shape. Multiple <trk> and <trkseg> elements are flattened in
// file order; unknown elements and extension namespaces are ignored by the
// decoder, not rejected.
type gpxDoc struct {
	XMLName xml.Name `xml:"gpx"`
	Tracks  []struct {
		Name     string `xml:"name"`
		Segments []struct {
			Points []gpxPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

type gpxPoint struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele"`
	Time      string   `xml:"time"`
}

// Parse decodes uploaded bytes into a Track. The size cap is enforced against
// both the declared size and the actual buffer before any decoding starts, so
// oversized uploads are rejected cheaply.
func Parse(data []byte, declaredSize int64, maxBytes int64) (*Track, error) {
	if declaredSize > maxBytes || int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrOversized, max(declaredSize, int64(len(data))), maxBytes)
	}

	var doc gpxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	track := &Track{HasElevation: true, HasTimestamps: true}
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				// Written in the accepting direction so NaN (which fails every
				// comparison) is rejected along with out-of-range values.
				if !(pt.Lat >= -90 && pt.Lat <= 90) || !(pt.Lon >= -180 && pt.Lon <= 180) {
					return nil, &CoordinateError{Seq: len(track.Points), Lat: pt.Lat, Lon: pt.Lon}
				}
				raw := RawPoint{Lat: pt.Lat, Lon: pt.Lon, Elevation: pt.Elevation}
				if pt.Elevation == nil {
					track.HasElevation = false
				}
				if ts, ok := parseTime(pt.Time); ok {
					raw.Time = &ts
				} else {
					track.HasTimestamps = false
				}
				track.Points = append(track.Points, raw)
			}
		}
	}

	if len(track.Points) == 0 {
		return nil, fmt.Errorf("%w: no trackpoints", ErrMalformed)
	}
	return track, nil
}

// parseTime accepts the RFC3339 timestamps GPX writers emit, with or without
// fractional seconds. Unparseable or missing times make the point timestamp
// absent rather than failing the file.
func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
