package models

import (
	"gorm.io/gorm"
)

// SimplifiedTrack is the bounded display polyline derived 1:1 from a GPXFile.
// Geometry is stored as WKB of an XY LineString (elevation dropped) and
// converted to GeoJSON at the API edge.
type SimplifiedTrack struct {
	gorm.Model

	GPXFileID  uint    `json:"gpx_file_id" gorm:"uniqueIndex"`
	PointCount int     `json:"point_count"`
	Tolerance  float64 `json:"tolerance"` // degrees actually applied (after any cap doubling)

	Geometry []byte `gorm:"type:bytea" json:"-"`
}
