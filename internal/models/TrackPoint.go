package models

import (
	"time"

	"gorm.io/gorm"
)

// TrackPoint is one raw recorded sample, persisted 1:N under its GPXFile in
// recording order. Created once, never mutated, removed only by cascading
// deletion of the parent.
type TrackPoint struct {
	gorm.Model

	GPXFileID uint       `json:"gpx_file_id" gorm:"index"`
	Seq       int        `json:"seq"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Elevation *float64   `json:"elevation,omitempty"` // meters, absent when the source lacked <ele>
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
