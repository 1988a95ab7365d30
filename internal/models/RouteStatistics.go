package models

import (
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyModerate Difficulty = "MODERATE"
	DifficultyHard     Difficulty = "HARD"
	DifficultyExtreme  Difficulty = "EXTREME"
)

// RouteStatistics is derived 1:1 from a GPXFile's raw points and is immutable;
// recomputing over the same points yields the same row.
type RouteStatistics struct {
	gorm.Model

	GPXFileID       uint       `json:"gpx_file_id" gorm:"uniqueIndex"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	ElevationGainM  float64    `json:"elevation_gain_m"`
	ElevationLossM  float64    `json:"elevation_loss_m"`
	DurationSec     *int64     `json:"duration_sec,omitempty"` // absent when the source had no timestamps
	AvgSpeedKmh     *float64   `json:"average_speed_kmh,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
	HasElevation    bool       `json:"has_elevation"`
}
