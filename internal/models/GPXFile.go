package models

import (
	"gorm.io/gorm"
)

type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "PENDING"
	ProcessingProcessed ProcessingStatus = "PROCESSED"
	ProcessingFailed    ProcessingStatus = "FAILED"
)

// GPXFile owns the full processed record graph of one uploaded track.
// A PROCESSED file always has statistics, a simplified track and at least one
// trackpoint; a FAILED file has none of these and is never attached to a
// visible trip.
type GPXFile struct {
	gorm.Model

	TripID       uint             `json:"trip_id" gorm:"uniqueIndex"`
	StorageKey   string           `json:"storage_key" gorm:"uniqueIndex"` // opaque UUID assigned at upload
	FileName     string           `json:"file_name"`
	RawSizeBytes int64            `json:"raw_size_bytes"`
	Status       ProcessingStatus `json:"processing_status" gorm:"default:PENDING"`

	TrackPoints     []TrackPoint     `gorm:"foreignKey:GPXFileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"track_points,omitempty"`
	Statistics      *RouteStatistics `gorm:"foreignKey:GPXFileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statistics,omitempty"`
	SimplifiedTrack *SimplifiedTrack `gorm:"foreignKey:GPXFileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"simplified_track,omitempty"`
}
