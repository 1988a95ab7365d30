package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusDraft     TripStatus = "DRAFT"
	TripStatusPublished TripStatus = "PUBLISHED"
)

// Trip is the user-authored diary entry. It optionally owns exactly one GPXFile;
// once attached the file is never reassigned to another trip.
type Trip struct {
	gorm.Model

	UserID      uint       `json:"user_id" gorm:"index"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Private     bool       `json:"private"`
	Status      TripStatus `json:"status" gorm:"default:DRAFT"`

	GPXFile *GPXFile          `gorm:"foreignKey:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"gpx_file,omitempty"`
	POIs    []PointOfInterest `gorm:"foreignKey:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"pois,omitempty"`
}
