package models

import (
	"gorm.io/gorm"
)

// PointOfInterest is user-annotated, owned by the trip and independent of the
// recorded track geometry. Photo count per POI is unbounded.
type PointOfInterest struct {
	gorm.Model

	TripID    uint    `json:"trip_id" gorm:"index"`
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Photos []POIPhoto `gorm:"foreignKey:POIID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photos,omitempty"`
}

type POIPhoto struct {
	gorm.Model

	POIID   uint   `json:"poi_id" gorm:"index"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}
