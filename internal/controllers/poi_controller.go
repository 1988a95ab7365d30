package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contravento/internal/config"
	"contravento/internal/models"
)

type poiInput struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Photos    []struct {
		URL     string `json:"url" binding:"required"`
		Caption string `json:"caption"`
	} `json:"photos"`
}

// AddPOI attaches a point of interest (with any number of photos) to an owned
// trip. POIs are independent of the recorded track and may be added at any
// time after assembly.
func AddPOI(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.Where("id = ? AND user_id = ?", tripID, userID).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	var input poiInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !(input.Latitude >= -90 && input.Latitude <= 90) || !(input.Longitude >= -180 && input.Longitude <= 180) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coordinate out of range"})
		return
	}

	poi := models.PointOfInterest{
		TripID:    trip.ID,
		Name:      input.Name,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	for _, photo := range input.Photos {
		poi.Photos = append(poi.Photos, models.POIPhoto{URL: photo.URL, Caption: photo.Caption})
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Create(&poi).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("AddPOI: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create POI failed: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"poi": poi})
}

// ListPOIs returns a trip's POIs with photos.
func ListPOIs(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.Preload("POIs.Photos").Where("id = ? AND user_id = ?", tripID, userID).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pois": trip.POIs})
}
