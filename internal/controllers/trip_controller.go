package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"contravento/internal/config"
	"contravento/internal/models"
	"contravento/internal/trips"
)

// CreateTrip ingests a multipart upload (metadata JSON + track file) and runs
// the full assembly transaction. The response always carries success plus
// either trip_id/gpx_summary or a machine-readable error kind.
func CreateTrip(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var input trips.TripInput
	metadata := c.PostForm("metadata")
	if err := json.Unmarshal([]byte(metadata), &input); err != nil || input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"kind": "InvalidMetadata", "message": "metadata must be JSON with a title"}})
		return
	}

	fileHeader, err := c.FormFile("track")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"kind": "MissingTrack", "message": "track file is required"}})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"kind": "MissingTrack", "message": err.Error()}})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"kind": "UploadRead", "message": err.Error()}})
		return
	}

	assembler := trips.NewAssembler(config.DB, config.DefaultProcessingConfig())
	result, err := assembler.Assemble(c.Request.Context(), userID, input, trips.Upload{
		FileName:     fileHeader.Filename,
		Data:         data,
		DeclaredSize: fileHeader.Size,
	})
	if err != nil {
		var perr *trips.ProcessingError
		if errors.As(err, &perr) {
			c.JSON(statusForKind(perr.Kind), gin.H{"success": false, "error": gin.H{"kind": perr.Kind, "message": perr.Message}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"kind": "Internal", "message": err.Error()}})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "trip_id": result.TripID, "gpx_summary": result.Summary})
}

// statusForKind maps the processing error taxonomy onto HTTP statuses.
// PersistenceFailure stays generic; the diagnostic detail is in the log, not
// the response.
func statusForKind(kind trips.ErrorKind) int {
	switch kind {
	case trips.KindOversizedInput:
		return http.StatusRequestEntityTooLarge
	case trips.KindMalformedTrack, trips.KindInvalidCoordinate:
		return http.StatusUnprocessableEntity
	case trips.KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ListTrips returns the authenticated traveler's trips with statistics and
// POIs preloaded.
func ListTrips(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var tripList []models.Trip
	config.DB.
		Preload("GPXFile.Statistics").
		Preload("POIs.Photos").
		Where("user_id = ?", userID).
		Find(&tripList)

	c.JSON(http.StatusOK, gin.H{"trips": tripList})
}

// GetTrip returns a single owned trip.
func GetTrip(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.
		Preload("GPXFile.Statistics").
		Preload("POIs.Photos").
		Where("id = ? AND user_id = ?", tripID, userID).
		First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// GetTripTrack serves the simplified polyline as GeoJSON. The rendering layer
// only ever sees this; raw trackpoints are never exposed for display.
func GetTripTrack(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.
		Preload("GPXFile.SimplifiedTrack").
		Where("id = ? AND user_id = ?", tripID, userID).
		First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if trip.GPXFile == nil || trip.GPXFile.SimplifiedTrack == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip has no track"})
		return
	}

	st := trip.GPXFile.SimplifiedTrack
	line, err := wkb.Unmarshal(st.Geometry)
	if err != nil {
		logrus.WithError(err).Error("GetTripTrack: stored geometry unreadable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored geometry unreadable"})
		return
	}
	geoJSON, err := geojson.Marshal(line)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"point_count": st.PointCount,
		"tolerance":   st.Tolerance,
		"geometry":    json.RawMessage(geoJSON),
	})
}

// PublishTrip flips a draft to PUBLISHED.
func PublishTrip(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.Where("id = ? AND user_id = ?", tripID, userID).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	if err := config.DB.Model(&trip).Update("status", models.TripStatusPublished).Error; err != nil {
		logrus.WithError(err).Error("PublishTrip: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip_id": trip.ID, "status": models.TripStatusPublished})
}

// DeleteTrip removes a trip and its whole owned record graph in one
// transaction.
func DeleteTrip(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	tripID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var trip models.Trip
	if err := config.DB.Preload("GPXFile").Where("id = ? AND user_id = ?", tripID, userID).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if trip.GPXFile != nil {
		fileID := trip.GPXFile.ID
		if err := tx.Where("gpx_file_id = ?", fileID).Delete(&models.TrackPoint{}).Error; err != nil {
			tx.Rollback()
			logrus.WithError(err).Error("DeleteTrip: failed deleting trackpoints")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trackpoints"})
			return
		}
		if err := tx.Where("gpx_file_id = ?", fileID).Delete(&models.RouteStatistics{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete statistics"})
			return
		}
		if err := tx.Where("gpx_file_id = ?", fileID).Delete(&models.SimplifiedTrack{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete simplified track"})
			return
		}
		if err := tx.Delete(&models.GPXFile{}, fileID).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gpx file"})
			return
		}
	}

	var poiIDs []uint
	tx.Model(&models.PointOfInterest{}).Where("trip_id = ?", trip.ID).Pluck("id", &poiIDs)
	if len(poiIDs) > 0 {
		if err := tx.Where("poi_id IN ?", poiIDs).Delete(&models.POIPhoto{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete POI photos"})
			return
		}
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&models.PointOfInterest{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete POIs"})
			return
		}
	}

	if err := tx.Delete(&models.Trip{}, trip.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted successfully"})
}
