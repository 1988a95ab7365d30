package trips

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"contravento/internal/config"
	"contravento/internal/gpx"
	"contravento/internal/models"
	"contravento/internal/simplify"
	"contravento/internal/telemetry"
)

// Stage is the assembler's position in its state machine. FAILED is terminal
// and reachable from any non-terminal stage.
type Stage string

const (
	StageStarted    Stage = "STARTED"
	StageParsing    Stage = "PARSING"
	StageComputing  Stage = "COMPUTING"
	StagePersisting Stage = "PERSISTING"
	StageCommitted  Stage = "COMMITTED"
	StageFailed     Stage = "FAILED"
)

// TripInput is the user-authored metadata accompanying an upload.
type TripInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Private     bool       `json:"private"`
	POIs        []POIInput `json:"pois"`
}

type POIInput struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	PhotoURLs []string `json:"photo_urls"`
}

// Upload is the raw track file as handed over by the HTTP layer.
type Upload struct {
	FileName     string
	Data         []byte
	DeclaredSize int64
}

// Summary is the caller-facing digest of the processed track.
type Summary struct {
	DistanceKm     float64           `json:"distance_km"`
	ElevationGainM float64           `json:"elevation_gain_m"`
	ElevationLossM float64           `json:"elevation_loss_m"`
	Difficulty     models.Difficulty `json:"difficulty"`
	PointCount     int               `json:"point_count"`
}

// Result is returned only after a successful commit.
type Result struct {
	TripID  uint    `json:"trip_id"`
	Summary Summary `json:"gpx_summary"`
}

// Assembler orchestrates parse, compute, simplify and the single all-or-
// nothing write of the trip record graph. Each Assemble call is an
// independent unit of work creating fresh root entities, so concurrent calls
// need no locking beyond the database transaction itself.
type Assembler struct {
	db  *gorm.DB
	cfg config.ProcessingConfig
}

func NewAssembler(db *gorm.DB, cfg config.ProcessingConfig) *Assembler {
	return &Assembler{db: db, cfg: cfg}
}

// Assemble runs the full pipeline for one upload. On any failure nothing is
// persisted: parse/compute failures abort before the write boundary opens,
// and persistence failures roll the whole boundary back. The returned error
// is always a *ProcessingError.
func (a *Assembler) Assemble(ctx context.Context, userID uint, input TripInput, upload Upload) (*Result, error) {
	stage := StageStarted
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "file": upload.FileName})

	fail := func(perr *ProcessingError) (*Result, error) {
		log.WithError(perr.Err).WithFields(logrus.Fields{"stage": stage, "kind": perr.Kind}).Warn("trip assembly failed")
		stage = StageFailed
		return nil, perr
	}

	stage = StageParsing
	track, err := gpx.Parse(upload.Data, upload.DeclaredSize, a.cfg.MaxUploadBytes)
	if err != nil {
		return fail(classifyParseError(err))
	}

	// Calculator and Simplifier read the same immutable point sequence and
	// write disjoint outputs; order between them does not matter.
	stage = StageComputing
	stats := telemetry.Compute(track, a.cfg)
	simplified := simplify.Simplify(track.Points, a.cfg.SimplifyTolerance, a.cfg.MaxSimplifiedPoints)

	lineWKB, err := wkb.Marshal(simplified.LineString(), binary.LittleEndian)
	if err != nil {
		return fail(persistenceError("simplified track geometry", err))
	}

	// Cancellation is free until the write boundary opens. After Begin the
	// transaction runs to commit or rollback even if the caller has given up,
	// so a caller timeout can never leave partial state behind.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fail(&ProcessingError{Kind: KindTimeout, Message: "caller gave up before persisting", Err: ctxErr})
	}

	stage = StagePersisting
	tx := a.db.Begin()
	if tx.Error != nil {
		return fail(persistenceError("transaction begin", tx.Error))
	}

	trip := models.Trip{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Private:     input.Private,
		Status:      models.TripStatusDraft,
	}
	if err := tx.Create(&trip).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("trip", err))
	}

	file := models.GPXFile{
		TripID:       trip.ID,
		StorageKey:   uuid.NewString(),
		FileName:     upload.FileName,
		RawSizeBytes: int64(len(upload.Data)),
		Status:       models.ProcessingPending,
	}
	if err := tx.Create(&file).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("gpx file", err))
	}

	trackPoints := make([]models.TrackPoint, len(track.Points))
	for i, p := range track.Points {
		trackPoints[i] = models.TrackPoint{
			GPXFileID: file.ID,
			Seq:       i,
			Latitude:  p.Lat,
			Longitude: p.Lon,
			Elevation: p.Elevation,
			Timestamp: p.Time,
		}
	}
	if err := tx.CreateInBatches(trackPoints, 500).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("trackpoints", err))
	}

	record := models.RouteStatistics{
		GPXFileID:       file.ID,
		TotalDistanceKm: stats.TotalDistanceKm,
		ElevationGainM:  stats.ElevationGainM,
		ElevationLossM:  stats.ElevationLossM,
		Difficulty:      stats.Difficulty,
		HasElevation:    stats.HasElevation,
	}
	if stats.Duration != nil {
		secs := int64(stats.Duration.Seconds())
		record.DurationSec = &secs
	}
	record.AvgSpeedKmh = stats.AvgSpeedKmh
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("route statistics", err))
	}

	simplifiedTrack := models.SimplifiedTrack{
		GPXFileID:  file.ID,
		PointCount: len(simplified.Coords),
		Tolerance:  simplified.Tolerance,
		Geometry:   lineWKB,
	}
	if err := tx.Create(&simplifiedTrack).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("simplified track", err))
	}

	for _, poi := range input.POIs {
		// Accepting-direction check so NaN coordinates are rejected too.
		if !(poi.Latitude >= -90 && poi.Latitude <= 90) || !(poi.Longitude >= -180 && poi.Longitude <= 180) {
			tx.Rollback()
			return fail(persistenceError("poi", &gpx.CoordinateError{Lat: poi.Latitude, Lon: poi.Longitude}))
		}
		record := models.PointOfInterest{
			TripID:    trip.ID,
			Name:      poi.Name,
			Latitude:  poi.Latitude,
			Longitude: poi.Longitude,
		}
		for _, url := range poi.PhotoURLs {
			record.Photos = append(record.Photos, models.POIPhoto{URL: url})
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return fail(persistenceError("poi", err))
		}
	}

	// The file only ever becomes PROCESSED inside the same boundary that
	// created its statistics, polyline and trackpoints, so a PROCESSED file
	// without them can never be observed.
	if err := tx.Model(&file).Update("status", models.ProcessingProcessed).Error; err != nil {
		tx.Rollback()
		return fail(persistenceError("gpx file status", err))
	}

	if err := tx.Commit().Error; err != nil {
		return fail(persistenceError("commit", err))
	}
	stage = StageCommitted

	log.WithFields(logrus.Fields{
		"trip_id":     trip.ID,
		"points":      len(track.Points),
		"distance_km": stats.TotalDistanceKm,
		"difficulty":  stats.Difficulty,
	}).Info("trip assembled")

	return &Result{
		TripID: trip.ID,
		Summary: Summary{
			DistanceKm:     stats.TotalDistanceKm,
			ElevationGainM: stats.ElevationGainM,
			ElevationLossM: stats.ElevationLossM,
			Difficulty:     stats.Difficulty,
			PointCount:     len(track.Points),
		},
	}, nil
}
