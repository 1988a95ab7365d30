package config

import "strconv"

// DifficultyThresholds are the upper bounds for each class below EXTREME. A
// route stays in a class only while BOTH its distance and its elevation gain
// are under that class's bounds. These are configuration, not constants: every
// value can be overridden from the environment.
type DifficultyThresholds struct {
	EasyMaxKm     float64
	EasyMaxGainM  float64
	ModerateMaxKm float64
	ModerateGainM float64
	HardMaxKm     float64
	HardMaxGainM  float64
}

// ProcessingConfig carries every knob of the track processing engine. It is
// passed by value into each component call so tests can vary it freely; there
// is no process-wide mutable engine state.
type ProcessingConfig struct {
	// MaxUploadBytes is enforced before any parsing happens.
	MaxUploadBytes int64

	// SimplifyTolerance is the Douglas-Peucker tolerance in degrees on the
	// (lon, lat) plane. 0.0001 deg is roughly 11 m at the equator.
	SimplifyTolerance float64

	// MaxSimplifiedPoints caps the display polyline. When a tolerance pass
	// still exceeds it, the tolerance is doubled and the pass re-run.
	MaxSimplifiedPoints int

	Difficulty DifficultyThresholds
}

// DefaultProcessingConfig returns the engine defaults with environment
// overrides applied (GPX_MAX_UPLOAD_BYTES, SIMPLIFY_TOLERANCE_DEG,
// SIMPLIFY_MAX_POINTS).
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		MaxUploadBytes:      getEnvInt64("GPX_MAX_UPLOAD_BYTES", 10<<20),
		SimplifyTolerance:   getEnvFloat("SIMPLIFY_TOLERANCE_DEG", 0.0001),
		MaxSimplifiedPoints: int(getEnvInt64("SIMPLIFY_MAX_POINTS", 500)),
		Difficulty: DifficultyThresholds{
			EasyMaxKm:     30,
			EasyMaxGainM:  300,
			ModerateMaxKm: 80,
			ModerateGainM: 1000,
			HardMaxKm:     150,
			HardMaxGainM:  2500,
		},
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}
