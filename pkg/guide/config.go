// Package guide assembles the full application: camera, detectors,
// pipeline, alert outputs, persistence and the monitor server.
package guide

import (
	"github.com/guidewalk/go-guidewalk/internal/config"
	"github.com/guidewalk/go-guidewalk/pkg/camera"
	"github.com/guidewalk/go-guidewalk/pkg/detect"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/pipeline"
	"github.com/guidewalk/go-guidewalk/pkg/store"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
	"github.com/guidewalk/go-guidewalk/pkg/web"
)

// Config is the application configuration. Flags override environment
// variables, which override defaults.
type Config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string

	// Speech selects the announcement backend: "espeak" or
	// "console".
	Speech string

	// HapticPort is the serial device of the vibration band. Empty
	// disables haptics.
	HapticPort string

	// ModelEnabled loads the object detection model. Disabling it
	// leaves the geometric detectors running, which keeps the device
	// useful when no model file is present.
	ModelEnabled bool

	// SurfaceEnabled runs the walkable-surface drift monitor.
	SurfaceEnabled bool

	// MonitorEnabled serves the caregiver monitor.
	MonitorEnabled bool

	// DBPath enables the SQLite session store when non-empty.
	DBPath string

	// LogPath enables the JSONL detection log when non-empty.
	LogPath string

	Camera   camera.Config
	YOLO     detect.YOLOConfig
	Espeak   tts.EspeakConfig
	Haptics  haptic.SerialConfig
	Pipeline pipeline.Config
	Web      web.Config
	JSONL    store.JSONLConfig
	SQLite   store.SQLiteConfig
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		Speech:         "espeak",
		HapticPort:     "",
		ModelEnabled:   true,
		SurfaceEnabled: true,
		MonitorEnabled: true,
		DBPath:         "guidewalk.db",
		LogPath:        "detections.jsonl",
		Camera:         camera.DefaultConfig(),
		YOLO:           detect.DefaultYOLOConfig(),
		Espeak:         tts.DefaultEspeakConfig(),
		Haptics:        haptic.DefaultSerialConfig(),
		Pipeline:       pipeline.DefaultConfig(),
		Web:            web.DefaultConfig(),
		JSONL:          store.DefaultJSONLConfig(),
		SQLite:         store.DefaultSQLiteConfig(),
	}
}

// FromEnv overlays environment variables onto the defaults.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.LogLevel = config.Env("GUIDEWALK_LOG_LEVEL", cfg.LogLevel)
	cfg.Speech = config.Env("GUIDEWALK_SPEECH", cfg.Speech)
	cfg.HapticPort = config.Env("GUIDEWALK_HAPTIC_PORT", cfg.HapticPort)
	cfg.ModelEnabled = config.EnvBool("GUIDEWALK_MODEL_ENABLED", cfg.ModelEnabled)
	cfg.SurfaceEnabled = config.EnvBool("GUIDEWALK_SURFACE_ENABLED", cfg.SurfaceEnabled)
	cfg.MonitorEnabled = config.EnvBool("GUIDEWALK_MONITOR_ENABLED", cfg.MonitorEnabled)
	cfg.DBPath = config.Env("GUIDEWALK_DB_PATH", cfg.DBPath)
	cfg.LogPath = config.Env("GUIDEWALK_LOG_PATH", cfg.LogPath)

	cfg.Camera.Source = config.Env("GUIDEWALK_CAMERA", cfg.Camera.Source)
	cfg.Camera.Width = config.EnvInt("GUIDEWALK_CAMERA_WIDTH", cfg.Camera.Width)
	cfg.Camera.Height = config.EnvInt("GUIDEWALK_CAMERA_HEIGHT", cfg.Camera.Height)
	cfg.YOLO.ModelPath = config.Env("GUIDEWALK_MODEL", cfg.YOLO.ModelPath)
	cfg.Web.Port = config.Env("GUIDEWALK_MONITOR_PORT", cfg.Web.Port)

	cfg.Pipeline.Proximity.ImmediateThreshold = config.EnvFloat("GUIDEWALK_IMMEDIATE_THRESHOLD", cfg.Pipeline.Proximity.ImmediateThreshold)
	cfg.Pipeline.Proximity.NearThreshold = config.EnvFloat("GUIDEWALK_NEAR_THRESHOLD", cfg.Pipeline.Proximity.NearThreshold)
	cfg.Pipeline.Threat.MinPriority = config.EnvInt("GUIDEWALK_MIN_PRIORITY", cfg.Pipeline.Threat.MinPriority)
	cfg.Pipeline.Alert.FloorScore = config.EnvInt("GUIDEWALK_FLOOR_SCORE", cfg.Pipeline.Alert.FloorScore)

	cfg.JSONL.Path = cfg.LogPath
	cfg.SQLite.Path = cfg.DBPath
	return cfg
}
