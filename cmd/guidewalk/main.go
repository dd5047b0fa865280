// guidewalk runs the wearable sidewalk-hazard alert pipeline: camera
// frames in, spoken and haptic alerts out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/guidewalk/go-guidewalk/pkg/guide"
)

func main() {
	// Missing .env is fine; the environment still applies.
	godotenv.Load()

	cfg := parseFlags()

	app, err := guide.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "guidewalk: %v\n", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "guidewalk: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags overlays command line flags on the environment config.
func parseFlags() guide.Config {
	cfg := guide.FromEnv()

	source := flag.String("camera", cfg.Camera.Source, "Camera device index or video file path")
	model := flag.String("model", cfg.YOLO.ModelPath, "ONNX model path")
	noModel := flag.Bool("no-model", !cfg.ModelEnabled, "Disable the object detection model")
	noSurface := flag.Bool("no-surface", !cfg.SurfaceEnabled, "Disable walkable-surface drift warnings")
	noMonitor := flag.Bool("no-monitor", !cfg.MonitorEnabled, "Disable the caregiver monitor server")
	speech := flag.String("speech", cfg.Speech, "Speech backend: espeak, console")
	hapticPort := flag.String("haptic-port", cfg.HapticPort, "Serial port of the vibration band (empty disables)")
	monitorPort := flag.String("monitor-port", cfg.Web.Port, "Monitor server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite session store path (empty disables)")
	logPath := flag.String("log", cfg.LogPath, "JSONL detection log path (empty disables)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fps := flag.Int("fps", cfg.Camera.TargetFPS, "Playback pacing for file sources, 0 for unpaced")

	flag.Parse()

	cfg.Camera.Source = *source
	cfg.Camera.TargetFPS = *fps
	cfg.YOLO.ModelPath = *model
	cfg.ModelEnabled = !*noModel
	cfg.SurfaceEnabled = !*noSurface
	cfg.MonitorEnabled = !*noMonitor
	cfg.Speech = *speech
	cfg.HapticPort = *hapticPort
	cfg.Web.Port = *monitorPort
	cfg.DBPath = *dbPath
	cfg.LogPath = *logPath
	cfg.LogLevel = *logLevel
	cfg.JSONL.Path = cfg.LogPath
	cfg.SQLite.Path = cfg.DBPath

	return cfg
}
