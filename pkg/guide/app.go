package guide

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/alert"
	"github.com/guidewalk/go-guidewalk/pkg/camera"
	"github.com/guidewalk/go-guidewalk/pkg/detect"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/pipeline"
	"github.com/guidewalk/go-guidewalk/pkg/store"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
	"github.com/guidewalk/go-guidewalk/pkg/web"
)

// App owns the assembled system.
type App struct {
	cfg    Config
	logger *slog.Logger

	pipe    *pipeline.Pipeline
	speech  tts.Provider
	haptics haptic.Driver
	monitor *web.Server
	stores  []store.Store
}

// New builds the application from config. Construction fails on
// invalid configuration or a missing camera; optional subsystems
// (model, haptics, monitor, persistence) degrade with a warning.
func New(cfg Config) (*App, error) {
	log.Init(cfg.LogLevel)
	logger := log.Component("app")

	app := &App{cfg: cfg, logger: logger}

	source, err := camera.NewCapture(cfg.Camera)
	if err != nil {
		return nil, err
	}

	detectors, err := app.buildDetectors()
	if err != nil {
		source.Close()
		return nil, err
	}

	var surface detect.SurfaceDetector
	if cfg.SurfaceEnabled {
		surface = detect.NewSurfaceEdgeDetector(cfg.Pipeline.Surface)
	}

	app.speech = app.buildSpeech()
	app.haptics = app.buildHaptics()
	dispatcher := alert.NewDispatcher(app.speech, app.haptics)

	records, sessionID := app.buildStores()

	var onDecision func(alert.Decision)
	var onPreview func([]byte)
	if cfg.MonitorEnabled {
		var monErr error
		app.monitor, monErr = web.NewServer(cfg.Web, func() pipeline.Snapshot {
			return app.pipe.SnapshotState()
		}, sessionID)
		if monErr != nil {
			logger.Warn("monitor disabled", "error", monErr)
		} else {
			onDecision = app.monitor.PublishDecision
			onPreview = app.monitor.PublishPreview
		}
	}

	pipe, err := pipeline.New(cfg.Pipeline, pipeline.Options{
		Source:     source,
		Detectors:  detectors,
		Surface:    surface,
		Dispatcher: dispatcher,
		Records:    records,
		OnDecision: onDecision,
		OnPreview:  onPreview,
	})
	if err != nil {
		source.Close()
		return nil, err
	}
	app.pipe = pipe
	return app, nil
}

// Run executes the pipeline until the context ends. A video file
// source ending cleanly is a normal exit, not an error.
func (a *App) Run(ctx context.Context) error {
	if a.monitor != nil {
		go func() {
			if err := a.monitor.Start(); err != nil {
				a.logger.Warn("monitor server stopped", "error", err)
			}
		}()
	}

	err := a.pipe.Run(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown releases outputs and flushes persistence.
func (a *App) Shutdown() {
	if a.monitor != nil {
		if err := a.monitor.Shutdown(); err != nil {
			a.logger.Warn("monitor shutdown failed", "error", err)
		}
	}
	for _, s := range a.stores {
		if err := s.Close(); err != nil {
			a.logger.Warn("store close failed", "error", err)
		}
	}
	if a.speech != nil {
		a.speech.Close()
	}
	if a.haptics != nil {
		a.haptics.Close()
	}
}

func (a *App) buildDetectors() ([]detect.Detector, error) {
	detectors := []detect.Detector{
		detect.NewStairDetector(a.cfg.Pipeline.Stairs),
		detect.NewPotholeDetector(a.cfg.Pipeline.Potholes),
	}

	if a.cfg.ModelEnabled {
		yolo, err := detect.NewYOLO(a.cfg.YOLO)
		if err != nil {
			a.logger.Warn("model detector disabled", "error", err)
		} else {
			detectors = append(detectors, detect.NewModelAdapter(yolo, a.cfg.Pipeline.Adapter))
		}
	}
	if len(detectors) == 0 {
		return nil, fmt.Errorf("guide: no detectors available")
	}
	return detectors, nil
}

func (a *App) buildSpeech() tts.Provider {
	if a.cfg.Speech == "espeak" {
		p, err := tts.NewEspeak(a.cfg.Espeak)
		if err == nil {
			return p
		}
		a.logger.Warn("espeak unavailable, using console speech", "error", err)
	}
	return tts.NewConsole()
}

func (a *App) buildHaptics() haptic.Driver {
	if a.cfg.HapticPort == "" {
		return haptic.Disabled()
	}
	cfg := a.cfg.Haptics
	cfg.Port = a.cfg.HapticPort
	d, err := haptic.NewSerialDriver(cfg)
	if err != nil {
		a.logger.Warn("haptics unavailable", "error", err, "port", cfg.Port)
		return haptic.Disabled()
	}
	return d
}

// buildStores assembles the persistence fan-out. Each backend that
// fails to open is skipped with a warning; the pipeline runs without
// persistence if both fail.
func (a *App) buildStores() (store.Store, string) {
	var (
		stores    []store.Store
		sessionID string
	)
	if a.cfg.LogPath != "" {
		jl, err := store.NewJSONL(a.cfg.JSONL)
		if err != nil {
			a.logger.Warn("detection log disabled", "error", err)
		} else {
			stores = append(stores, jl)
		}
	}
	if a.cfg.DBPath != "" {
		db, err := store.NewSQLite(a.cfg.SQLite)
		if err != nil {
			a.logger.Warn("session store disabled", "error", err)
		} else {
			stores = append(stores, db)
			sessionID = db.SessionID()
		}
	}
	a.stores = stores
	if len(stores) == 0 {
		return nil, sessionID
	}
	return store.Multi(stores...), sessionID
}
