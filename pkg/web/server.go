// Package web serves the caregiver monitor: pipeline status as JSON,
// a live alert stream, and an annotated camera preview over
// websockets. The monitor is read-only; it observes the pipeline and
// never influences it.
package web

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/alert"
	"github.com/guidewalk/go-guidewalk/pkg/hub"
	"github.com/guidewalk/go-guidewalk/pkg/pipeline"
)

// Config holds monitor server settings.
type Config struct {
	// Port the HTTP server listens on.
	Port string `json:"port"`
}

// DefaultConfig returns the default monitor port.
func DefaultConfig() Config {
	return Config{Port: "8090"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("web: port is empty")
	}
	return nil
}

// alertEvent is the wire form of a dispatched alert.
type alertEvent struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Class     string    `json:"class,omitempty"`
	Score     int       `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusFunc reports the pipeline's current snapshot.
type StatusFunc func() pipeline.Snapshot

// Server is the monitor HTTP server.
type Server struct {
	cfg    Config
	app    *fiber.App
	logger *slog.Logger

	status    StatusFunc
	sessionID string

	alertHub   *hub.Hub
	previewHub *hub.Hub
}

// NewServer builds the monitor server. status must be safe to call
// from the server's goroutines; sessionID may be empty when no
// session store is configured.
func NewServer(cfg Config, status StatusFunc, sessionID string) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if status == nil {
		return nil, fmt.Errorf("web: status func is required")
	}

	s := &Server{
		cfg:        cfg,
		logger:     log.Component("web"),
		status:     status,
		sessionID:  sessionID,
		alertHub:   hub.New("alerts"),
		previewHub: hub.New("preview"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "guidewalk monitor",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/session", s.handleSession)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s, nil
}

// Start runs the hubs and listens. Blocks until the listener fails
// or Shutdown is called.
func (s *Server) Start() error {
	go s.alertHub.Run()
	go s.previewHub.Run()
	s.logger.Info("monitor listening", "port", s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishDecision broadcasts a dispatched alert to monitor clients.
// Safe to call from the pipeline goroutine; never blocks.
func (s *Server) PublishDecision(d alert.Decision) {
	ev := alertEvent{
		Kind:      string(d.Kind),
		Message:   d.Message,
		Timestamp: d.Timestamp,
	}
	if d.Selected != nil {
		ev.Class = d.Selected.Detection.Class
		ev.Score = d.Selected.Score
	}
	if err := s.alertHub.BroadcastJSON(ev); err != nil {
		s.logger.Warn("alert broadcast failed", "error", err)
	}
}

// PublishPreview broadcasts an annotated JPEG frame.
func (s *Server) PublishPreview(jpeg []byte) {
	s.previewHub.BroadcastBinary(jpeg)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"session_id": s.sessionID})
}

func (s *Server) handleAlertsWS(conn *websocket.Conn) {
	hub.NewClient(s.alertHub, conn).Run()
}

func (s *Server) handlePreviewWS(conn *websocket.Conn) {
	hub.NewClient(s.previewHub, conn).Run()
}
