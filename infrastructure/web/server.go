// Package web exposes the messaging core over HTTP: a WebSocket endpoint
// for the real-time surface and REST routes for history, presence, and
// health.
package web

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"courier/auth"
	"courier/observability"
	"courier/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	app                  *fiber.App
	log                  *slog.Logger
	service              services.IChatService
	auth                 *auth.Validator
	validate             *validator.Validate
	monitoring           *observability.MonitoringManager
	connectionBufferSize int
}

func NewServer(
	log *slog.Logger,
	service services.IChatService,
	authValidator *auth.Validator,
	monitoring *observability.MonitoringManager,
	connectionBufferSize int,
) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "courier",
			DisableStartupMessage: true,
		}),
		log:                  log,
		service:              service,
		auth:                 authValidator,
		validate:             validator.New(),
		monitoring:           monitoring,
		connectionBufferSize: connectionBufferSize,
	}
	s.app.Use(recover.New())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/conversations/:id/messages", s.handleHistory)
	s.app.Get("/presence/:userID", s.handlePresence)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWS))
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

// App exposes the underlying fiber application for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}
