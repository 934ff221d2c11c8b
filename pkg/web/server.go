// Package web serves the live dashboard: REST endpoints for the latest
// assessment and trends, a Prometheus scrape endpoint, and a websocket stream
// of status updates.
package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/analysis"
	"github.com/visagekit/visage/pkg/hub"
	"github.com/visagekit/visage/pkg/metrics"
)

// broadcastEvery is how often the status stream checks for a fresh result.
const broadcastEvery = 500 * time.Millisecond

// Server is the dashboard HTTP server.
type Server struct {
	app  *fiber.App
	port string

	worker  *analysis.Worker
	session *analysis.Session
	mets    *metrics.Metrics

	statusHub *hub.Hub
}

// NewServer builds the fiber app and routes.
func NewServer(port string, w *analysis.Worker, s *analysis.Session, m *metrics.Metrics) *Server {
	srv := &Server{
		port:      port,
		worker:    w,
		session:   s,
		mets:      m,
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Visage Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", srv.handleStatus)
	api.Get("/trends", srv.handleTrends)
	api.Get("/history/:metric", srv.handleHistory)
	api.Post("/capture", srv.handleCapture)

	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(srv.handleStatusWS))

	srv.app = app
	return srv
}

// Run serves until the context is canceled. It owns the status hub and the
// broadcast ticker.
func (s *Server) Run(ctx context.Context) error {
	go s.statusHub.Run(ctx)
	go s.broadcastLoop(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- s.app.Listen(":" + s.port)
	}()
	log.Info("dashboard listening", "port", s.port)

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errc:
		return err
	}
}

// broadcastLoop pushes the status payload to websocket clients whenever a new
// analysis result lands.
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(broadcastEvery)
	defer ticker.Stop()

	var lastID string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, ok := s.worker.Latest()
			if !ok || res.ID == lastID || s.statusHub.ClientCount() == 0 {
				continue
			}
			lastID = res.ID
			if err := s.statusHub.BroadcastJSON(s.status()); err != nil {
				log.Warn("status broadcast failed", "error", err)
			}
		}
	}
}

func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	// Push the current status immediately so new clients render right away.
	c.WriteJSON(s.status())
	client.Run()
}
