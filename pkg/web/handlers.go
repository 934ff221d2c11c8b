package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/storage"
)

// statusPayload is the dashboard's view of the pipeline.
type statusPayload struct {
	FaceDetected bool                   `json:"face_detected"`
	Result       *storage.SessionResult `json:"result,omitempty"`
	Session      sessionPayload         `json:"session"`
	CaptureFPS   float64                `json:"capture_fps"`
	AnalysisFPS  float64                `json:"analysis_fps"`
}

type sessionPayload struct {
	State       string  `json:"state"`
	RemainingMs int64   `json:"remaining_ms"`
	Score       float64 `json:"score,omitempty"`
}

func (s *Server) status() statusPayload {
	p := statusPayload{
		CaptureFPS:  float64(s.mets.CaptureFPSx100.Load()) / 100,
		AnalysisFPS: float64(s.mets.AnalysisFPSx100.Load()) / 100,
	}
	if res, ok := s.worker.Latest(); ok {
		p.FaceDetected = true
		p.Result = &res
	}

	state, remaining := s.session.State()
	p.Session.State = state.String()
	p.Session.RemainingMs = remaining.Milliseconds()
	if res, ok := s.session.Result(); ok {
		p.Session.Score = res.Assessment.Score
	}
	return p
}

// handleStatus returns the latest result and session state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// handleTrends returns the per-metric trend directions.
func (s *Server) handleTrends(c *fiber.Ctx) error {
	trends := s.worker.Trends()
	out := make(map[string]string, len(trends))
	for name, t := range trends {
		out[name] = t.String()
	}
	return c.JSON(out)
}

// handleHistory returns the recorded values for one tracked metric.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	name := c.Params("metric")
	switch name {
	case health.MetricSymmetry, health.MetricEyesLevel, health.MetricFatigue, health.MetricTexture:
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown metric " + name,
		})
	}
	return c.JSON(fiber.Map{
		"metric": name,
		"values": s.worker.HistoryValues(name),
	})
}

// handleCapture arms the countdown, same as pressing space in the preview
// window.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	armed := s.session.Trigger()
	state, remaining := s.session.State()
	return c.JSON(fiber.Map{
		"armed":        armed,
		"state":        state.String(),
		"remaining_ms": remaining.Milliseconds(),
	})
}
